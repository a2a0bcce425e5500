// Package webhook implements delivery of a composed notification to a single
// webhook destination.
//
// The body is the Discord execute-webhook shape, {"content": "..."}, which is
// also accepted by most chat webhook endpoints that take plain text. Exactly
// one POST is made per delivery; the response status is reported, not judged.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"pushnotify/internal/config"
	"pushnotify/internal/security"
	"pushnotify/internal/types"
)

// maxResponseBodyRead limits how much of a response body is drained so the
// connection can be reused.
const maxResponseBodyRead = 4096

// truncationMarker replaces the tail of content that exceeds the limit.
const truncationMarker = "…"

// Compile-time assertion that Channel implements types.Deliverer.
var _ types.Deliverer = (*Channel)(nil)

// Payload is the JSON body POSTed to the destination.
type Payload struct {
	Content string `json:"content"`
}

// Channel POSTs notification payloads to a webhook URL.
type Channel struct {
	httpClient *http.Client
	config     *config.WebhookConfig
	logger     types.Logger
	clock      types.Clock
}

// NewChannel creates a Channel with an SSRF-safe HTTP client. This is the
// factory used by the entry points.
func NewChannel(cfg *config.WebhookConfig, logger types.Logger) (*Channel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("webhook channel: config is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("webhook channel: logger is nil")
	}

	httpClient, err := security.NewSafeHTTPClient(cfg.Timeout, cfg.MaxRedirects)
	if err != nil {
		return nil, fmt.Errorf("webhook channel: failed to create safe HTTP client: %w", err)
	}

	return NewChannelWithClient(cfg, httpClient, logger), nil
}

// NewChannelWithClient creates a Channel with a caller-supplied HTTP client.
// Tests use it to reach httptest servers on loopback addresses.
func NewChannelWithClient(cfg *config.WebhookConfig, httpClient *http.Client, logger types.Logger) *Channel {
	return &Channel{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
		clock:      types.RealClock{},
	}
}

// SetClock overrides the clock for testing.
func (c *Channel) SetClock(clock types.Clock) {
	c.clock = clock
}

// Format wraps content into the JSON body. Content longer than
// types.DiscordContentLimit characters is truncated with an ellipsis.
func (c *Channel) Format(content string) ([]byte, error) {
	if utf8.RuneCountInString(content) > types.DiscordContentLimit {
		runes := []rune(content)
		content = string(runes[:types.DiscordContentLimit-1]) + truncationMarker
	}
	return json.Marshal(Payload{Content: content})
}

// Deliver POSTs payload to destination once.
//
// A failure to reach the destination (DNS, connect, TLS, timeout, SSRF
// block) returns a delivery_transport_failed AppError. Any HTTP response is a
// result, whatever its status code.
func (c *Channel) Deliver(ctx context.Context, payload []byte, destination string) (*types.DeliveryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeDeliveryRequest, "failed to create webhook request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Info("delivering webhook",
		"destination_host", req.URL.Host,
		"payload_size", len(payload),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := "network_error"
		if security.IsSSRFError(err) {
			reason = "ssrf_blocked"
		}
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeDeliveryTransport,
			"failed to reach webhook destination",
			err,
			map[string]any{"reason": reason},
		)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyRead))

	return &types.DeliveryResult{
		StatusCode:        resp.StatusCode,
		ProviderMessageID: c.providerMessageID(resp),
	}, nil
}

// providerMessageID returns the destination's request id header, or a
// synthetic id of the form generic-{status}-{unix}-{uuid8}.
func (c *Channel) providerMessageID(resp *http.Response) string {
	if reqID := resp.Header.Get("X-Request-Id"); reqID != "" {
		return reqID
	}
	return fmt.Sprintf("generic-%d-%d-%s",
		resp.StatusCode,
		c.clock.Now().Unix(),
		uuid.New().String()[:8],
	)
}

// ValidateDestination checks that raw is an absolute https URL with a host.
func ValidateDestination(raw string) error {
	if raw == "" {
		return fmt.Errorf("webhook destination: url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("webhook destination: %w", err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("webhook destination: url must use HTTPS")
	}
	if u.Host == "" {
		return fmt.Errorf("webhook destination: url has no host")
	}
	return nil
}
