package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushnotify/internal/config"
	"pushnotify/internal/types"
)

// --- Test Helpers ---

// mockLogger is a no-op logger for testing.
type mockLogger struct{}

func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) With(args ...any) types.Logger { return m }

// mockClock provides a controllable clock for testing.
type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

func testWebhookConfig() *config.WebhookConfig {
	return &config.WebhookConfig{
		UserAgent:    "PushNotify-Test/1.0",
		Timeout:      5 * time.Second,
		MaxRedirects: 3,
	}
}

func newTestChannel(server *httptest.Server) *Channel {
	return NewChannelWithClient(testWebhookConfig(), server.Client(), &mockLogger{})
}

// --- Constructor ---

func TestNewChannel_NilConfig(t *testing.T) {
	_, err := NewChannel(nil, &mockLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is nil")
}

func TestNewChannel_NilLogger(t *testing.T) {
	_, err := NewChannel(testWebhookConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger is nil")
}

func TestNewChannel_Success(t *testing.T) {
	ch, err := NewChannel(testWebhookConfig(), &mockLogger{})
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, 5*time.Second, ch.httpClient.Timeout)
}

// --- Format ---

func TestFormat_ContentBody(t *testing.T) {
	ch := NewChannelWithClient(testWebhookConfig(), http.DefaultClient, &mockLogger{})

	body, err := ch.Format("gce_instance: snapshot-fn\noperation: createSnapshot\n")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"gce_instance: snapshot-fn\noperation: createSnapshot\n"}`, string(body))
}

func TestFormat_TruncatesToDiscordLimit(t *testing.T) {
	ch := NewChannelWithClient(testWebhookConfig(), http.DefaultClient, &mockLogger{})

	body, err := ch.Format(strings.Repeat("é", types.DiscordContentLimit+50))
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, types.DiscordContentLimit, utf8.RuneCountInString(p.Content))
	assert.True(t, strings.HasSuffix(p.Content, truncationMarker))
}

func TestFormat_AtLimitUnchanged(t *testing.T) {
	ch := NewChannelWithClient(testWebhookConfig(), http.DefaultClient, &mockLogger{})
	content := strings.Repeat("a", types.DiscordContentLimit)

	body, err := ch.Format(content)
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, content, p.Content)
}

// --- Deliver ---

func TestDeliver_PostsJSONOnce(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "PushNotify-Test/1.0", r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"content":"hello"}`, string(body))

		w.Header().Set("X-Request-Id", "req-12345")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ch := newTestChannel(server)
	result, err := ch.Deliver(context.Background(), []byte(`{"content":"hello"}`), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusNoContent, result.StatusCode)
	assert.Equal(t, "req-12345", result.ProviderMessageID)
}

func TestDeliver_AnyStatusIsAResult(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"message":"whatever"}`))
			}))
			defer server.Close()

			result, err := newTestChannel(server).Deliver(context.Background(), []byte(`{}`), server.URL)
			require.NoError(t, err)
			assert.Equal(t, status, result.StatusCode)
		})
	}
}

func TestDeliver_SyntheticProviderID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := newTestChannel(server)
	ch.SetClock(&mockClock{now: time.Unix(1706745600, 0)})

	result, err := ch.Deliver(context.Background(), []byte(`{}`), server.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ProviderMessageID, "generic-200-1706745600-"), result.ProviderMessageID)
	assert.Len(t, result.ProviderMessageID, len("generic-200-1706745600-")+8)
}

func TestDeliver_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	ch := NewChannelWithClient(testWebhookConfig(), &http.Client{Timeout: time.Second}, &mockLogger{})
	result, err := ch.Deliver(context.Background(), []byte(`{}`), url)
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeDeliveryTransport, appErr.Code)
	assert.Equal(t, "network_error", appErr.Details["reason"])
}

func TestDeliver_SSRFBlockedIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach a loopback server")
	}))
	defer server.Close()

	ch, err := NewChannel(testWebhookConfig(), &mockLogger{})
	require.NoError(t, err)

	_, err = ch.Deliver(context.Background(), []byte(`{}`), server.URL)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeDeliveryTransport, appErr.Code)
	assert.Equal(t, "ssrf_blocked", appErr.Details["reason"])
}

func TestDeliver_InvalidURL(t *testing.T) {
	ch := NewChannelWithClient(testWebhookConfig(), http.DefaultClient, &mockLogger{})
	_, err := ch.Deliver(context.Background(), []byte(`{}`), "://bad")
	assert.Equal(t, types.ErrCodeDeliveryRequest, types.ErrorCodeOf(err))
}

func TestDeliver_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestChannel(server).Deliver(ctx, []byte(`{}`), server.URL)
	assert.Equal(t, types.ErrCodeDeliveryTransport, types.ErrorCodeOf(err))
}

// --- ValidateDestination ---

func TestValidateDestination(t *testing.T) {
	assert.NoError(t, ValidateDestination("https://discord.com/api/webhooks/1/abc"))
	assert.Error(t, ValidateDestination(""))
	assert.Error(t, ValidateDestination("http://discord.com/api/webhooks/1/abc"))
	assert.Error(t, ValidateDestination("https:///no-host"))
	assert.Error(t, ValidateDestination("::not a url"))
}
