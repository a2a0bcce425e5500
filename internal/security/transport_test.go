package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResolver implements Resolver for deterministic testing.
type mockResolver struct {
	ips map[string][]net.IPAddr
	err error
}

func (m *mockResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if m.err != nil {
		return nil, m.err
	}
	ips, ok := m.ips[host]
	if !ok {
		return nil, fmt.Errorf("no such host: %s", host)
	}
	return ips, nil
}

// slowResolver simulates a DNS resolver that takes too long.
type slowResolver struct {
	delay time.Duration
}

func (s *slowResolver) LookupIPAddr(ctx context.Context, _ string) ([]net.IPAddr, error) {
	select {
	case <-time.After(s.delay):
		return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newMockResolver(mappings map[string][]string) *mockResolver {
	ips := make(map[string][]net.IPAddr)
	for host, ipStrs := range mappings {
		addrs := make([]net.IPAddr, len(ipStrs))
		for i, ipStr := range ipStrs {
			addrs[i] = net.IPAddr{IP: net.ParseIP(ipStr)}
		}
		ips[host] = addrs
	}
	return &mockResolver{ips: ips}
}

func TestInitBlockedNets(t *testing.T) {
	initBlockedNets()
	require.NoError(t, initErr)
	require.NotEmpty(t, blockedNets)
}

func TestIsBlockedIP(t *testing.T) {
	blocked := []string{
		"127.0.0.1", "10.1.2.3", "172.16.0.1", "192.168.1.1",
		"169.254.169.254", "100.64.0.1", "224.0.0.1", "::1", "fe80::1", "fd00::1",
	}
	for _, ip := range blocked {
		assert.True(t, IsBlockedIP(net.ParseIP(ip)), "expected %s to be blocked", ip)
	}

	allowed := []string{"93.184.216.34", "162.159.135.232", "2606:4700::6810:85e5"}
	for _, ip := range allowed {
		assert.False(t, IsBlockedIP(net.ParseIP(ip)), "expected %s to be allowed", ip)
	}
}

func TestResolveAllowed_IPLiteral(t *testing.T) {
	_, err := resolveAllowed(context.Background(), &mockResolver{}, "169.254.169.254")
	assert.ErrorIs(t, err, ErrSSRFBlocked)

	ips, err := resolveAllowed(context.Background(), &mockResolver{}, "93.184.216.34")
	require.NoError(t, err)
	assert.Equal(t, "93.184.216.34", ips[0].String())
}

func TestResolveAllowed_MixedAnswerIsBlocked(t *testing.T) {
	resolver := newMockResolver(map[string][]string{
		"rebind.example.com": {"93.184.216.34", "10.0.0.5"},
	})

	_, err := resolveAllowed(context.Background(), resolver, "rebind.example.com")
	assert.ErrorIs(t, err, ErrSSRFBlocked)
}

func TestResolveAllowed_DNSFailure(t *testing.T) {
	_, err := resolveAllowed(context.Background(), &mockResolver{err: errors.New("servfail")}, "discord.com")
	assert.ErrorIs(t, err, ErrSSRFDNSFailed)

	_, err = resolveAllowed(context.Background(), newMockResolver(map[string][]string{"empty.example.com": {}}), "empty.example.com")
	assert.ErrorIs(t, err, ErrSSRFDNSFailed)
}

func TestResolveAllowed_DNSTimeout(t *testing.T) {
	_, err := resolveAllowed(context.Background(), &slowResolver{delay: 2 * dnsTimeout}, "slow.example.com")
	assert.ErrorIs(t, err, ErrSSRFDNSTimeout)
}

func TestCheckRedirect(t *testing.T) {
	resolver := newMockResolver(map[string][]string{
		"discord.com":       {"162.159.135.232"},
		"internal.corp.net": {"10.0.0.8"},
	})
	check := CheckRedirect(2, resolver)

	newReq := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return (&http.Request{URL: u}).WithContext(context.Background())
	}

	assert.NoError(t, check(newReq("https://discord.com/api/webhooks/1/x"), nil))
	assert.ErrorIs(t, check(newReq("https://internal.corp.net/"), nil), ErrSSRFBlocked)
	assert.ErrorIs(t, check(newReq("http://127.0.0.1/"), nil), ErrSSRFBlocked)
	assert.ErrorIs(t, check(newReq("https://discord.com/"), make([]*http.Request, 2)), ErrSSRFTooManyRedirects)
}

func TestSafeHTTPClient_BlocksLoopbackServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewSafeHTTPClient(5*time.Second, 3)
	require.NoError(t, err)

	resp, err := client.Post(server.URL, "application/json", nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.True(t, IsSSRFError(err))
}

func TestIsSSRFError(t *testing.T) {
	assert.True(t, IsSSRFError(fmt.Errorf("dial: %w", ErrSSRFBlocked)))
	assert.True(t, IsSSRFError(ErrSSRFDNSTimeout))
	assert.False(t, IsSSRFError(errors.New("connection reset")))
	assert.False(t, IsSSRFError(nil))
}
