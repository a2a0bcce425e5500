package pushnotify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushnotify/internal/types"
)

type stubHandler struct {
	completion types.Completion
	err        error
	got        PubSubMessage
}

func (s *stubHandler) Handle(_ context.Context, msg types.PubSubMessage) (types.Completion, error) {
	s.got = msg
	return s.completion, s.err
}

func TestInvoke_CompletionIsSuccess(t *testing.T) {
	h := &stubHandler{completion: types.Completion{Kind: types.CompletionNotConfigured}}

	err := invoke(context.Background(), h, PubSubMessage{Data: "e30=", MessageID: "m-1"})
	require.NoError(t, err)
	assert.Equal(t, "m-1", h.got.MessageID)
}

func TestInvoke_ErrorIsReturned(t *testing.T) {
	want := types.NewAppError(types.ErrCodeEventDecode, "payload is not valid base64", nil)
	h := &stubHandler{err: want}

	err := invoke(context.Background(), h, PubSubMessage{Data: "***"})
	assert.ErrorIs(t, err, want)
}

func TestPushEventsToWebhook_EmptyPayload(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("METRICS_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "error")

	assert.NoError(t, PushEventsToWebhook(context.Background(), PubSubMessage{}))
}
