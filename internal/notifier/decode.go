// Package notifier implements the Event Notifier: it decodes one audit log
// entry from a queue envelope, composes a short text message describing the
// operation, and hands it to a webhook Deliverer.
//
// Flow per invocation:
//
//	envelope -> Decode -> Extract -> Compose -> destination lookup -> Deliver -> Completion
package notifier

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	"pushnotify/internal/types"
)

// base64Encodings lists the alphabets accepted for the envelope data field,
// in the order they are tried.
var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode turns the envelope data field into an AuditLogEntry.
//
// An absent or empty payload yields ok == false and no error; decoding is not
// attempted. Invalid base64 or malformed JSON yields an event_decode_failed
// AppError.
func Decode(data string) (*types.AuditLogEntry, bool, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, false, nil
	}

	raw, err := decodeBase64(data)
	if err != nil {
		return nil, false, types.NewAppError(types.ErrCodeEventDecode, "payload is not valid base64", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false, types.NewAppErrorWithDetails(
			types.ErrCodeEventDecode,
			"payload is not a JSON object",
			nil,
			map[string]any{"size": len(raw)},
		)
	}

	var entry types.AuditLogEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return nil, false, types.NewAppError(types.ErrCodeEventDecode, "payload is not valid JSON", err)
	}

	return &entry, true, nil
}

func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range base64Encodings {
		out, err := enc.DecodeString(s)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
