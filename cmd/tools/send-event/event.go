package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pushnotify/internal/notifier"
	"pushnotify/internal/types"
)

// eventOptions describes the sample audit log entry to build.
type eventOptions struct {
	ResourceType string
	FunctionName string
	ProjectID    string
	MethodName   string
	Principal    string
	ResourceName string
	Timestamp    string
	WithRequest  bool
	Empty        bool
}

// buildEntry returns the audit log entry JSON. The timestamp defaults to now
// with nanosecond precision, the form audit logs carry.
func buildEntry(opts eventOptions, now time.Time) ([]byte, error) {
	ts := opts.Timestamp
	if ts == "" {
		ts = now.UTC().Format(time.RFC3339Nano)
	}
	if _, err := notifier.ParseTimestamp(ts); err != nil {
		return nil, fmt.Errorf("invalid --timestamp %q: %w", ts, err)
	}

	entry := types.AuditLogEntry{
		Resource: &types.MonitoredResource{
			Type: opts.ResourceType,
			Labels: &types.ResourceLabels{
				FunctionName: opts.FunctionName,
				ProjectID:    opts.ProjectID,
			},
		},
		ProtoPayload: &types.AuditPayload{
			MethodName:         opts.MethodName,
			AuthenticationInfo: &types.AuthenticationInfo{PrincipalEmail: opts.Principal},
			ResourceName:       opts.ResourceName,
		},
		Timestamp: ts,
	}
	if opts.WithRequest {
		entry.ProtoPayload.Request = json.RawMessage(`{"@type":"type.googleapis.com/compute.disks.createSnapshot"}`)
	}

	return json.Marshal(entry)
}

// buildMessage wraps the entry in a Pub/Sub envelope with a fresh message id.
// With opts.Empty the data field is left blank.
func buildMessage(opts eventOptions, now time.Time) (types.PubSubMessage, error) {
	publishTime := now.UTC()
	msg := types.PubSubMessage{
		MessageID:   uuid.New().String(),
		PublishTime: &publishTime,
		Attributes:  map[string]string{"logging.googleapis.com/timestamp": publishTime.Format(time.RFC3339Nano)},
	}
	if opts.Empty {
		return msg, nil
	}

	raw, err := buildEntry(opts, now)
	if err != nil {
		return types.PubSubMessage{}, err
	}
	msg.Data = base64.StdEncoding.EncodeToString(raw)
	return msg, nil
}
