package types

import (
	"encoding/json"
	"time"
)

// AuditLogEntry is the decoded business payload of a PubSubMessage: a cloud
// audit log record exported through a log sink. Fields tagged required must be
// present and non-empty for a notification to be composed.
type AuditLogEntry struct {
	Resource     *MonitoredResource `json:"resource" validate:"required"`
	ProtoPayload *AuditPayload      `json:"protoPayload" validate:"required"`
	Timestamp    string             `json:"timestamp" validate:"required"`
}

// MonitoredResource identifies the resource the log entry is attributed to.
type MonitoredResource struct {
	Type   string          `json:"type" validate:"required"`
	Labels *ResourceLabels `json:"labels" validate:"required"`
}

// ResourceLabels holds the resource labels used by the relay.
type ResourceLabels struct {
	FunctionName string `json:"function_name" validate:"required"`
	ProjectID    string `json:"project_id"`
}

// AuditPayload is the subset of the audit log protoPayload read by the relay.
type AuditPayload struct {
	MethodName         string              `json:"methodName" validate:"required"`
	Request            json.RawMessage     `json:"request,omitempty"`
	AuthenticationInfo *AuthenticationInfo `json:"authenticationInfo" validate:"required"`
	ResourceName       string              `json:"resourceName"`
}

// AuthenticationInfo carries the principal that performed the operation.
type AuthenticationInfo struct {
	PrincipalEmail string `json:"principalEmail" validate:"required"`
}

// Notification holds the values extracted from an AuditLogEntry together with
// the composed message text.
type Notification struct {
	Type         string
	FunctionName string
	Operation    string
	Principal    string
	Timestamp    time.Time
	ResourceName string
	ProjectID    string
	Content      string
}
