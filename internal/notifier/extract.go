package notifier

import (
	"bytes"
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pushnotify/internal/types"
)

// requestSuffix is appended to the operation name when the audit entry
// carries a request body.
const requestSuffix = " Request"

// subsecondPattern matches a milli- to nanosecond fraction directly before the
// UTC designator.
var subsecondPattern = regexp.MustCompile(`\.[0-9]{3,9}Z`)

// Extractor validates a decoded AuditLogEntry and pulls out the values used
// to compose a notification.
type Extractor struct {
	validate *validator.Validate
}

// NewExtractor creates an Extractor. The validator reports field paths using
// the JSON names of the audit log schema.
func NewExtractor() *Extractor {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Extractor{validate: v}
}

// Extract returns the Notification described by entry. Content is left empty;
// see Compose.
//
// Any missing required field or unparsable timestamp yields an
// event_extraction_failed AppError.
func (e *Extractor) Extract(entry *types.AuditLogEntry) (*types.Notification, error) {
	if entry == nil {
		return nil, types.NewAppError(types.ErrCodeEventExtraction, "audit log entry is nil", nil)
	}

	if err := e.validate.Struct(entry); err != nil {
		return nil, missingFieldsError(err)
	}

	ts, err := ParseTimestamp(entry.Timestamp)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeEventExtraction,
			"timestamp is not a valid RFC 3339 date",
			err,
			map[string]any{"timestamp": entry.Timestamp},
		)
	}

	return &types.Notification{
		Type:         entry.Resource.Type,
		FunctionName: entry.Resource.Labels.FunctionName,
		Operation:    Operation(entry.ProtoPayload.MethodName, entry.ProtoPayload.Request),
		Principal:    entry.ProtoPayload.AuthenticationInfo.PrincipalEmail,
		Timestamp:    ts,
		ResourceName: entry.ProtoPayload.ResourceName,
		ProjectID:    entry.Resource.Labels.ProjectID,
	}, nil
}

// missingFieldsError converts validator output into an extraction AppError
// listing the JSON paths that were absent.
func missingFieldsError(err error) *types.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewAppError(types.ErrCodeEventExtraction, "audit log entry failed validation", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "AuditLogEntry.resource.labels.function_name".
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		fields = append(fields, path)
	}
	sort.Strings(fields)

	return types.NewAppErrorWithDetails(
		types.ErrCodeEventExtraction,
		"audit log entry is missing required fields: "+strings.Join(fields, ", "),
		err,
		map[string]any{"fields": fields},
	)
}

// Operation derives the display operation from a dot-delimited method name:
// the last segment, suffixed with " Request" when request is present and
// truthy.
func Operation(methodName string, request []byte) string {
	op := methodName
	if i := strings.LastIndexByte(methodName, '.'); i >= 0 {
		op = methodName[i+1:]
	}
	if isTruthy(request) {
		op += requestSuffix
	}
	return op
}

// isTruthy reports whether a raw JSON value counts as present. Objects and
// arrays always do, even when empty; null, false, zero and the empty string
// do not.
func isTruthy(raw []byte) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`:
		return false
	}
	if v[0] == '-' || (v[0] >= '0' && v[0] <= '9') {
		return !isZeroNumber(string(v))
	}
	return true
}

func isZeroNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	mantissa, _, _ := strings.Cut(strings.ToLower(s), "e")
	for _, r := range mantissa {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}

// NormalizeTimestamp strips the first sub-second fraction of 3 to 9 digits
// that directly precedes "Z". Timestamps without such a fraction are returned
// unchanged, so the function is idempotent.
func NormalizeTimestamp(ts string) string {
	loc := subsecondPattern.FindStringIndex(ts)
	if loc == nil {
		return ts
	}
	return ts[:loc[0]] + "Z" + ts[loc[1]:]
}

// ParseTimestamp normalizes ts and parses it as an RFC 3339 date, returning
// the instant in UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, NormalizeTimestamp(strings.TrimSpace(ts)))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
