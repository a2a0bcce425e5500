package types

// CompletionKind identifies the non-error outcome of an invocation.
type CompletionKind string

const (
	// CompletionDelivered means a POST was made and a response was received,
	// whatever its status code.
	CompletionDelivered CompletionKind = "delivered"
	// CompletionEmpty means the envelope carried no payload.
	CompletionEmpty CompletionKind = "empty"
	// CompletionNotConfigured means no destination URL is configured.
	CompletionNotConfigured CompletionKind = "not_configured"
)

// Completion is the single non-error outcome reported to the invoker.
type Completion struct {
	Kind       CompletionKind `json:"kind"`
	Message    string         `json:"message"`
	StatusCode int            `json:"status_code,omitempty"`
}

// Outcome labels every invocation for telemetry, errors included.
type Outcome string

const (
	OutcomeDelivered       Outcome = "delivered"
	OutcomeEmpty           Outcome = "empty"
	OutcomeNotConfigured   Outcome = "not_configured"
	OutcomeDecodeError     Outcome = "decode_error"
	OutcomeExtractionError Outcome = "extraction_error"
	OutcomeTransportError  Outcome = "transport_error"
	OutcomeInternalError   Outcome = "internal_error"
)

// OutcomeForError maps an invocation error to its telemetry outcome.
func OutcomeForError(err error) Outcome {
	switch ErrorCodeOf(err) {
	case ErrCodeEventDecode:
		return OutcomeDecodeError
	case ErrCodeEventExtraction:
		return OutcomeExtractionError
	case ErrCodeDeliveryTransport:
		return OutcomeTransportError
	default:
		return OutcomeInternalError
	}
}
