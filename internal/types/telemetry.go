package types

// Telemetry metric names.
// All components MUST use these constants.
const (
	// Metric Names
	MetricInvocation      = "Invocation"
	MetricDeliveryLatency = "DeliveryLatency"
	MetricDeliveryStatus  = "DeliveryStatus"

	// Dimension Keys
	DimOutcome     = "Outcome"
	DimStatusClass = "StatusClass"

	// Metric Namespace
	MetricNamespace = "PushNotify"
)
