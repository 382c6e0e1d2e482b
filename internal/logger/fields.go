package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the pipeline/HTTP request correlation id (UUID).
	FieldRequestID = "request_id"

	// FieldJobID is the internal id of the job being processed.
	FieldJobID = "job_id"

	// FieldQuery is the normalized query text.
	FieldQuery = "query"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields, attached at the log site.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldStatus is the operation status.
	FieldStatus = "status"
)
