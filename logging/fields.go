package logging

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldEmployee  = "employee_id"
	FieldPeriod    = "period"
	FieldDate      = "date"
	FieldGroupKey  = "group_key"
	FieldItemID    = "item_id"
	FieldCount     = "count"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldStatus    = "status_code"
	FieldMethod    = "method"
	FieldPath      = "path"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentTransform = "transform"
	ComponentEngine    = "engine"
	ComponentSession   = "session"
	ComponentOverlay   = "overlay"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
)
