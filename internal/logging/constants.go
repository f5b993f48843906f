package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldDocument   = "document"
	FieldBatchID    = "batch_id"
	FieldStage      = "stage"
	FieldStatus     = "status"
	FieldCategory   = "category"
	FieldKeyword    = "keyword"
	FieldConfidence = "confidence"
	FieldReason     = "reason"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldPages      = "pages"
	FieldOutputFile = "output_file"
)
