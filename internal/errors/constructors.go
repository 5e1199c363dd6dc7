package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *MetricsError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *MetricsError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *MetricsError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Event errors

func InvalidEvent(cause error) *MetricsError {
	return Wrap(cause, CategoryValidation, SeverityWarning, "invalid event")
}

func RejectedEvent(reason string, cause error) *MetricsError {
	return Wrap(cause, CategoryValidation, SeverityWarning, "event rejected").
		WithContext("reason", reason)
}

// Integration errors

func DirectoryUnavailable(backend string, cause error) *MetricsError {
	return WrapRetryable(cause, CategoryDirectory, SeverityFatal, "directory unavailable").
		WithContext("backend", backend)
}

func IngestFailed(subject string, cause error) *MetricsError {
	return WrapRetryable(cause, CategoryIngest, SeverityError, "event ingestion failed").
		WithContext("subject", subject)
}

func PushGatewayInvalid(address string, cause error) *MetricsError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "push gateway address invalid").
		WithContext("address", address)
}

func ExportFailed(cause error) *MetricsError {
	return Wrap(cause, CategoryExport, SeverityError, "metrics export failed")
}

// Internal errors

func InternalError(message string, cause error) *MetricsError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
