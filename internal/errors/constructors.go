package errors

// Convenience constructors for the error shapes dispatchmon raises repeatedly.

// PreconditionViolation signals that an operation was rejected up front with
// no state mutated: manifest intake while a cycle is active, or the reader
// driver being inactive.
func PreconditionViolation(reason string) *ClassifiedError {
	return NewError(CategoryPrecondition, "precondition violated").
		WithContext("reason", reason).
		Build()
}

// ValidationFailed reports a malformed or incomplete input document.
func ValidationFailed(field, reason string) *ClassifiedError {
	return NewError(CategoryValidation, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}

// ConfigError reports an invalid or missing configuration value.
func ConfigError(field, reason string) *ClassifiedError {
	return NewError(CategoryConfig, "invalid configuration").Fatal().
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}

// TagDBError wraps a tag database failure.
func TagDBError(op string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryTagDB, "tag database operation failed").
		WithContext("operation", op).
		Build()
}

// TagNotFound reports a tag identifier with no registered record.
func TagNotFound(tagID string) *ClassifiedError {
	return NewError(CategoryNotFound, "tag not registered").
		WithContext("tag_id", tagID).
		Build()
}

// ReaderError wraps a reader driver failure.
func ReaderError(op string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryReader, "reader driver operation failed").
		WithContext("operation", op).
		Build()
}

// NotifyError wraps an outbound notification delivery failure. Delivery is
// fire-and-forget, so these are warnings, not operation failures.
func NotifyError(kind string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryNotify, "notification delivery failed").
		Warning().Retryable().
		WithContext("kind", kind).
		Build()
}

// EventStoreError wraps a cycle event log failure.
func EventStoreError(op string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryEventStore, "event store operation failed").
		WithContext("operation", op).
		Build()
}

// InternalError reports an invariant violation inside dispatchmon itself.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message)
}
