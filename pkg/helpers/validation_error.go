package helpers

// CreateValidationError creates a validation error map for a single field
func CreateValidationError(field string, message string) map[string]string {
	return map[string]string{field: message}
}

// MergeValidationErrors merges multiple validation error maps
func MergeValidationErrors(errors ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, errs := range errors {
		for field, msg := range errs {
			result[field] = msg
		}
	}
	return result
}

// FirstMessage returns a stable "headline" message for a set of field errors
func FirstMessage(fields map[string]string, order ...string) string {
	for _, field := range order {
		if msg, ok := fields[field]; ok {
			return msg
		}
	}
	for _, msg := range fields {
		return msg
	}
	return ""
}
