package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"score": Int(), "tiles": List(List(String()))}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Every schema key is required. Failures are reported in key order.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return ValidateFields(schema, data, keys...)
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []error

	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "not defined in schema",
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
