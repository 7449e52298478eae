package entity

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Object asserts that raw is a JSON object carrying every expected key of fields.
func Object(fields *schema.Fields, raw any) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaError{Entity: fields.Entity(), Err: fmt.Errorf("expected object, got %T", raw)}
	}
	if err := fields.Check(m); err != nil {
		return nil, &SchemaError{Entity: fields.Entity(), Err: err}
	}
	return m, nil
}

// DecodeFragment copies the keys of raw into out, a pointer to a struct with
// mapstructure tags. Numbers may be json.Number or Go integers; anything that
// does not fit its target field is a schema mismatch.
func DecodeFragment(fields *schema.Fields, raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder for %s: %w", fields.Entity(), err)
	}
	if err := dec.Decode(raw); err != nil {
		return &SchemaError{Entity: fields.Entity(), Err: err}
	}
	return nil
}

// Decode checks raw against fields and decodes it into out in one step.
func Decode(fields *schema.Fields, raw any, out any) (map[string]any, error) {
	m, err := Object(fields, raw)
	if err != nil {
		return nil, err
	}
	if err := DecodeFragment(fields, m, out); err != nil {
		return nil, err
	}
	return m, nil
}
