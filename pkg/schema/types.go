package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integers as they appear in decoded snapshots:
// Go integer kinds, json.Number and whole float64 values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got number %s", v)
		}
		return nil
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// StrictIntType accepts Go integer kinds whose value fits in an int.
// It is used for caller-supplied arguments, where a float or a numeric string is a mistake.
type StrictIntType struct{}

func (t *StrictIntType) Name() string { return "int" }

func (t *StrictIntType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return fmt.Errorf("expected int, got %T", value)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n < math.MinInt || n > math.MaxInt {
			return fmt.Errorf("int %d out of range", n)
		}
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n := rv.Uint(); n > math.MaxInt {
			return fmt.Errorf("int %d out of range", n)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ListType validates slices of a specific element type.
type ListType struct {
	elemType Type
}

func (t *ListType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *ListType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected list, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// ObjectType validates JSON objects.
type ObjectType struct{}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return nil
}

// AnyType accepts every value, including null.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(any) error { return nil }

// NullableType accepts null or a value of the wrapped type.
type NullableType struct {
	inner Type
}

func (t *NullableType) Name() string { return t.inner.Name() + "?" }

func (t *NullableType) Validate(value any) error {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	return t.inner.Validate(value)
}

// EnumType accepts one string out of a closed set.
type EnumType struct {
	name   string
	values []string
}

func (t *EnumType) Name() string { return t.name }

func (t *EnumType) Validate(value any) error {
	s, ok := stringLike(value)
	if !ok {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	if !slices.Contains(t.values, s) {
		return fmt.Errorf("expected one of %s, got %q", strings.Join(t.values, "|"), s)
	}
	return nil
}

// Values returns the accepted strings.
func (t *EnumType) Values() []string {
	return slices.Clone(t.values)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// stringLike accepts string and named string types.
func stringLike(value any) (string, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates a snapshot integer validator.
func Int() Type { return &IntType{} }

// StrictInt creates a Go-integer-only validator.
func StrictInt() Type { return &StrictIntType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// List creates a list validator for elements of the given type.
func List(elemType Type) Type {
	return &ListType{elemType: elemType}
}

// Object creates a JSON object validator.
func Object() Type { return &ObjectType{} }

// Any creates a validator that accepts everything.
func Any() Type { return &AnyType{} }

// Nullable wraps a type so that null is also accepted.
func Nullable(inner Type) Type {
	return &NullableType{inner: inner}
}

// Enum creates a validator for a closed set of string values.
func Enum(name string, values ...string) *EnumType {
	return &EnumType{name: name, values: values}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}
