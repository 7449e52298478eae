package schema

import (
	"encoding/json"
	"slices"
)

// Fields declares the keys an entity exchanges with a snapshot.
//
//   - Expected keys must be present in every fragment the entity decodes.
//   - Immutable keys may only be assigned while the entity is being built.
//   - Equality keys are compared when two entities are tested for equality.
//
// A Fields value is built once at package init and treated as read-only afterwards.
type Fields struct {
	entity    string
	expected  []string
	types     Schema
	immutable []string
	equality  []string
}

// Declare starts an empty field declaration for the named entity.
func Declare(entity string) *Fields {
	return &Fields{entity: entity, types: make(Schema)}
}

// Extend copies the declaration under a new entity name, so a derived entity
// inherits every expected, immutable and equality key of its parent.
func (f *Fields) Extend(entity string) *Fields {
	types := make(Schema, len(f.types))
	for k, v := range f.types {
		types[k] = v
	}
	return &Fields{
		entity:    entity,
		expected:  slices.Clone(f.expected),
		types:     types,
		immutable: slices.Clone(f.immutable),
		equality:  slices.Clone(f.equality),
	}
}

// Expect adds an expected key. A nil type accepts any value.
func (f *Fields) Expect(key string, t Type) *Fields {
	if t == nil {
		t = Any()
	}
	if !slices.Contains(f.expected, key) {
		f.expected = append(f.expected, key)
	}
	f.types[key] = t
	return f
}

// Immutable marks keys as assignable only during construction.
func (f *Fields) Immutable(keys ...string) *Fields {
	for _, k := range keys {
		if !slices.Contains(f.immutable, k) {
			f.immutable = append(f.immutable, k)
		}
	}
	return f
}

// Equality sets the keys compared for structural equality.
func (f *Fields) Equality(keys ...string) *Fields {
	f.equality = append(f.equality[:0:0], keys...)
	return f
}

// Entity returns the declared entity name.
func (f *Fields) Entity() string { return f.entity }

// ExpectedKeys returns the expected keys in declaration order.
func (f *Fields) ExpectedKeys() []string { return slices.Clone(f.expected) }

// ImmutableKeys returns the immutable keys in declaration order.
func (f *Fields) ImmutableKeys() []string { return slices.Clone(f.immutable) }

// EqualityKeys returns the equality keys in declaration order.
func (f *Fields) EqualityKeys() []string { return slices.Clone(f.equality) }

// IsImmutable reports whether key is frozen after construction.
func (f *Fields) IsImmutable(key string) bool {
	return slices.Contains(f.immutable, key)
}

// Check verifies that every expected key is present in data and has the declared type.
// Keys not declared are ignored.
func (f *Fields) Check(data map[string]any) error {
	return ValidateFields(f.types, data, f.expected...)
}

// MarshalJSON describes the declaration, mapping each expected key to its type name.
func (f *Fields) MarshalJSON() ([]byte, error) {
	expected := make(map[string]string, len(f.expected))
	for _, k := range f.expected {
		expected[k] = f.types[k].Name()
	}
	return json.Marshal(struct {
		Entity    string            `json:"entity"`
		Expected  map[string]string `json:"expected"`
		Immutable []string          `json:"immutable"`
		Equality  []string          `json:"equality"`
	}{f.entity, expected, f.immutable, f.equality})
}
