package entity

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/KDL-umass/Toybox/pkg/schema"
)

// Args carries caller-supplied variant parameters by name.
type Args map[string]any

// Param declares one parameter of a variant tag.
type Param struct {
	Name     string
	Type     schema.Type
	Optional bool
}

// VariantSpec declares a closed set of tags and the parameters each accepts.
type VariantSpec struct {
	name  string
	order []string
	tags  map[string][]Param
}

// NewVariantSpec starts an empty declaration for the named variant field.
func NewVariantSpec(name string) *VariantSpec {
	return &VariantSpec{name: name, tags: make(map[string][]Param)}
}

// Tag adds a tag with its parameters.
func (s *VariantSpec) Tag(tag string, params ...Param) *VariantSpec {
	if _, exists := s.tags[tag]; !exists {
		s.order = append(s.order, tag)
	}
	s.tags[tag] = params
	return s
}

// Name returns the variant field name.
func (s *VariantSpec) Name() string { return s.name }

// Tags returns the declared tags in declaration order.
func (s *VariantSpec) Tags() []string { return slices.Clone(s.order) }

// Params returns the parameters of tag.
func (s *VariantSpec) Params(tag string) ([]Param, bool) {
	params, ok := s.tags[tag]
	return slices.Clone(params), ok
}

// Validate checks caller-supplied args for tag. It rejects unknown tags,
// missing required parameters, parameters of the wrong type and parameters
// the tag does not declare. It never mutates anything.
func (s *VariantSpec) Validate(tag string, args Args) error {
	params, ok := s.tags[tag]
	if !ok {
		return &ProtocolError{Tag: tag, Reason: fmt.Sprintf("unknown %s tag", s.name)}
	}

	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true

		value, present := args[p.Name]
		if !present || isNull(value) {
			if p.Optional {
				continue
			}
			return &ProtocolError{Tag: tag, Param: p.Name, Reason: "required parameter missing"}
		}
		if p.Type == nil {
			continue
		}
		if err := p.Type.Validate(value); err != nil {
			return &ProtocolError{Tag: tag, Param: p.Name, Reason: err.Error()}
		}
	}

	for _, name := range sortedKeys(args) {
		if !declared[name] {
			return &ProtocolError{Tag: tag, Param: name, Reason: "parameter not declared by tag"}
		}
	}
	return nil
}

// Split reads a tagged fragment of the form {tag: {param: value}}.
// The fragment must carry exactly one declared tag and every required parameter.
func (s *VariantSpec) Split(raw any) (string, map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", nil, &SchemaError{Entity: s.name, Err: fmt.Errorf("expected single-key object, got %T", raw)}
	}
	if len(m) != 1 {
		return "", nil, &SchemaError{Entity: s.name, Err: fmt.Errorf("expected exactly one tag, got %d", len(m))}
	}

	var tag string
	var body any
	for k, v := range m {
		tag, body = k, v
	}

	params, known := s.tags[tag]
	if !known {
		return "", nil, &SchemaError{Entity: s.name, Err: fmt.Errorf("unknown tag %q", tag)}
	}

	args, ok := body.(map[string]any)
	if body != nil && !ok {
		return "", nil, &SchemaError{Entity: s.name, Path: tag, Err: fmt.Errorf("expected parameter object, got %T", body)}
	}
	for _, p := range params {
		if v, present := args[p.Name]; !p.Optional && (!present || isNull(v)) {
			return "", nil, &SchemaError{Entity: s.name, Path: tag, Err: fmt.Errorf("missing parameter %q", p.Name)}
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return tag, args, nil
}

// Tagged builds the single-key fragment for tag, dropping null parameters.
func Tagged(tag string, params map[string]any) map[string]any {
	body := make(map[string]any, len(params))
	for k, v := range params {
		if !isNull(v) {
			body[k] = v
		}
	}
	return map[string]any{tag: body}
}

// isNull treats nil and typed nil pointers as an absent value.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
