package entity

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// FieldError reports a rejected assignment on one entity field.
// Err is one of the domain sentinels.
type FieldError struct {
	Entity string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// SchemaError reports a fragment that could not be decoded into an entity.
// It always matches domain.ErrSchemaMismatch.
type SchemaError struct {
	Entity string
	// Path locates the fragment inside the snapshot, e.g. "board.tiles[3][4]".
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s: %v", domain.ErrSchemaMismatch, e.Entity, e.Err)
	}
	return fmt.Sprintf("%v: %s at %s: %v", domain.ErrSchemaMismatch, e.Entity, e.Path, e.Err)
}

func (e *SchemaError) Unwrap() []error {
	return []error{domain.ErrSchemaMismatch, e.Err}
}

// ProtocolError reports an invalid tagged variant assignment.
// It always matches domain.ErrProtocolValidation.
type ProtocolError struct {
	Tag string
	// Param is empty when the tag itself is at fault.
	Param  string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%v: %s: %s", domain.ErrProtocolValidation, e.Tag, e.Reason)
	}
	return fmt.Sprintf("%v: %s.%s: %s", domain.ErrProtocolValidation, e.Tag, e.Param, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return domain.ErrProtocolValidation }

// StructureError reports a rejected append or removal on a fixed collection.
type StructureError struct {
	Collection string
	Op         string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%v: cannot %s %s", domain.ErrStructuralImmutability, e.Op, e.Collection)
}

func (e *StructureError) Unwrap() error { return domain.ErrStructuralImmutability }

// WithPath prefixes the location of a nested decode failure.
// Errors that are not a *SchemaError are returned unchanged.
func WithPath(err error, segment string) error {
	se, ok := err.(*SchemaError)
	if !ok {
		return err
	}
	path := segment
	if se.Path != "" {
		if se.Path[0] == '[' {
			path += se.Path
		} else {
			path += "." + se.Path
		}
	}
	return &SchemaError{Entity: se.Entity, Path: path, Err: se.Err}
}
