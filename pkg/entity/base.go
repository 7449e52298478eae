package entity

import (
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/schema"
)

// Keys present on every entity and frozen after construction.
const (
	KeySession = "session"
	KeyInInit  = "in_init"
)

// Entity is implemented by every node of a decoded graph.
type Entity interface {
	Fields() *schema.Fields
	Tracker() *Tracker
	Encode() (any, error)
	base() *Base
}

// Declare starts a field declaration that already freezes the base keys.
func Declare(name string) *schema.Fields {
	return schema.Declare(name).Immutable(KeySession, KeyInInit)
}

// Base carries the construction phase, the field declaration and the tracker
// of one entity. It is meant to be embedded.
type Base struct {
	fields  *schema.Fields
	tracker *Tracker
	sealed  bool
	// attached is set while a collection holds the entity.
	attached bool
}

// NewBase returns a Base in the construction phase.
func NewBase(fields *schema.Fields, tracker *Tracker) Base {
	return Base{fields: fields, tracker: tracker}
}

// Fields returns the entity's field declaration.
func (b *Base) Fields() *schema.Fields { return b.fields }

// Tracker returns the session tracker this entity reports to.
func (b *Base) Tracker() *Tracker { return b.tracker }

// Building reports whether the entity is still in its construction phase.
func (b *Base) Building() bool { return !b.sealed }

// Seal ends the construction phase. It is idempotent.
func (b *Base) Seal() { b.sealed = true }

// SetTracker rebinds the entity during construction.
// After construction it always fails.
func (b *Base) SetTracker(t *Tracker) error {
	if b.sealed {
		return b.violation(KeySession)
	}
	b.tracker = t
	return nil
}

// SetBuilding controls the construction phase flag. Clearing it seals the entity.
// After construction it always fails, whatever the value.
func (b *Base) SetBuilding(building bool) error {
	if b.sealed {
		return b.violation(KeyInInit)
	}
	if !building {
		b.Seal()
	}
	return nil
}

// Mutate applies an assignment to field.
// During construction it applies silently. Afterwards immutable fields fail
// with domain.ErrConstructionViolation, a closed session fails with
// domain.ErrSessionClosed and any other assignment marks the tracker dirty.
func (b *Base) Mutate(field string, apply func()) error {
	if !b.sealed {
		apply()
		return nil
	}
	if b.fields.IsImmutable(field) {
		return b.violation(field)
	}
	if err := b.Touch(field); err != nil {
		return err
	}
	apply()
	return nil
}

// Touch marks the tracker dirty on behalf of field without assigning anything.
// Collections use it for structural changes.
func (b *Base) Touch(field string) error {
	if !b.sealed {
		return nil
	}
	if b.tracker == nil {
		return nil
	}
	if err := b.tracker.MarkDirty(); err != nil {
		return &FieldError{Entity: b.fields.Entity(), Field: field, Err: err}
	}
	return nil
}

// Attached reports whether a collection currently holds the entity.
func (b *Base) Attached() bool { return b.attached }

func (b *Base) base() *Base { return b }

// Owns reports whether other belongs to the same session as b.
func (b *Base) Owns(other Entity) bool {
	return other != nil && other.Tracker() == b.tracker
}

func (b *Base) violation(field string) error {
	return &FieldError{Entity: b.fields.Entity(), Field: field, Err: domain.ErrConstructionViolation}
}
