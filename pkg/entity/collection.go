package entity

import (
	"fmt"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Element is the constraint on collection members: an entity comparable to
// its own kind.
type Element[T any] interface {
	Entity
	Equal(other T) bool
}

// DecodeFunc builds one element from its fragment.
type DecodeFunc[T any] func(t *Tracker, raw any) (T, error)

// Policy governs structural changes of a collection.
type Policy int

const (
	// Variable collections allow append and removal.
	Variable Policy = iota
	// Fixed collections keep their length; only index assignment is allowed.
	Fixed
)

// Collection is an ordered sequence of entities of one type.
// Members are only ever produced by the element decoder, so every member
// satisfies the element schema.
type Collection[T Element[T]] struct {
	Base
	policy Policy
	items  []T
}

// DecodeCollection decodes a JSON array with decode, element by element.
// On failure no collection is returned.
func DecodeCollection[T Element[T]](t *Tracker, name string, raw any, policy Policy, decode DecodeFunc[T]) (*Collection[T], error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &SchemaError{Entity: name, Err: fmt.Errorf("expected list, got %T", raw)}
	}

	c := &Collection[T]{
		Base:   NewBase(Declare(name), t),
		policy: policy,
		items:  make([]T, 0, len(list)),
	}
	for i, elem := range list {
		item, err := decode(t, elem)
		if err != nil {
			return nil, WithPath(err, fmt.Sprintf("[%d]", i))
		}
		if err := c.admit(-1, item); err != nil {
			return nil, WithPath(err, fmt.Sprintf("[%d]", i))
		}
		item.base().attached = true
		c.items = append(c.items, item)
	}
	c.Seal()
	return c, nil
}

// Policy returns the structural policy.
func (c *Collection[T]) Policy() Policy { return c.policy }

// Len returns the number of elements.
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the element at index i.
func (c *Collection[T]) At(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, fmt.Errorf("%w: %s index %d out of range [0,%d)", domain.ErrNotFound, c.fields.Entity(), i, len(c.items))
	}
	return c.items[i], nil
}

// Items returns a copy of the element slice.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Index returns the position of item, compared by identity, or -1.
func (c *Collection[T]) Index(item T) int {
	for i, it := range c.items {
		if Entity(it) == Entity(item) {
			return i
		}
	}
	return -1
}

// Set replaces the element at index i. Allowed under both policies, but a
// Fixed collection only takes a replacement of the same shape as the current
// element. The replaced element is released and may be placed elsewhere.
func (c *Collection[T]) Set(i int, item T) error {
	old, err := c.At(i)
	if err != nil {
		return err
	}
	if err := c.admit(i, item); err != nil {
		return err
	}
	if c.policy == Fixed && !sameShape(old, item) {
		return c.frozen("reshape")
	}
	if err := c.Touch("items"); err != nil {
		return err
	}
	old.base().attached = false
	item.base().attached = true
	c.items[i] = item
	return nil
}

// Append adds item at the end.
func (c *Collection[T]) Append(item T) error {
	if c.policy == Fixed {
		return c.frozen("append to")
	}
	if err := c.admit(-1, item); err != nil {
		return err
	}
	if err := c.Touch("items"); err != nil {
		return err
	}
	item.base().attached = true
	c.items = append(c.items, item)
	return nil
}

// Remove deletes item, compared by identity.
func (c *Collection[T]) Remove(item T) error {
	if c.policy == Fixed {
		return c.frozen("remove from")
	}
	i := c.Index(item)
	if i < 0 {
		return fmt.Errorf("%w: element is not a member of %s", domain.ErrNotFound, c.fields.Entity())
	}
	return c.RemoveAt(i)
}

// RemoveAt deletes the element at index i.
func (c *Collection[T]) RemoveAt(i int) error {
	if c.policy == Fixed {
		return c.frozen("remove from")
	}
	if _, err := c.At(i); err != nil {
		return err
	}
	if err := c.Touch("items"); err != nil {
		return err
	}
	c.items[i].base().attached = false
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// Pop removes and returns the last element.
func (c *Collection[T]) Pop() (T, error) {
	var zero T
	if c.policy == Fixed {
		return zero, c.frozen("pop from")
	}
	if len(c.items) == 0 {
		return zero, fmt.Errorf("%w: %s is empty", domain.ErrNotFound, c.fields.Entity())
	}
	last := c.items[len(c.items)-1]
	if err := c.RemoveAt(len(c.items) - 1); err != nil {
		return zero, err
	}
	return last, nil
}

// Encode returns the elements' fragments in order.
func (c *Collection[T]) Encode() (any, error) {
	out := make([]any, 0, len(c.items))
	for i, item := range c.items {
		frag, err := item.Encode()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", c.fields.Entity(), i, err)
		}
		out = append(out, frag)
	}
	return out, nil
}

// Equal compares element-wise.
func (c *Collection[T]) Equal(other *Collection[T]) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.items) != len(other.items) {
		return false
	}
	for i := range c.items {
		if !c.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// admit checks that item may be placed at slot (-1 when appending). An entity
// has at most one owner, so members of any collection are refused unless item
// already sits at slot.
func (c *Collection[T]) admit(slot int, item T) error {
	reject := func(reason string) error {
		return &FieldError{
			Entity: c.fields.Entity(),
			Field:  "items",
			Err:    fmt.Errorf("%w: %s", domain.ErrConstructionViolation, reason),
		}
	}
	if !c.Owns(item) {
		return reject("element belongs to another session")
	}
	if j := c.Index(item); j >= 0 {
		if j == slot {
			return nil
		}
		return reject(fmt.Sprintf("element is already at index %d", j))
	}
	if item.base().attached {
		return reject("element belongs to another collection")
	}
	return nil
}

// shaped is implemented by nested collections.
type shaped interface {
	Len() int
	Policy() Policy
}

// sameShape reports whether next may replace prev in a Fixed collection.
func sameShape(prev, next any) bool {
	p, ok := prev.(shaped)
	if !ok {
		return true
	}
	n, ok := next.(shaped)
	return ok && n.Len() == p.Len() && n.Policy() == p.Policy()
}

func (c *Collection[T]) frozen(op string) error {
	return &StructureError{Collection: c.fields.Entity(), Op: op}
}
