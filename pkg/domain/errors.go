package domain

import "errors"

// ErrConstructionViolation is returned when an immutable field, the session
// reference or the construction-phase flag is assigned after construction.
var ErrConstructionViolation = errors.New("construction violation")

// ErrSchemaMismatch is returned when a snapshot fragment does not match the
// declared shape of the entity decoding it.
var ErrSchemaMismatch = errors.New("schema mismatch")

// ErrStructuralImmutability is returned when elements are added to or removed
// from a fixed-shape collection.
var ErrStructuralImmutability = errors.New("structural immutability")

// ErrProtocolValidation is returned when a tagged variant receives an unknown
// tag, misses a required parameter or gets a parameter of the wrong type.
var ErrProtocolValidation = errors.New("protocol validation failed")

// ErrNotFound is returned when a lookup cannot find the requested element.
var ErrNotFound = errors.New("not found")

// ErrInvalidValue is returned when a value falls outside its enumeration.
var ErrInvalidValue = errors.New("invalid value")

// ErrSessionClosed is returned when an entity is mutated after its session ended.
var ErrSessionClosed = errors.New("session closed")

// ErrSessionBusy is returned when an engine handle is already borrowed by another session.
var ErrSessionBusy = errors.New("engine handle already in use")

// ErrCommitNotFound is returned when an archived commit ID cannot be found.
var ErrCommitNotFound = errors.New("commit not found")

// ErrReadOnly is returned when a write reaches an engine opened read-only.
var ErrReadOnly = errors.New("engine is read-only")
