/*
Package domain holds the engine-independent vocabulary of the Toybox state sync
layer.

It owns the error taxonomy shared by every other package, the raw snapshot
type exchanged with a simulation engine, the top-level snapshot diff and the
lifecycle hooks fired by sessions. Nothing here performs I/O.

# Error Taxonomy

  - ErrConstructionViolation: assigning an immutable field after construction.
  - ErrSchemaMismatch: a snapshot fragment is missing an expected key or has the wrong shape.
  - ErrStructuralImmutability: adding or removing elements of a fixed collection.
  - ErrProtocolValidation: an invalid movement protocol tag or parameter.
  - ErrNotFound: a query helper cannot find the requested element.
*/
package domain
