/*
Package entity provides the building blocks of a mutation-tracked object graph
decoded from a simulation snapshot.

# Lifecycle

Every entity embeds a Base. A Base starts in the construction phase, during
which decoders assign fields freely. Seal ends the phase; from then on every
setter goes through Base.Mutate, which rejects immutable fields and marks the
session-wide Tracker dirty.

# Building Blocks

  - Tracker: the session-wide dirty flag, closed when the session ends.
  - Base: construction phase, field declaration and tracker reference.
  - Collection: an ordered, optionally fixed-shape sequence of entities.
  - VariantSpec: parameter declarations for tagged single-key variants.
  - GameBase: the score/lives/rand/level fields shared by every game root.
*/
package entity
