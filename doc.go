/*
Package toybox is the state synchronization layer between Go code and a
running Toybox simulation.

A simulation engine exposes its state as one flat JSON snapshot. Toybox
decodes that snapshot into a typed, mutation-tracked entity graph, lets the
caller edit it, and writes it back once, only if something changed and only
if the edit finished without error.

# Concept

Every edit happens inside a session: read, decode, mutate, encode, write.
The engine handle is lent to a single session at a time. Immutable fields,
fixed-shape collections and the movement protocol variant reject invalid
edits synchronously, so a bad edit can never reach the engine.

# Usage

	eng := file.New("state.json", amidar.GameName)
	tb := toybox.New(eng, toybox.WithLogger(logging.New(slog.LevelInfo)))

	err := tb.Amidar(ctx, func(iv *amidar.Intervention) error {
		return iv.RemoveEnemy(iv.NumEnemies() - 1)
	})

# Packages

  - pkg/domain: errors, snapshots, diffs, lifecycle hooks.
  - pkg/schema, pkg/entity: field declarations, entity base, collections, variants.
  - pkg/session: the scoped session and the handle Manager.
  - pkg/amidar: the Amidar entity graph and intervention helpers.
  - pkg/adapters: memory, file and HTTP engines; redis and sqlite archives and locks.
  - pkg/middleware, pkg/observability, pkg/archive: cross-cutting engine and session concerns.
*/
package toybox
