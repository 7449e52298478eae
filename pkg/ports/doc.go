/*
Package ports defines the driven ports (interfaces) of the Toybox state sync layer.

These interfaces decouple sessions from the simulation they talk to and from the
infrastructure around them, so the same entity graph works against an
in-process engine, a snapshot file or a remote engine over HTTP.

# Key Interfaces

  - Engine: reads and writes the simulation snapshot and answers geometry queries.
  - ConfigSource: optional engine capability exposing the simulation config.
  - DistributedLocker: cross-process exclusive access to an engine handle.
  - Archive: append-only record of committed snapshots.

Each interface ships a contract suite (RunEngineContract, RunArchiveContract)
that adapters run from their own tests.
*/
package ports
