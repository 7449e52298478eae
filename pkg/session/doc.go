/*
Package session implements the scoped transaction between a caller and a
simulation engine.

A Manager owns one engine handle and lends it to at most one Session at a time,
optionally protected by a distributed lock when several processes share the
engine. A Session reads the snapshot once, decodes it into a typed graph
described by a Model and, when it closes cleanly, writes the graph back only if
something was mutated. Any error or panic inside Run discards the session
without writing.
*/
package session
