// Package memory provides in-process implementations of the engine and
// archive ports, used by tests and offline tooling.
package memory
