// Package http exposes a ports.Engine over HTTP and consumes one.
//
// The wire surface is deliberately small:
//
//	GET  /health        liveness
//	GET  /game          {"game": name}
//	GET  /state         the current snapshot
//	PUT  /state         replace the snapshot (204)
//	GET  /config        engine configuration, when the engine has one
//	POST /query/{name}  {"arg": ...} -> {"result": ...}
//
// Errors are JSON bodies {"error": message, "code": kind} with a status that
// Client maps back onto the domain sentinels.
package http
