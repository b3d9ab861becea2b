// Package ngio provides the session lifecycle engine for gateway-backed
// applications: it acquires, verifies, persists, and tears down a login
// session against the remote gateway, with rate-limited polling, capped
// retry on server failure, and local persistence of remembered sessions.
//
// The package is driven cooperatively: a host application calls
// [Session.Update] on a timer or frame tick, and the session decides per
// tick whether to issue a remote call. Remote failures never surface as
// errors; they map to [StatusCode] transitions observed through Update.
//
// # Architecture boundaries
//
// ngio is the public surface. It exposes [Session], [Builder], [Config], the
// [Core] and [Storage] boundary contracts, and value types (CallResult,
// SessionEvent, MetricsSnapshot). Concrete transports live in subpackages:
// gateway/ implements Core over HTTP, redisstore/ implements Storage over
// Redis.
//
// # What this package must NOT do
//
//   - Perform wire-level serialization, signing, or schema validation of
//     gateway requests; that belongs to Core implementations.
//   - Issue more than one remote call at a time per Session, or any call
//     within the configured rate-limit window of the previous one.
//   - Raise remote or configuration failures as panics or errors from
//     Update; all failures are communicated through status.
//
// # Concurrency contract
//
// A Session is safe for concurrent use, but the intended model is a single
// driving goroutine calling Update while completion handlers run on call
// goroutines. The canProceed guard, not the internal mutex, enforces the
// one-in-flight-call invariant.
package ngio
