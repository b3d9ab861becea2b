package ngio

import "context"

const (
	// ComponentStartSession is an exported constant or variable used by the session engine.
	ComponentStartSession = "App.startSession"
	// ComponentCheckSession is an exported constant or variable used by the session engine.
	ComponentCheckSession = "App.checkSession"
	// ComponentEndSession is an exported constant or variable used by the session engine.
	ComponentEndSession = "App.endSession"
)

// ErrorCodeLoginCancelled is the gateway error code reported when the user
// declined the login on the passport page.
const ErrorCodeLoginCancelled = 111

// ComponentHandle defines a public type used by ngio APIs.
//
// ComponentHandle instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ComponentHandle struct {
	Name       string
	Parameters map[string]any
}

// CallOptions defines a public type used by ngio APIs.
//
// CallOptions instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CallOptions struct {
	// SessionID is attached to the request envelope; empty for anonymous calls.
	SessionID string
}

// CallError defines a public type used by ngio APIs.
//
// CallError instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CallError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *CallError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// SessionPayload defines a public type used by ngio APIs.
//
// SessionPayload instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionPayload struct {
	ID          string      `json:"id"`
	PassportURL string      `json:"passport_url"`
	Expired     bool        `json:"expired"`
	Remember    bool        `json:"remember"`
	User        *UserRecord `json:"user"`
}

// CallResult is the normalized per-component result consumed by the session
// state machine. Cores resolve the gateway's "single record or array of
// tagged records" payload shape before returning, so the state machine never
// scans payloads itself.
type CallResult struct {
	Component string          `json:"__object"`
	Success   bool            `json:"success"`
	Error     *CallError      `json:"error,omitempty"`
	Session   *SessionPayload `json:"session,omitempty"`
}

// Core is the boundary contract with the service core. A Core resolves named
// remote operations, executes one as a blocking result-producing call, and
// executes several as one atomic batch. Implementations must be safe for
// concurrent use; the session engine invokes Execute from its own goroutines.
type Core interface {
	// AppID returns the application identifier used to namespace persistence.
	AppID() string

	// Component resolves a named remote operation.
	Component(name string) (ComponentHandle, error)

	// Execute performs one remote operation and returns its normalized result.
	// A non-nil error means the call never produced a gateway-level response
	// (transport failure, timeout, cancelled context).
	Execute(ctx context.Context, opts CallOptions, h ComponentHandle) (*CallResult, error)

	// ExecuteBatch performs several operations as one atomic request and
	// returns one normalized result per component, in request order.
	ExecuteBatch(ctx context.Context, opts CallOptions, hs ...ComponentHandle) ([]*CallResult, error)
}

// ResultFor selects the result tagged with the given component name, or the
// sole untagged result when the response carried a single record.
func ResultFor(results []*CallResult, component string) *CallResult {
	for _, r := range results {
		if r != nil && r.Component == component {
			return r
		}
	}
	if len(results) == 1 && results[0] != nil && results[0].Component == "" {
		return results[0]
	}
	return nil
}
