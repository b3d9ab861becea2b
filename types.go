package ngio

// StatusCode defines a public type used by ngio APIs.
//
// StatusCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StatusCode uint8

const (
	// StatusUninitialized is an exported constant or variable used by the session engine.
	StatusUninitialized StatusCode = iota
	// StatusWaitingForServer is an exported constant or variable used by the session engine.
	StatusWaitingForServer
	// StatusWaitingForUser is an exported constant or variable used by the session engine.
	StatusWaitingForUser
	// StatusLoginRequired is an exported constant or variable used by the session engine.
	StatusLoginRequired
	// StatusLoginSuccessful is an exported constant or variable used by the session engine.
	StatusLoginSuccessful
	// StatusLoginCancelled is an exported constant or variable used by the session engine.
	StatusLoginCancelled
	// StatusLoginFailed is an exported constant or variable used by the session engine.
	StatusLoginFailed
	// StatusUserLoggedOut is an exported constant or variable used by the session engine.
	StatusUserLoggedOut
	// StatusServerUnavailable is an exported constant or variable used by the session engine.
	StatusServerUnavailable
	// StatusExceededMaxAttempts is an exported constant or variable used by the session engine.
	StatusExceededMaxAttempts

	// statusNone marks "no status observed yet" for change detection.
	statusNone StatusCode = 255
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s StatusCode) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusWaitingForServer:
		return "waiting_for_server"
	case StatusWaitingForUser:
		return "waiting_for_user"
	case StatusLoginRequired:
		return "login_required"
	case StatusLoginSuccessful:
		return "login_successful"
	case StatusLoginCancelled:
		return "login_cancelled"
	case StatusLoginFailed:
		return "login_failed"
	case StatusUserLoggedOut:
		return "user_logged_out"
	case StatusServerUnavailable:
		return "server_unavailable"
	case StatusExceededMaxAttempts:
		return "exceeded_max_attempts"
	case statusNone:
		return "none"
	default:
		return "unknown"
	}
}

// Settled reports whether the status only changes through an explicit user
// action (login retry, cancel, or logout), never through an automatic update.
func (s StatusCode) Settled() bool {
	switch s {
	case StatusExceededMaxAttempts, StatusLoginCancelled, StatusLoginFailed, StatusUserLoggedOut:
		return true
	default:
		return false
	}
}

// Mode defines a public type used by ngio APIs.
//
// Mode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Mode uint8

const (
	// ModeExpired is an exported constant or variable used by the session engine.
	ModeExpired Mode = iota
	// ModeNew is an exported constant or variable used by the session engine.
	ModeNew
	// ModeCheck is an exported constant or variable used by the session engine.
	ModeCheck
	// ModeWait is an exported constant or variable used by the session engine.
	ModeWait
	// ModeValid is an exported constant or variable used by the session engine.
	ModeValid
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m Mode) String() string {
	switch m {
	case ModeExpired:
		return "expired"
	case ModeNew:
		return "new"
	case ModeCheck:
		return "check"
	case ModeWait:
		return "wait"
	case ModeValid:
		return "valid"
	default:
		return "unknown"
	}
}

// UserRecord defines a public type used by ngio APIs.
//
// UserRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Supporter bool   `json:"supporter"`
}
