package internaldefs

import (
	ngio "github.com/ngio/ngio-go"
)

// CounterDef defines a public type used by ngio APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   ngio.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by ngio APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   ngio.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: ngio.MetricStartSessionSuccess, Name: "ngio_start_session_success_total", Help: "Successful session starts."},
	{ID: ngio.MetricStartSessionFailure, Name: "ngio_start_session_failure_total", Help: "Failed session starts."},
	{ID: ngio.MetricCheckSessionFailure, Name: "ngio_check_session_failure_total", Help: "Session checks that never reached the gateway."},
	{ID: ngio.MetricCheckSessionPending, Name: "ngio_check_session_pending_total", Help: "Session checks answered without an attached user."},
	{ID: ngio.MetricSessionExpired, Name: "ngio_session_expired_total", Help: "Sessions reported expired by the gateway."},
	{ID: ngio.MetricLoginSuccess, Name: "ngio_login_success_total", Help: "Completed logins."},
	{ID: ngio.MetricLoginCancelled, Name: "ngio_login_cancelled_total", Help: "Logins declined by the user on the passport page."},
	{ID: ngio.MetricLoginFailed, Name: "ngio_login_failed_total", Help: "Logins rejected by the gateway."},
	{ID: ngio.MetricLogout, Name: "ngio_logout_total", Help: "Logout operations."},
	{ID: ngio.MetricSessionRemembered, Name: "ngio_session_remembered_total", Help: "Session ids persisted for later reuse."},
	{ID: ngio.MetricRetryAttempt, Name: "ngio_retry_attempt_total", Help: "Scheduled retries after server contact failures."},
	{ID: ngio.MetricMaxAttemptsExceeded, Name: "ngio_max_attempts_exceeded_total", Help: "Sessions settled after exhausting the retry cap."},
	{ID: ngio.MetricPassportOpened, Name: "ngio_passport_opened_total", Help: "Passport login pages opened."},
	{ID: ngio.MetricStatusChange, Name: "ngio_status_change_total", Help: "Observed status transitions."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: ngio.MetricCallLatency, Name: "ngio_call_latency_seconds", Help: "Remote call latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
