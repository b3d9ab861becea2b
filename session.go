package ngio

import (
	"context"
	"log"
	"sync"
	"time"
)

// Session is the local representation of a login handshake with the remote
// gateway. It owns the lifecycle status, a polling mode, retry bookkeeping,
// and the session/user identifiers, and is driven exclusively through
// [Session.Update] plus the explicit user actions (CancelLogin, LogOut,
// OpenLoginPage).
//
// A Session never surfaces remote failures as errors: every failure maps to a
// StatusCode transition observed on the next Update. Completion handlers run
// on call goroutines, so all mutable state is mutex-guarded; the canProceed
// flag — not the mutex — is what enforces the single-in-flight-call
// invariant, since a lock cannot span an asynchronous call.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	core    Core
	storage Storage
	opener  PassportOpener
	events  *eventDispatcher
	metrics *Metrics

	status             StatusCode
	lastObservedStatus StatusCode
	statusChanged      bool
	mode               Mode
	lastCallTime       time.Time
	canProceed         bool
	attemptCount       int

	sessionID           string
	uriSessionID        string
	rememberedSessionID string
	remember            bool
	user                *UserRecord
	passportURL         string
	expired             bool

	inflightCancel context.CancelFunc
}

// Close releases the session's background resources. It cancels any
// outstanding remote call and drains the event dispatcher. The session state
// itself is left untouched; there is no explicit disposal of a Session.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.inflightCancel
	s.inflightCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if s.events != nil {
		s.events.Close()
	}
}

/*
====================================
ACCESSORS
====================================
*/

// Status describes the status operation and its observable behavior.
//
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Status() StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StatusChanged reports whether the most recent Update observed a status
// transition.
func (s *Session) StatusChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusChanged
}

// Mode describes the mode operation and its observable behavior.
//
// Mode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SessionID describes the sessionid operation and its observable behavior.
//
// SessionID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// User returns the authenticated user once login succeeded, nil before.
func (s *Session) User() *UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// PassportURL describes the passporturl operation and its observable behavior.
//
// PassportURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) PassportURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passportURL
}

// AttemptCount describes the attemptcount operation and its observable behavior.
//
// AttemptCount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) AttemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptCount
}

// Remember reports whether the server asked this session to be persisted.
func (s *Session) Remember() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remember
}

// Expired reports whether the server declared the last checked session
// expired; cleared again once a fresh session is started.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// CanProceed reports whether the session is free to issue a remote call.
// False while a call is outstanding, or permanently after a fatal
// misconfiguration until a core is reattached.
func (s *Session) CanProceed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canProceed
}

// StorageKey returns the namespaced persistence key, empty when no service
// core is attached.
func (s *Session) StorageKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageKeyLocked()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
//
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) EventsDropped() uint64 {
	if s == nil || s.events == nil {
		return 0
	}
	return s.events.Dropped()
}

// AttachCore attaches (or replaces) the service core and re-enables automatic
// updates after the no-core fatal path disabled them.
func (s *Session) AttachCore(core Core) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core = core
	if core != nil {
		s.canProceed = true
	}
}

/*
====================================
UPDATE LOOP
====================================
*/

// Update drives the state machine and may be called at any rate; remote
// calls are internally limited to one per rate-limit window. Side effects
// are confined to session state and at most one onChange invocation per
// call, made when the status differs from the previously observed one.
func (s *Session) Update(onChange func(*Session)) {
	s.mu.Lock()

	s.statusChanged = false
	if s.status != s.lastObservedStatus {
		s.statusChanged = true
		prev := s.lastObservedStatus
		s.lastObservedStatus = s.status
		s.metricInc(MetricStatusChange)
		s.emitLocked(SessionEvent{
			EventType:      EventStatusChange,
			Status:         s.status.String(),
			PreviousStatus: prev.String(),
			Mode:           s.mode.String(),
			SessionID:      s.sessionID,
			Success:        true,
		})
		if onChange != nil {
			// The callback reads state through the public accessors, so the
			// lock is released around it. Update is not re-entered here.
			s.mu.Unlock()
			onChange(s)
			s.mu.Lock()
		}
	}

	if !s.canProceed || s.mode == ModeWait {
		s.mu.Unlock()
		return
	}

	if s.core == nil {
		// Fatal for this session: reported, not raised. AttachCore recovers.
		s.canProceed = false
		s.mu.Unlock()
		log.Print("ngio: ", ErrNoCore, "; automatic updates disabled")
		return
	}

	if s.status == StatusServerUnavailable {
		if s.attemptCount >= s.cfg.Session.MaxAttempts {
			s.status = StatusExceededMaxAttempts
			s.mode = ModeWait
			s.metricInc(MetricMaxAttemptsExceeded)
			s.mu.Unlock()
			return
		}
		s.status = StatusUninitialized
		s.attemptCount++
		s.metricInc(MetricRetryAttempt)
		s.emitLocked(SessionEvent{
			EventType: EventRetryScheduled,
			Status:    s.status.String(),
			Success:   true,
		})
	}

	if s.status == StatusUninitialized {
		s.loadRememberedLocked()
		if s.uriSessionID != "" {
			s.sessionID = s.uriSessionID
		} else {
			s.sessionID = s.rememberedSessionID
		}
		if usableSessionID(s.sessionID) {
			s.mode = ModeCheck
		} else {
			s.mode = ModeNew
		}
	}

	if time.Since(s.lastCallTime) < s.cfg.Session.RateLimitWindow {
		s.mu.Unlock()
		return
	}
	s.lastCallTime = time.Now()

	switch s.mode {
	case ModeNew:
		s.mode = ModeWait
		s.startSessionLocked()
	case ModeCheck:
		s.mode = ModeWait
		s.checkSessionLocked()
	}

	s.mu.Unlock()
}

/*
====================================
REMOTE OPERATIONS
====================================
*/

func (s *Session) startSessionLocked() {
	s.canProceed = false
	s.resetSessionLocked()
	s.sessionID = ""
	s.status = StatusWaitingForServer

	h, err := s.core.Component(ComponentStartSession)
	if err != nil {
		s.applyStartResultLocked(nil, err)
		s.canProceed = true
		return
	}

	s.launchLocked(ComponentStartSession, CallOptions{}, h, s.applyStartResultLocked)
}

func (s *Session) checkSessionLocked() {
	s.canProceed = false

	h, err := s.core.Component(ComponentCheckSession)
	if err != nil {
		s.applyCheckResultLocked(nil, err)
		s.canProceed = true
		return
	}

	s.launchLocked(ComponentCheckSession, CallOptions{SessionID: s.sessionID}, h, s.applyCheckResultLocked)
}

// launchLocked sequences one remote call: the blocking Execute runs on its
// own goroutine and the matching handler is applied under the lock when the
// result arrives. The handler is the only place that flips canProceed back.
func (s *Session) launchLocked(component string, opts CallOptions, h ComponentHandle, apply func(*CallResult, error)) {
	ctx, cancel := s.callContextLocked()
	s.inflightCancel = cancel
	s.emitLocked(SessionEvent{
		EventType: EventCallStarted,
		Component: component,
		Status:    s.status.String(),
		SessionID: opts.SessionID,
		Success:   true,
	})

	core := s.core
	go func() {
		started := time.Now()
		res, err := core.Execute(ctx, opts, h)
		cancel()

		s.mu.Lock()
		s.inflightCancel = nil
		s.observeLatencyLocked(time.Since(started))
		apply(res, err)
		s.canProceed = true
		s.mu.Unlock()
	}()
}

func (s *Session) applyStartResultLocked(res *CallResult, err error) {
	if err != nil || res == nil || !res.Success || res.Session == nil {
		s.status = StatusServerUnavailable
		// Drop out of wait so the retry cascade in Update can re-classify.
		s.mode = ModeExpired
		s.metricInc(MetricStartSessionFailure)
		s.emitLocked(SessionEvent{
			EventType: EventCallFailed,
			Component: ComponentStartSession,
			Status:    s.status.String(),
			Error:     errString(err),
		})
		return
	}

	s.sessionID = res.Session.ID
	s.passportURL = res.Session.PassportURL
	s.status = StatusLoginRequired
	// Block further polling until the user opens the passport page.
	s.mode = ModeWait
	s.metricInc(MetricStartSessionSuccess)
	s.emitLocked(SessionEvent{
		EventType: EventCallCompleted,
		Component: ComponentStartSession,
		Status:    s.status.String(),
		SessionID: s.sessionID,
		Success:   true,
	})
}

func (s *Session) applyCheckResultLocked(res *CallResult, err error) {
	if err != nil || res == nil {
		s.status = StatusServerUnavailable
		s.mode = ModeExpired
		s.metricInc(MetricCheckSessionFailure)
		s.emitLocked(SessionEvent{
			EventType: EventCallFailed,
			Component: ComponentCheckSession,
			Status:    s.status.String(),
			Error:     errString(err),
		})
		return
	}

	if !res.Success {
		s.sessionID = ""
		reason := StatusLoginFailed
		if res.Error != nil && res.Error.Code == ErrorCodeLoginCancelled {
			reason = StatusLoginCancelled
		}
		s.cancelLoginLocked(reason)
		return
	}

	if res.Session == nil || res.Session.Expired {
		// Force a brand-new session on the next tick. Mode is set explicitly
		// rather than left to whatever the last classification produced.
		s.resetSessionLocked()
		s.sessionID = ""
		s.status = StatusUninitialized
		s.mode = ModeNew
		s.expired = true
		s.metricInc(MetricSessionExpired)
		s.emitLocked(SessionEvent{
			EventType: EventCallCompleted,
			Component: ComponentCheckSession,
			Status:    s.status.String(),
			Success:   true,
			Metadata:  map[string]string{"reason": "session_expired"},
		})
		return
	}

	if res.Session.User != nil {
		u := *res.Session.User
		s.user = &u
		s.status = StatusLoginSuccessful
		s.mode = ModeValid
		s.metricInc(MetricLoginSuccess)
		if res.Session.Remember {
			s.persistSessionLocked()
			s.remember = true
		}
		s.emitLocked(SessionEvent{
			EventType: EventCallCompleted,
			Component: ComponentCheckSession,
			Status:    s.status.String(),
			SessionID: s.sessionID,
			Success:   true,
		})
		return
	}

	// No user attached yet: keep polling.
	s.mode = ModeCheck
	s.metricInc(MetricCheckSessionPending)
	s.emitLocked(SessionEvent{
		EventType: EventCallCompleted,
		Component: ComponentCheckSession,
		Status:    s.status.String(),
		SessionID: s.sessionID,
		Success:   true,
		Metadata:  map[string]string{"reason": "login_pending"},
	})
}

// endSession executes the end-session and start-session operations as one
// atomic batch, so a logout is always followed by a fresh anonymous session
// without an unauthenticated gap visible to the driver.
func (s *Session) endSession(onComplete func()) {
	s.mu.Lock()

	if s.core == nil {
		s.canProceed = false
		s.mu.Unlock()
		log.Print("ngio: ", ErrNoCore, "; automatic updates disabled")
		if onComplete != nil {
			onComplete()
		}
		return
	}

	s.canProceed = false

	endH, endErr := s.core.Component(ComponentEndSession)
	startH, startErr := s.core.Component(ComponentStartSession)
	if endErr != nil || startErr != nil {
		err := endErr
		if err == nil {
			err = startErr
		}
		s.applyEndResultLocked(nil, err)
		s.applyStartResultLocked(nil, err)
		s.canProceed = true
		s.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
		return
	}

	opts := CallOptions{SessionID: s.sessionID}
	ctx, cancel := s.callContextLocked()
	s.inflightCancel = cancel
	core := s.core
	s.emitLocked(SessionEvent{
		EventType: EventCallStarted,
		Component: ComponentEndSession,
		Status:    s.status.String(),
		SessionID: opts.SessionID,
		Success:   true,
	})
	s.mu.Unlock()

	go func() {
		started := time.Now()
		results, err := core.ExecuteBatch(ctx, opts, endH, startH)
		cancel()

		s.mu.Lock()
		s.inflightCancel = nil
		s.observeLatencyLocked(time.Since(started))
		// End handler first, then the start handler, on the same response.
		s.applyEndResultLocked(ResultFor(results, ComponentEndSession), err)
		s.applyStartResultLocked(ResultFor(results, ComponentStartSession), err)
		s.canProceed = true
		s.mu.Unlock()

		if onComplete != nil {
			onComplete()
		}
	}()
}

func (s *Session) applyEndResultLocked(_ *CallResult, _ error) {
	// Local credentials are dropped regardless of the remote outcome; the
	// server-side teardown is best-effort.
	s.resetSessionLocked()
	s.sessionID = ""
	s.user = nil
	s.status = StatusUserLoggedOut
	s.metricInc(MetricLogout)
	s.emitLocked(SessionEvent{
		EventType: EventCallCompleted,
		Component: ComponentEndSession,
		Status:    s.status.String(),
		Success:   true,
	})
}

/*
====================================
USER ACTIONS
====================================
*/

// CancelLogin aborts a pending login with StatusLoginCancelled.
func (s *Session) CancelLogin() {
	s.CancelLoginWithReason(StatusLoginCancelled)
}

// CancelLoginWithReason aborts a pending login: it fires a best-effort
// end-session call, fully resets local session fields, records the reason as
// the new status, and makes the next Update immediately eligible to act.
// This is the only path that resets the retry counter.
func (s *Session) CancelLoginWithReason(reason StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLoginLocked(reason)
}

func (s *Session) cancelLoginLocked(reason StatusCode) {
	s.fireEndSessionLocked()
	s.resetSessionLocked()
	s.sessionID = ""
	s.status = reason
	s.attemptCount = 0
	s.mode = ModeNew
	s.lastCallTime = time.Time{}

	if reason == StatusLoginCancelled {
		s.metricInc(MetricLoginCancelled)
	} else {
		s.metricInc(MetricLoginFailed)
	}
}

// fireEndSessionLocked tears down the server-side session without waiting
// for the outcome and without touching canProceed: an already in-flight
// start/check call cannot be aborted and may still complete afterward,
// overwriting already-reset state idempotently.
func (s *Session) fireEndSessionLocked() {
	if s.core == nil || s.sessionID == "" {
		return
	}
	h, err := s.core.Component(ComponentEndSession)
	if err != nil {
		return
	}
	opts := CallOptions{SessionID: s.sessionID}
	core := s.core
	ctx, cancel := s.callContextLocked()
	go func() {
		defer cancel()
		_, _ = core.Execute(ctx, opts, h)
	}()
}

// OpenLoginPage opens the external passport page and switches the session to
// polling for a completed login. It requires a prior successful start
// session; without a passport url it reports ErrNoPassportURL and does
// nothing else.
func (s *Session) OpenLoginPage() error {
	s.mu.Lock()
	if s.passportURL == "" {
		s.mu.Unlock()
		log.Print("ngio: OpenLoginPage called before a passport url was issued")
		return ErrNoPassportURL
	}
	url := s.passportURL
	s.status = StatusWaitingForUser
	s.mode = ModeCheck
	opener := s.opener
	s.metricInc(MetricPassportOpened)
	s.emitLocked(SessionEvent{
		EventType: EventPassportOpened,
		Status:    s.status.String(),
		SessionID: s.sessionID,
		Success:   true,
	})
	s.mu.Unlock()

	if opener == nil {
		return nil
	}
	return opener.Open(url)
}

// LogOut blocks further polling and tears the session down through the
// atomic end+start batch. onComplete, when non-nil, runs after the batch
// response has been applied.
func (s *Session) LogOut(onComplete func()) {
	s.mu.Lock()
	s.mode = ModeWait
	s.mu.Unlock()
	s.endSession(onComplete)
}

/*
====================================
INTERNAL HELPERS
====================================
*/

// resetSessionLocked clears the session-scoped fields and persists a null
// value under the storage key. sessionID, status, mode, and the retry
// counters are left for callers to clear explicitly.
func (s *Session) resetSessionLocked() {
	s.uriSessionID = ""
	s.rememberedSessionID = ""
	s.remember = false
	s.user = nil
	s.expired = false

	key := s.storageKeyLocked()
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.SetItem(context.Background(), key, storedNull); err != nil {
		log.Print("ngio: clearing remembered session failed")
	}
}

func (s *Session) loadRememberedLocked() {
	key := s.storageKeyLocked()
	if key == "" || s.storage == nil {
		return
	}
	v, err := s.storage.GetItem(context.Background(), key)
	if err != nil {
		// Treated as no remembered session; storage reads are best-effort.
		log.Print("ngio: reading remembered session failed")
		return
	}
	s.rememberedSessionID = v
}

func (s *Session) persistSessionLocked() {
	key := s.storageKeyLocked()
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.SetItem(context.Background(), key, s.sessionID); err != nil {
		log.Print("ngio: persisting remembered session failed")
		return
	}
	s.metricInc(MetricSessionRemembered)
	s.emitLocked(SessionEvent{
		EventType: EventSessionRemembered,
		SessionID: s.sessionID,
		Success:   true,
	})
}

func (s *Session) storageKeyLocked() string {
	if s.core == nil {
		return ""
	}
	return s.cfg.Session.StorageKeyPrefix + s.core.AppID() + s.cfg.Session.StorageKeySuffix
}

func (s *Session) callContextLocked() (context.Context, context.CancelFunc) {
	if s.cfg.Session.CallTimeout > 0 {
		return context.WithTimeout(context.Background(), s.cfg.Session.CallTimeout)
	}
	return context.WithCancel(context.Background())
}

func (s *Session) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Session) observeLatencyLocked(d time.Duration) {
	if s.metrics == nil || !s.metrics.LatencyEnabled() {
		return
	}
	s.metrics.Observe(MetricCallLatency, d)
}

func (s *Session) emitLocked(event SessionEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.Emit(context.Background(), event)
}

func usableSessionID(id string) bool {
	return id != "" && id != storedNull
}

func errString(err error) string {
	if err == nil {
		return "gateway reported failure"
	}
	return err.Error()
}
