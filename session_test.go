package ngio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeCore struct {
	mu      sync.Mutex
	appID   string
	results map[string]*CallResult
	errs    map[string]error
	gate    chan struct{}

	calls    []string
	optsSeen []CallOptions

	batchResults []*CallResult
	batchErr     error
	batches      [][]string
	batchOpts    []CallOptions
}

func (f *fakeCore) AppID() string { return f.appID }

func (f *fakeCore) Component(name string) (ComponentHandle, error) {
	if name == "" {
		return ComponentHandle{}, ErrComponentUnknown
	}
	return ComponentHandle{Name: name}, nil
}

func (f *fakeCore) Execute(ctx context.Context, opts CallOptions, h ComponentHandle) (*CallResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, h.Name)
	f.optsSeen = append(f.optsSeen, opts)
	gate := f.gate
	res := f.results[h.Name]
	err := f.errs[h.Name]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeCore) ExecuteBatch(_ context.Context, opts CallOptions, hs ...ComponentHandle) ([]*CallResult, error) {
	names := make([]string, 0, len(hs))
	for _, h := range hs {
		names = append(names, h.Name)
	}

	f.mu.Lock()
	f.batches = append(f.batches, names)
	f.batchOpts = append(f.batchOpts, opts)
	results := f.batchResults
	err := f.batchErr
	f.mu.Unlock()

	return results, err
}

func (f *fakeCore) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeCore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func startResult(id, passport string) *CallResult {
	return &CallResult{
		Component: ComponentStartSession,
		Success:   true,
		Session:   &SessionPayload{ID: id, PassportURL: passport},
	}
}

func newTestSession(t *testing.T, core Core, mutate func(*Config)) *Session {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := New().
		WithConfig(cfg).
		WithCore(core).
		WithStorage(NewMemoryStorage()).
		WithOpener(NoOpOpener{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func waitIdle(t *testing.T, s *Session) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.CanProceed() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("session never finished its outstanding call")
}

func TestUpdateWithoutCoreDisablesUpdates(t *testing.T) {
	s, err := New().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		s.Update(nil)
	}

	if got := s.Status(); got != StatusUninitialized {
		t.Fatalf("status = %v, want uninitialized", got)
	}
	if s.CanProceed() {
		t.Fatal("canProceed should stay false after the no-core fatal path")
	}
}

func TestAttachCoreRecoversFromNoCore(t *testing.T) {
	s, err := New().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	s.Update(nil)
	if s.CanProceed() {
		t.Fatal("expected updates disabled")
	}

	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "https://example.test/passport")},
	}
	s.AttachCore(core)
	if !s.CanProceed() {
		t.Fatal("AttachCore should re-enable updates")
	}

	// The rate-limit window from Build defaults applies; zero it for the test.
	s.mu.Lock()
	s.cfg.Session.RateLimitWindow = 0
	s.mu.Unlock()

	s.Update(nil)
	waitIdle(t, s)
	if got := s.Status(); got != StatusLoginRequired {
		t.Fatalf("status = %v, want login_required", got)
	}
}

func TestFirstUpdateStartsFreshSession(t *testing.T) {
	gate := make(chan struct{})
	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "https://example.test/passport")},
		gate:    gate,
	}
	s := newTestSession(t, core, nil)

	s.Update(nil)

	if got := s.Status(); got != StatusWaitingForServer {
		t.Fatalf("status = %v, want waiting_for_server while the call is in flight", got)
	}
	if got := s.Mode(); got != ModeWait {
		t.Fatalf("mode = %v, want wait", got)
	}
	if s.CanProceed() {
		t.Fatal("canProceed must be false while a call is outstanding")
	}

	// A second tick must not issue a second call.
	s.Update(nil)
	if got := core.callCount(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	close(gate)
	waitIdle(t, s)

	if got := s.Status(); got != StatusLoginRequired {
		t.Fatalf("status = %v, want login_required", got)
	}
	if got := s.SessionID(); got != "sid-1" {
		t.Fatalf("sessionID = %q, want sid-1", got)
	}
	if got := s.PassportURL(); got != "https://example.test/passport" {
		t.Fatalf("passportURL = %q", got)
	}
	if got := s.Mode(); got != ModeWait {
		t.Fatalf("mode = %v, want wait until the user opens the passport page", got)
	}
	if names := core.callNames(); len(names) != 1 || names[0] != ComponentStartSession {
		t.Fatalf("calls = %v, want a single start session", names)
	}
}

func TestRateLimitBlocksSecondCall(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		errs:  map[string]error{ComponentStartSession: errors.New("connection refused")},
	}
	s := newTestSession(t, core, func(cfg *Config) {
		cfg.Session.RateLimitWindow = time.Hour
	})

	// Defeat the window for the very first call only.
	s.mu.Lock()
	s.lastCallTime = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	s.Update(nil)
	waitIdle(t, s)
	if got := s.Status(); got != StatusServerUnavailable {
		t.Fatalf("status = %v, want server_unavailable", got)
	}

	for i := 0; i < 5; i++ {
		s.Update(nil)
		waitIdle(t, s)
	}

	if got := core.callCount(); got != 1 {
		t.Fatalf("calls = %d, want 1: retries inside the window must not dial out", got)
	}
	if got := s.AttemptCount(); got != 1 {
		t.Fatalf("attemptCount = %d, want 1", got)
	}
}

func TestRetryCapSettlesInExceededMaxAttempts(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		errs:  map[string]error{ComponentStartSession: errors.New("connection refused")},
	}
	s := newTestSession(t, core, func(cfg *Config) {
		cfg.Session.MaxAttempts = 2
	})

	lastAttempts := 0
	for i := 0; i < 10; i++ {
		s.Update(nil)
		waitIdle(t, s)
		if got := s.AttemptCount(); got < lastAttempts {
			t.Fatalf("attemptCount decreased from %d to %d without a cancel", lastAttempts, got)
		} else {
			lastAttempts = got
		}
		if s.Status() == StatusExceededMaxAttempts {
			break
		}
	}

	if got := s.Status(); got != StatusExceededMaxAttempts {
		t.Fatalf("status = %v, want exceeded_max_attempts", got)
	}

	// Terminal: no further automatic calls.
	before := core.callCount()
	for i := 0; i < 3; i++ {
		s.Update(nil)
	}
	if got := core.callCount(); got != before {
		t.Fatalf("calls grew from %d to %d after settling", before, got)
	}
	if got := core.callCount(); got != 1+2 {
		t.Fatalf("calls = %d, want initial attempt plus two retries", got)
	}
}

func TestStatusChangedObservedExactlyOnce(t *testing.T) {
	gate := make(chan struct{})
	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "https://example.test/passport")},
		gate:    gate,
	}
	s := newTestSession(t, core, nil)

	var observed []StatusCode
	onChange := func(sess *Session) {
		observed = append(observed, sess.Status())
	}

	s.Update(onChange) // none -> uninitialized, then dispatches
	if !s.StatusChanged() {
		t.Fatal("first update must observe the initial transition")
	}
	s.Update(onChange) // uninitialized -> waiting_for_server
	if !s.StatusChanged() {
		t.Fatal("second update must observe waiting_for_server")
	}
	s.Update(onChange) // still waiting: no transition
	if s.StatusChanged() {
		t.Fatal("third update must not report a change")
	}

	close(gate)
	waitIdle(t, s)

	if len(observed) != 2 {
		t.Fatalf("onChange ran %d times, want 2", len(observed))
	}
	if observed[0] != StatusUninitialized || observed[1] != StatusWaitingForServer {
		t.Fatalf("observed = %v", observed)
	}
}

func TestRememberedSessionIsChecked(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   true,
				Session:   &SessionPayload{ID: "stored-id"},
			},
		},
	}
	storage := NewMemoryStorage()
	if err := storage.SetItem(context.Background(), "_ngio_app-1_session_", "stored-id"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if names := core.callNames(); len(names) != 1 || names[0] != ComponentCheckSession {
		t.Fatalf("calls = %v, want a single check session", names)
	}
	core.mu.Lock()
	opts := core.optsSeen[0]
	core.mu.Unlock()
	if opts.SessionID != "stored-id" {
		t.Fatalf("check used session id %q, want stored-id", opts.SessionID)
	}

	// No user yet: mode stays check, canProceed restored, status untouched.
	if got := s.Mode(); got != ModeCheck {
		t.Fatalf("mode = %v, want check", got)
	}
	if got := s.Status(); got != StatusUninitialized {
		t.Fatalf("status = %v, want unchanged uninitialized", got)
	}
	if !s.CanProceed() {
		t.Fatal("canProceed must be restored after the call")
	}
}

func TestStoredNullCountsAsNoSession(t *testing.T) {
	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "u")},
	}
	storage := NewMemoryStorage()
	_ = storage.SetItem(context.Background(), "_ngio_app-1_session_", "null")

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if names := core.callNames(); len(names) != 1 || names[0] != ComponentStartSession {
		t.Fatalf("calls = %v, want a fresh start session", names)
	}
}

func TestURISessionIDPreferredOverStored(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {Component: ComponentCheckSession, Success: true, Session: &SessionPayload{}},
		},
	}
	storage := NewMemoryStorage()
	_ = storage.SetItem(context.Background(), "_ngio_app-1_session_", "stored-id")

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).WithURISessionID("uri-id").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	core.mu.Lock()
	opts := core.optsSeen[0]
	core.mu.Unlock()
	if opts.SessionID != "uri-id" {
		t.Fatalf("check used session id %q, want uri-id", opts.SessionID)
	}
}

func TestCheckCancelledByUser(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   false,
				Error:     &CallError{Code: ErrorCodeLoginCancelled, Message: "user cancelled"},
			},
		},
	}
	storage := NewMemoryStorage()
	_ = storage.SetItem(context.Background(), "_ngio_app-1_session_", "stored-id")

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if got := s.Status(); got != StatusLoginCancelled {
		t.Fatalf("status = %v, want login_cancelled", got)
	}
	if got := s.SessionID(); got != "" {
		t.Fatalf("sessionID = %q, want cleared", got)
	}
	if got := s.AttemptCount(); got != 0 {
		t.Fatalf("attemptCount = %d, want 0", got)
	}
	if got := s.Mode(); got != ModeNew {
		t.Fatalf("mode = %v, want new", got)
	}
}

func TestCheckRejectedWithoutCancelCode(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   false,
				Error:     &CallError{Code: 104, Message: "session rejected"},
			},
		},
	}
	storage := NewMemoryStorage()
	_ = storage.SetItem(context.Background(), "_ngio_app-1_session_", "stored-id")

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if got := s.Status(); got != StatusLoginFailed {
		t.Fatalf("status = %v, want login_failed", got)
	}
}

func TestCheckExpiredForcesFreshSession(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   true,
				Session:   &SessionPayload{ID: "stored-id", Expired: true},
			},
			ComponentStartSession: startResult("sid-2", "https://example.test/passport"),
		},
	}
	storage := NewMemoryStorage()
	_ = storage.SetItem(context.Background(), "_ngio_app-1_session_", "stored-id")

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if got := s.Status(); got != StatusUninitialized {
		t.Fatalf("status = %v, want uninitialized", got)
	}
	if got := s.Mode(); got != ModeNew {
		t.Fatalf("mode = %v, want new", got)
	}
	if got := s.SessionID(); got != "" {
		t.Fatalf("sessionID = %q, want cleared", got)
	}

	// Next tick acquires a brand-new session.
	s.Update(nil)
	waitIdle(t, s)
	if got := s.SessionID(); got != "sid-2" {
		t.Fatalf("sessionID = %q, want sid-2", got)
	}
}

func TestLoginSuccessRemembersSession(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentStartSession: startResult("sid-1", "https://example.test/passport"),
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   true,
				Session: &SessionPayload{
					ID:       "sid-1",
					Remember: true,
					User:     &UserRecord{ID: 42, Name: "PsychoGoldfish"},
				},
			},
		},
	}
	storage := NewMemoryStorage()

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)
	if err := s.OpenLoginPage(); err != nil {
		t.Fatalf("OpenLoginPage failed: %v", err)
	}
	if got := s.Status(); got != StatusWaitingForUser {
		t.Fatalf("status = %v, want waiting_for_user", got)
	}

	s.Update(nil)
	waitIdle(t, s)

	if got := s.Status(); got != StatusLoginSuccessful {
		t.Fatalf("status = %v, want login_successful", got)
	}
	if got := s.Mode(); got != ModeValid {
		t.Fatalf("mode = %v, want valid", got)
	}
	if u := s.User(); u == nil || u.ID != 42 || u.Name != "PsychoGoldfish" {
		t.Fatalf("user = %+v", u)
	}
	if !s.Remember() {
		t.Fatal("remember flag should be set")
	}

	stored, err := storage.GetItem(context.Background(), "_ngio_app-1_session_")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if stored != "sid-1" {
		t.Fatalf("stored id = %q, want sid-1", stored)
	}

	// Round-trip: a fresh session against the same storage checks instead of
	// starting anew.
	core2 := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentCheckSession: {Component: ComponentCheckSession, Success: true, Session: &SessionPayload{ID: "sid-1"}},
		},
	}
	s2, err := New().WithConfig(cfg).WithCore(core2).WithStorage(storage).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	s2.Update(nil)
	waitIdle(t, s2)
	if names := core2.callNames(); len(names) != 1 || names[0] != ComponentCheckSession {
		t.Fatalf("calls = %v, want a check against the remembered id", names)
	}
}

func TestLogOutChainsEndAndStartAtomically(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentStartSession: startResult("old-id", "https://example.test/passport"),
		},
		batchResults: []*CallResult{
			{Component: ComponentEndSession, Success: true},
			startResult("new-id", "https://example.test/passport2"),
		},
	}
	s := newTestSession(t, core, nil)

	s.Update(nil)
	waitIdle(t, s)
	if got := s.SessionID(); got != "old-id" {
		t.Fatalf("sessionID = %q, want old-id", got)
	}

	done := make(chan struct{})
	s.LogOut(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LogOut completion never ran")
	}
	waitIdle(t, s)

	core.mu.Lock()
	batches := core.batches
	batchOpts := core.batchOpts
	core.mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("batches = %v, want exactly one", batches)
	}
	if batches[0][0] != ComponentEndSession || batches[0][1] != ComponentStartSession {
		t.Fatalf("batch order = %v, want end then start", batches[0])
	}
	if batchOpts[0].SessionID != "old-id" {
		t.Fatalf("batch used session id %q, want old-id", batchOpts[0].SessionID)
	}

	// The chained start handler ran last: a fresh anonymous session exists
	// and the logged-out id is gone.
	if got := s.SessionID(); got != "new-id" {
		t.Fatalf("sessionID = %q, want new-id", got)
	}
	if got := s.Status(); got != StatusLoginRequired {
		t.Fatalf("status = %v, want login_required", got)
	}
	if s.User() != nil {
		t.Fatal("user should be cleared after logout")
	}
}

func TestCancelLoginResetsRetryCounter(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		errs:  map[string]error{ComponentStartSession: errors.New("connection refused")},
	}
	s := newTestSession(t, core, nil)

	for i := 0; i < 3; i++ {
		s.Update(nil)
		waitIdle(t, s)
	}
	if got := s.AttemptCount(); got == 0 {
		t.Fatal("expected accumulated retry attempts before cancel")
	}

	s.CancelLogin()

	if got := s.AttemptCount(); got != 0 {
		t.Fatalf("attemptCount = %d, want 0 after cancel", got)
	}
	if got := s.Status(); got != StatusLoginCancelled {
		t.Fatalf("status = %v, want login_cancelled", got)
	}
	if got := s.Mode(); got != ModeNew {
		t.Fatalf("mode = %v, want new", got)
	}

	// The next update is immediately eligible even with a long window.
	s.mu.Lock()
	s.cfg.Session.RateLimitWindow = time.Hour
	s.mu.Unlock()
	before := core.callCount()
	s.Update(nil)
	waitIdle(t, s)
	if got := core.callCount(); got != before+1 {
		t.Fatalf("calls = %d, want %d: cancel must rewind the rate limiter", got, before+1)
	}
}

type recordOpener struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordOpener) Open(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

func TestOpenLoginPage(t *testing.T) {
	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "https://example.test/passport")},
	}
	opener := &recordOpener{}

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(NewMemoryStorage()).WithOpener(opener).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := s.OpenLoginPage(); !errors.Is(err, ErrNoPassportURL) {
		t.Fatalf("err = %v, want ErrNoPassportURL before a start session", err)
	}

	s.Update(nil)
	waitIdle(t, s)

	if err := s.OpenLoginPage(); err != nil {
		t.Fatalf("OpenLoginPage failed: %v", err)
	}
	if got := s.Status(); got != StatusWaitingForUser {
		t.Fatalf("status = %v, want waiting_for_user", got)
	}
	if got := s.Mode(); got != ModeCheck {
		t.Fatalf("mode = %v, want check", got)
	}

	opener.mu.Lock()
	urls := opener.urls
	opener.mu.Unlock()
	if len(urls) != 1 || urls[0] != "https://example.test/passport" {
		t.Fatalf("opened urls = %v", urls)
	}
}

func TestEventsEmittedOnStatusChange(t *testing.T) {
	core := &fakeCore{
		appID:   "app-1",
		results: map[string]*CallResult{ComponentStartSession: startResult("sid-1", "u")},
	}
	sink := NewChannelSink(32)

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	cfg.Events.Enabled = true
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(NewMemoryStorage()).WithOpener(NoOpOpener{}).WithEventSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	s.Update(nil)
	waitIdle(t, s)

	select {
	case ev := <-sink.Events():
		if ev.EventType != EventStatusChange {
			t.Fatalf("event type = %v, want status_change", ev.EventType)
		}
		if ev.Status != "uninitialized" || ev.PreviousStatus != "none" {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestMetricsCountFlow(t *testing.T) {
	core := &fakeCore{
		appID: "app-1",
		results: map[string]*CallResult{
			ComponentStartSession: startResult("sid-1", "u"),
			ComponentCheckSession: {
				Component: ComponentCheckSession,
				Success:   true,
				Session:   &SessionPayload{ID: "sid-1", User: &UserRecord{ID: 7, Name: "tester"}},
			},
		},
	}

	cfg := DefaultConfig()
	cfg.Session.RateLimitWindow = 0
	cfg.Metrics.Enabled = true
	s, err := New().WithConfig(cfg).WithCore(core).WithStorage(NewMemoryStorage()).WithOpener(NoOpOpener{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s.Update(nil)
	waitIdle(t, s)
	if err := s.OpenLoginPage(); err != nil {
		t.Fatalf("OpenLoginPage failed: %v", err)
	}
	s.Update(nil)
	waitIdle(t, s)

	snap := s.MetricsSnapshot()
	if snap.Counters[MetricStartSessionSuccess] != 1 {
		t.Fatalf("start success counter = %d, want 1", snap.Counters[MetricStartSessionSuccess])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success counter = %d, want 1", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricPassportOpened] != 1 {
		t.Fatalf("passport opened counter = %d, want 1", snap.Counters[MetricPassportOpened])
	}
}
