package ngio

// Builder defines a public type used by ngio APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	core    Core
	storage Storage
	opener  PassportOpener

	eventSink EventSink

	uriSessionID string

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCore describes the withcore operation and its observable behavior.
//
// WithCore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCore(core Core) *Builder {
	b.core = core
	return b
}

// WithStorage describes the withstorage operation and its observable behavior.
//
// WithStorage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStorage(storage Storage) *Builder {
	b.storage = storage
	return b
}

// WithOpener describes the withopener operation and its observable behavior.
//
// WithOpener does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithOpener(opener PassportOpener) *Builder {
	b.opener = opener
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithEventsEnabled describes the witheventsenabled operation and its observable behavior.
//
// WithEventsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventsEnabled(enabled bool) *Builder {
	b.config.Events.Enabled = enabled
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithURISessionID seeds the session id supplied through launch parameters.
// It takes precedence over a remembered id when both are present.
func (b *Builder) WithURISessionID(id string) *Builder {
	b.uriSessionID = id
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	storage := b.storage
	if storage == nil {
		storage = NewMemoryStorage()
	}

	opener := b.opener
	if opener == nil {
		opener = BrowserOpener{}
	}

	// A nil core is allowed: attachment is a runtime concern and the session
	// reports the misconfiguration through Update instead of failing here.
	s := &Session{
		cfg:     cfg,
		core:    b.core,
		storage: storage,
		opener:  opener,
		events:  newEventDispatcher(cfg.Events, b.eventSink),
		metrics: NewMetrics(cfg.Metrics),

		status:             StatusUninitialized,
		lastObservedStatus: statusNone,
		mode:               ModeExpired,
		canProceed:         true,
		uriSessionID:       b.uriSessionID,
	}

	b.built = true

	return s, nil
}
