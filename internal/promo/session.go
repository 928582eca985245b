// Package promo runs promo video generations: one Session per viewer, each
// driving a submit, poll and fetch flow against a video.Service.
package promo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"promostudio/internal/domain"
	"promostudio/internal/infra"
	"promostudio/internal/media"
	"promostudio/internal/providers/video"
)

// State is a step of the generation flow.
type State string

const (
	StateIdle          State = "idle"
	StateRequestingKey State = "requesting_key"
	StateSubmitting    State = "submitting"
	StatePolling       State = "polling"
	StateFetching      State = "fetching"
	StateReady         State = "ready"
	StateErrored       State = "errored"
)

// Active reports whether a flow is running in this state. The generate
// trigger is disabled while it is.
func (s State) Active() bool {
	switch s {
	case StateRequestingKey, StateSubmitting, StatePolling, StateFetching:
		return true
	}
	return false
}

// FailureKind separates failures the user can fix by selecting another key
// from everything else.
type FailureKind string

const (
	KindCredential FailureKind = "credential"
	KindGeneric    FailureKind = "generic"
)

// FailureCode picks the message shown for a failure.
type FailureCode string

const (
	CodeCredential FailureCode = "credential"
	CodeNoResult   FailureCode = "no_result"
	CodeTimeout    FailureCode = "timeout"
	CodeGeneric    FailureCode = "generic"
)

// ErrPollTimeout is returned when the optional poll deadline passes.
var ErrPollTimeout = errors.New("promo: operation did not finish before the poll deadline")

// Failure describes why a generation ended in StateErrored.
type Failure struct {
	Kind  FailureKind
	Code  FailureCode
	Cause error
}

func classify(err error) Failure {
	switch {
	case video.IsCredentialError(err):
		return Failure{Kind: KindCredential, Code: CodeCredential, Cause: err}
	case errors.Is(err, video.ErrNoResult):
		return Failure{Kind: KindGeneric, Code: CodeNoResult, Cause: err}
	case errors.Is(err, ErrPollTimeout):
		return Failure{Kind: KindGeneric, Code: CodeTimeout, Cause: err}
	default:
		return Failure{Kind: KindGeneric, Code: CodeGeneric, Cause: err}
	}
}

// Config holds the collaborators and timings shared by sessions.
type Config struct {
	// Keys returns the key selector scoped to one session. A selector that
	// also has a Release method is released when the session closes.
	Keys         func(sessionID string) video.KeySelector
	Factory      video.Factory
	Media        *media.Store
	PollInterval time.Duration
	StepInterval time.Duration
	// PollTimeout bounds the polling phase. Zero polls until the service
	// reports completion.
	PollTimeout time.Duration
	// Wait sleeps between polls. It must return early when ctx ends.
	Wait func(ctx context.Context, d time.Duration) error
	// OnTransition, when set, observes every state change together with
	// whether the loading ticker is running at that moment. It runs with the
	// session lock held and must not call back into the session.
	OnTransition func(id string, state State, loadingActive bool)
	Logger       *infra.Logger
	Now          func() time.Time
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.StepInterval <= 0 {
		c.StepInterval = 5 * time.Second
	}
	if c.Wait == nil {
		c.Wait = sleep
	}
	if c.Logger == nil {
		c.Logger = infra.DiscardLogger()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Media == nil {
		c.Media = media.NewStore("")
	}
	if c.Keys == nil {
		c.Keys = func(string) video.KeySelector { return noKeys{} }
	}
	return c
}

// noKeys never has a key and completes selection immediately, so flows end
// in a credential failure from the service.
type noKeys struct{}

func (noKeys) HasSelectedKey(context.Context) (bool, error) { return false, nil }
func (noKeys) OpenSelectKey(context.Context) error { return nil }
func (noKeys) APIKey(context.Context) (string, error) { return "", nil }

// Session owns one viewer's generation state machine and the media it
// produced.
type Session struct {
	id     string
	cfg    Config
	keys   video.KeySelector
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         State
	template      *Template
	operation     string
	done          bool
	media         *media.Object
	failure       *Failure
	step          int
	loadingActive bool
	stopLoading   func()
	runs          int
	flowDone      chan struct{}
	closed        bool
	updatedAt     time.Time
}

func newSession(id string, cfg Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        id,
		cfg:       cfg,
		keys:      cfg.Keys(id),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
		updatedAt: cfg.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadingActive reports whether the loading text ticker is running.
func (s *Session) LoadingActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingActive
}

// Generate starts a flow for tpl. It returns domain.ErrBusy while a flow is
// running. Any media from an earlier run is revoked.
func (s *Session) Generate(tpl Template) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrClosed
	}
	if s.state.Active() {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.releaseMediaLocked()
	t := tpl
	s.template = &t
	s.operation = ""
	s.done = false
	s.failure = nil
	s.step = 0
	s.runs++
	run := s.runs
	s.flowDone = make(chan struct{})
	flowDone := s.flowDone
	s.transitionLocked(StateRequestingKey)
	s.mu.Unlock()

	go s.run(tpl, run, flowDone)
	return nil
}

// Wait blocks until the current flow, if any, has finished.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	flowDone := s.flowDone
	s.mu.Unlock()
	if flowDone == nil {
		return nil
	}
	select {
	case <-flowDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close abandons the session: the running flow is cancelled, the loading
// ticker stopped and the media revoked.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stopLoading
	s.releaseMediaLocked()
	s.mu.Unlock()

	s.cancel()
	if stop != nil {
		stop()
	}
	if r, ok := s.keys.(interface{ Release() }); ok {
		r.Release()
	}
	s.cfg.Logger.Debug().Str("session_id", s.id).Msg("promo: session closed")
}

// Media returns the ready video, if any.
func (s *Session) Media() (media.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.media == nil {
		return media.Object{}, false
	}
	return *s.media, true
}

func (s *Session) run(tpl Template, run int, flowDone chan struct{}) {
	defer close(flowDone)
	logger := s.cfg.Logger.With().Str("session_id", s.id).Str("template", tpl.ID).Int("run", run).Logger()

	key, err := s.requestKey(s.ctx)
	if err != nil {
		s.fail(err, &logger)
		return
	}

	stop, ok := s.enterSubmitting()
	if !ok {
		return
	}
	defer stop()

	obj, err := s.produce(s.ctx, tpl, key, run)
	stop()
	if err != nil {
		s.fail(err, &logger)
		return
	}
	s.ready(obj, &logger)
}

// requestKey makes sure a key is selected. After an interactive selection the
// flow continues without checking that one was actually chosen; a missing
// key then surfaces as a credential failure from the service.
func (s *Session) requestKey(ctx context.Context) (string, error) {
	ok, err := s.keys.HasSelectedKey(ctx)
	if err != nil {
		return "", fmt.Errorf("check api key: %w", err)
	}
	if !ok {
		if err := s.keys.OpenSelectKey(ctx); err != nil {
			return "", fmt.Errorf("select api key: %w", err)
		}
	}
	key, err := s.keys.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("load api key: %w", err)
	}
	return key, nil
}

func (s *Session) produce(ctx context.Context, tpl Template, key string, run int) (media.Object, error) {
	svc, err := s.cfg.Factory(key)
	if err != nil {
		return media.Object{}, fmt.Errorf("build video client: %w", err)
	}

	op, err := svc.Submit(ctx, video.Submission{
		Prompt:         tpl.Prompt,
		NumberOfVideos: video.DefaultNumberOfVideos,
		Resolution:     video.DefaultResolution,
		AspectRatio:    video.DefaultAspectRatio,
		RequestID:      fmt.Sprintf("%s-%d", s.id, run),
	})
	if err != nil {
		return media.Object{}, err
	}
	s.update(func() {
		s.operation = op.Name
		s.transitionLocked(StatePolling)
	})

	var deadline time.Time
	if s.cfg.PollTimeout > 0 {
		deadline = s.cfg.Now().Add(s.cfg.PollTimeout)
	}
	for !op.Done {
		if !deadline.IsZero() && !s.cfg.Now().Before(deadline) {
			return media.Object{}, ErrPollTimeout
		}
		if err := s.cfg.Wait(ctx, s.cfg.PollInterval); err != nil {
			return media.Object{}, err
		}
		next, err := svc.Poll(ctx, op)
		if err != nil {
			return media.Object{}, err
		}
		if next.Name == "" {
			next.Name = op.Name
		}
		op = next
	}

	if op.VideoURI == "" {
		return media.Object{}, video.ErrNoResult
	}
	s.update(func() {
		s.done = true
		s.transitionLocked(StateFetching)
	})

	uri, err := video.AuthorizedURI(op.VideoURI, key)
	if err != nil {
		return media.Object{}, fmt.Errorf("authorize video uri: %w", err)
	}
	asset, err := svc.Fetch(ctx, uri)
	if err != nil {
		return media.Object{}, err
	}
	return s.cfg.Media.Create(asset.Data, asset.Format), nil
}

// enterSubmitting moves to StateSubmitting and starts the loading ticker in
// the same step. The returned stop is idempotent and synchronous. It reports
// false, starting nothing, when the session was closed meanwhile.
func (s *Session) enterSubmitting() (func(), bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}, false
	}
	ticker := time.NewTicker(s.cfg.StepInterval)
	quit := make(chan struct{})
	exited := make(chan struct{})

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(quit)
			<-exited
			ticker.Stop()
			s.mu.Lock()
			s.loadingActive = false
			s.stopLoading = nil
			s.mu.Unlock()
		})
	}

	s.step = 0
	s.loadingActive = true
	s.stopLoading = stop
	s.transitionLocked(StateSubmitting)
	s.mu.Unlock()

	go func() {
		defer close(exited)
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.step++
				s.mu.Unlock()
			case <-quit:
				return
			}
		}
	}()
	return stop, true
}

func (s *Session) fail(err error, logger *infra.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	f := classify(err)
	s.failure = &f
	s.transitionLocked(StateErrored)
	logger.Warn().Err(err).Str("kind", string(f.Kind)).Str("code", string(f.Code)).Msg("promo: generation failed")
}

func (s *Session) ready(obj media.Object, logger *infra.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.cfg.Media.Revoke(obj.ID)
		return
	}
	s.media = &obj
	s.transitionLocked(StateReady)
	logger.Info().Str("media_id", obj.ID).Int64("bytes", obj.Bytes).Msg("promo: video ready")
}

func (s *Session) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

func (s *Session) transitionLocked(next State) {
	s.state = next
	s.updatedAt = s.cfg.Now()
	if s.cfg.OnTransition != nil {
		s.cfg.OnTransition(s.id, next, s.loadingActive)
	}
}

func (s *Session) releaseMediaLocked() {
	if s.media == nil {
		return
	}
	s.cfg.Media.Revoke(s.media.ID)
	s.media = nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
