package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jbonatakis/mockingbird/internal/history"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

var (
	ErrRunInProgress    = errors.New("a generation run is in progress")
	ErrEntryNotFound    = errors.New("history entry not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateNotReady = errors.New("template has not been generated yet")
	ErrSessionClosed    = errors.New("session is closed")
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateRunning
	StateSettled
	StateRestoring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	case StateRestoring:
		return "restoring"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns the current form, the current output and the history log. All
// mutation goes through its methods; readers take a Snapshot.
type Session struct {
	coord    *Coordinator
	history  *history.Manager
	recorder *Recorder
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	templateCalls singleflight.Group

	// histMu orders history writes with the log changes they carry. It is
	// taken before mu.
	histMu sync.Mutex

	mu         sync.Mutex
	state      State
	mode       mockup.Mode
	draft      mockup.Draft
	output     mockup.RunOutput
	errors     mockup.ChannelErrors
	validation *mockup.ValidationError
	log        history.Log
	lastRun    uint64
	activeRun  uint64
	done       chan struct{}
	templates  map[string]*templateState
	closed     bool
	listeners  []func(Event)

	changed chan struct{}
}

type SessionOption func(*Session)

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(r *Recorder) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewSession(gen Generator, hist *history.Manager, opts ...SessionOption) *Session {
	s := &Session{
		history:   hist,
		recorder:  NewRecorder(),
		logger:    slog.Default(),
		mode:      mockup.ModeDescription,
		draft:     mockup.NewDraft(),
		errors:    mockup.ChannelErrors{},
		log:       history.Log{},
		templates: map[string]*templateState{},
		changed:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	s.coord = NewCoordinator(gen, WithCoordinatorLogger(s.logger))
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Init loads the persisted history.
func (s *Session) Init(ctx context.Context) {
	log := s.history.Load(ctx)
	s.mu.Lock()
	s.log = log
	s.mu.Unlock()
	s.logger.Debug("session initialized", "history", len(log))
	s.notify()
}

// Close cancels in-flight generator calls and flushes any pending history
// write. A run still in flight is dropped rather than recorded as failed. The
// session rejects runs afterwards.
func (s *Session) Close(ctx context.Context) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.activeRun != 0 {
		s.logger.Info("run dropped on close", "run", s.activeRun)
		s.activeRun = 0
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.cancel()
	s.history.Flush(ctx)
}

// Changed delivers a coalesced notification whenever session state changes.
// Receivers should re-read Snapshot; several changes may collapse into one
// notification.
func (s *Session) Changed() <-chan struct{} {
	return s.changed
}

// Subscribe registers fn for every applied run event. Events of superseded
// runs are never delivered. fn runs with the session locked and must not call
// back into the session.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Session) SetMode(mode mockup.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	s.mu.Lock()
	if s.activeRun != 0 {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	if mode == s.mode {
		s.mu.Unlock()
		return nil
	}
	s.setModeLocked(mode)
	s.mu.Unlock()
	s.notify()
	return nil
}

// setModeLocked switches mode and drops output that belonged to the old one.
func (s *Session) setModeLocked(mode mockup.Mode) {
	s.mode = mode
	s.output = mockup.RunOutput{}
	s.errors = mockup.ChannelErrors{}
	s.validation = nil
	s.state = StateIdle
}

// SetInput edits one text field of the form. Edits made while a run is in
// flight only affect the next run.
func (s *Session) SetInput(field mockup.Field, value string) error {
	s.mu.Lock()
	err := s.draft.Set(field, value)
	if err == nil {
		s.validation = nil
	}
	s.mu.Unlock()
	if err == nil {
		s.notify()
	}
	return err
}

func (s *Session) SetScreenshots(images []mockup.Image) error {
	if len(images) > mockup.MaxScreenshots {
		return &mockup.ValidationError{
			Mode:    mockup.ModeClone,
			Fields:  []mockup.Field{mockup.FieldScreenshots},
			Message: fmt.Sprintf("At most %d screenshots can be attached.", mockup.MaxScreenshots),
		}
	}
	s.mu.Lock()
	s.draft.Screenshots = append([]mockup.Image(nil), images...)
	s.validation = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// RunHandle identifies a started run.
type RunHandle struct {
	ID   uint64
	done chan struct{}
}

// Done is closed once the run's generator calls have all returned, whether
// or not the run was superseded.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartRun validates the current form for the current mode and, if it is
// complete, starts a run in the background. A validation failure is returned
// synchronously and leaves output untouched. Starting while another run is in
// flight supersedes it: its late results are dropped.
func (s *Session) StartRun() (*RunHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	prev := s.state
	s.state = StateValidating
	input, err := s.draft.Input(s.mode)
	if err == nil {
		err = mockup.Validate(input)
	}
	if err != nil {
		s.state = prev
		var verr *mockup.ValidationError
		if errors.As(err, &verr) {
			s.validation = verr
		}
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	if s.activeRun != 0 {
		s.logger.Info("run superseded", "run", s.activeRun, "by", s.lastRun+1)
	}
	s.lastRun++
	id := s.lastRun
	s.activeRun = id
	s.state = StateRunning
	s.output = mockup.RunOutput{}
	s.errors = mockup.ChannelErrors{}
	s.validation = nil
	done := make(chan struct{})
	s.done = done
	ctx := s.ctx
	s.mu.Unlock()
	s.notify()

	s.logger.Info("run started", "run", id, "mode", input.Mode())
	go func() {
		defer close(done)
		if _, err := s.coord.Run(ctx, id, input, func(ev Event) { s.apply(input, ev) }); err != nil {
			s.logger.Error("run rejected after validation", "run", id, "error", err)
		}
	}()
	return &RunHandle{ID: id, done: done}, nil
}

// apply folds one event into session state if its run is still the active one.
func (s *Session) apply(input mockup.RunInput, ev Event) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.mu.Lock()
	if ev.RunID != s.activeRun {
		s.mu.Unlock()
		s.logger.Debug("discarding event of superseded run", "run", ev.RunID, "kind", ev.Kind, "channel", ev.Channel)
		s.coord.metrics.discarded(context.Background())
		return
	}

	var persist history.Log
	switch ev.Kind {
	case EventChannelResolved:
		s.output = s.output.Merge(ev.Patch)
	case EventChannelFailed:
		s.errors[ev.Channel] = ev.Message
	case EventSettled:
		s.output = ev.Output
		s.errors = ev.Errors.Clone()
		entry := s.recorder.Record(input, ev.Output, ev.Errors)
		s.log = s.log.Prepend(entry)
		persist = s.log
		s.activeRun = 0
		s.state = StateSettled
	}
	for _, fn := range s.listeners {
		fn(ev)
	}
	s.mu.Unlock()

	if persist != nil {
		s.history.Persist(persist)
	}
	s.notify()
}

// Restore replaces the form and output with those of a history entry. A run
// in flight is superseded. History itself is not modified.
func (s *Session) Restore(id string) error {
	s.mu.Lock()
	entry, ok := s.log.Find(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	s.state = StateRestoring
	if s.activeRun != 0 {
		s.logger.Info("run superseded by restore", "run", s.activeRun, "entry", id)
		s.activeRun = 0
	}
	restored := Restore(entry)
	s.mode = restored.Mode
	s.draft = restored.Draft
	s.output = restored.Output
	s.errors = mockup.ChannelErrors{}
	s.validation = nil
	s.state = StateIdle
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearHistory empties the log and removes the persisted copy.
func (s *Session) ClearHistory(ctx context.Context) {
	s.histMu.Lock()
	s.mu.Lock()
	s.log = history.Log{}
	s.mu.Unlock()
	s.history.Clear(ctx)
	s.histMu.Unlock()
	s.notify()
}

// Snapshot is a consistent copy of session state.
type Snapshot struct {
	State      State
	Mode       mockup.Mode
	Draft      mockup.Draft
	Output     mockup.RunOutput
	Errors     mockup.ChannelErrors
	Running    bool
	RunID      uint64
	Validation *mockup.ValidationError
	History    history.Log
	Templates  []TemplateStatus
}

// Input is the current form projected onto the current mode.
func (s Snapshot) Input() mockup.RunInput {
	in, _ := s.Draft.Input(s.Mode)
	return in
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:     s.state,
		Mode:      s.mode,
		Draft:     s.draft.Clone(),
		Output:    s.output,
		Errors:    s.errors.Clone(),
		Running:   s.activeRun != 0,
		RunID:     s.lastRun,
		History:   append(history.Log(nil), s.log...),
		Templates: s.templateStatusesLocked(),
	}
	if s.validation != nil {
		v := *s.validation
		snap.Validation = &v
	}
	return snap
}

// Wait blocks until no run is in flight or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		running := s.activeRun != 0
		done := s.done
		s.mu.Unlock()
		if !running || done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
