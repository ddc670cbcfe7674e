package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

var errEmptyPrompt = errors.New("enhanced prompt is empty")

// Coordinator drives the generator calls of one run and folds their results
// into a RunOutput and ChannelErrors. It holds no per-run state, so one
// Coordinator serves every run of a session.
type Coordinator struct {
	gen     Generator
	logger  *slog.Logger
	metrics *runMetrics
}

type CoordinatorOption func(*Coordinator)

func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCoordinator(gen Generator, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{gen: gen, logger: slog.Default(), metrics: newRunMetrics()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run validates input and executes it. Validation failures return before any
// generator call. Channel failures never surface as an error: they end up in
// Result.Errors and as failed events. emit, when non-nil, is called serially.
func (c *Coordinator) Run(ctx context.Context, runID uint64, input mockup.RunInput, emit func(Event)) (Result, error) {
	if err := mockup.Validate(input); err != nil {
		return Result{}, err
	}
	r := &run{
		id:      runID,
		mode:    input.Mode(),
		emit:    emit,
		logger:  c.logger.With("run", runID, "mode", input.Mode()),
		errors:  mockup.ChannelErrors{},
		started: time.Now(),
	}
	c.metrics.started(ctx, r.mode)

	switch in := input.(type) {
	case mockup.DescriptionInput:
		c.runDescription(ctx, r, in)
	case mockup.ModifyInput:
		html, err := c.gen.RestyleHTML(ctx, in.BaseHTML, in.StyleHTML)
		r.resolveHTML(mockup.RunOutput{HTML: &html}, err)
	case mockup.CloneInput:
		res, err := c.gen.CloneURL(ctx, mockup.NormalizeURL(in.URL), in.Screenshots)
		// Markup and citations land together or not at all.
		r.resolveHTML(mockup.RunOutput{HTML: &res.HTML, GroundingSources: res.Sources}, err)
	}

	result := r.settle()
	c.metrics.settled(ctx, r.mode, result, time.Since(r.started))
	return result, nil
}

// Stream runs input in the background and delivers its events on the
// returned channel, which is closed after the settled event.
func (c *Coordinator) Stream(ctx context.Context, runID uint64, input mockup.RunInput) (<-chan Event, error) {
	if err := mockup.Validate(input); err != nil {
		return nil, err
	}
	// A run emits at most one event per channel plus the settled event.
	events := make(chan Event, len(mockup.Channels)+1)
	go func() {
		defer close(events)
		_, _ = c.Run(ctx, runID, input, func(ev Event) { events <- ev })
	}()
	return events, nil
}

func (c *Coordinator) runDescription(ctx context.Context, r *run, in mockup.DescriptionInput) {
	prompt, err := c.gen.EnhancePrompt(ctx, in.Text, in.Style)
	if err == nil && strings.TrimSpace(prompt) == "" {
		err = errEmptyPrompt
	}
	if err != nil {
		// The prompt feeds both remaining calls; without it neither is issued.
		r.fail(mockup.ChannelPrompt, err)
		return
	}
	r.resolve(mockup.ChannelPrompt, mockup.RunOutput{EnhancedPrompt: &prompt})

	var g errgroup.Group
	g.Go(func() error {
		img, err := c.gen.GenerateImage(ctx, prompt)
		if err == nil && img.Empty() {
			err = errors.New("image is empty")
		}
		if err != nil {
			r.fail(mockup.ChannelImage, err)
			return nil
		}
		r.resolve(mockup.ChannelImage, mockup.RunOutput{PreviewImage: &img})
		return nil
	})
	g.Go(func() error {
		html, err := c.gen.GenerateHTML(ctx, prompt)
		r.resolveHTML(mockup.RunOutput{HTML: &html}, err)
		return nil
	})
	_ = g.Wait()
}

// run accumulates the state of one execution. Channel goroutines write to it
// concurrently; mu also serializes emit.
type run struct {
	id      uint64
	mode    mockup.Mode
	emit    func(Event)
	logger  *slog.Logger
	started time.Time

	mu     sync.Mutex
	output mockup.RunOutput
	errors mockup.ChannelErrors
}

func (r *run) resolveHTML(patch mockup.RunOutput, err error) {
	if err != nil {
		r.fail(mockup.ChannelHTML, err)
		return
	}
	r.resolve(mockup.ChannelHTML, patch)
}

func (r *run) resolve(ch mockup.Channel, patch mockup.RunOutput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = r.output.Merge(patch)
	r.logger.Debug("channel resolved", "channel", ch, "elapsed", time.Since(r.started))
	r.send(Event{RunID: r.id, Mode: r.mode, Kind: EventChannelResolved, Channel: ch, Patch: patch})
}

func (r *run) fail(ch mockup.Channel, cause error) {
	msg := FailureMessage(r.mode, ch)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.errors[ch]; dup {
		return
	}
	r.errors[ch] = msg
	r.logger.Warn("channel failed", "channel", ch, "error", cause)
	r.send(Event{RunID: r.id, Mode: r.mode, Kind: EventChannelFailed, Channel: ch, Message: msg, Err: cause})
}

func (r *run) settle() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := Result{Output: r.output, Errors: r.errors.Clone()}
	r.logger.Info("run settled",
		"failed", fmt.Sprint(res.Errors.Channels()),
		"elapsed", time.Since(r.started).Round(time.Millisecond))
	r.send(Event{RunID: r.id, Mode: r.mode, Kind: EventSettled, Output: res.Output, Errors: res.Errors.Clone()})
	return res
}

func (r *run) send(ev Event) {
	if r.emit != nil {
		r.emit(ev)
	}
}
