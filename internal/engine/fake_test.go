package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

var errQuota = errors.New("quota exceeded")

// fakeGenerator records calls and answers from per-call hooks. A nil hook
// succeeds with a canned value.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []string

	enhance func(ctx context.Context, text string, style mockup.VisualStyle) (string, error)
	image   func(ctx context.Context, prompt string) (mockup.Image, error)
	html    func(ctx context.Context, prompt string) (string, error)
	restyle func(ctx context.Context, base, style string) (string, error)
	clone   func(ctx context.Context, url string, shots []mockup.Image) (mockup.CloneResult, error)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000")

func (f *fakeGenerator) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakeGenerator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGenerator) EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error) {
	f.record("enhance")
	if f.enhance != nil {
		return f.enhance(ctx, text, style)
	}
	return "## Overall Vibe\n" + text + " in " + string(style), nil
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (mockup.Image, error) {
	f.record("image")
	if f.image != nil {
		return f.image(ctx, prompt)
	}
	return mockup.NewImage(pngBytes), nil
}

func (f *fakeGenerator) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	f.record("html")
	if f.html != nil {
		return f.html(ctx, prompt)
	}
	return "<div>generated</div>", nil
}

func (f *fakeGenerator) RestyleHTML(ctx context.Context, base, style string) (string, error) {
	f.record("restyle")
	if f.restyle != nil {
		return f.restyle(ctx, base, style)
	}
	return "<div>" + base + "</div>", nil
}

func (f *fakeGenerator) CloneURL(ctx context.Context, url string, shots []mockup.Image) (mockup.CloneResult, error) {
	f.record("clone")
	if f.clone != nil {
		return f.clone(ctx, url, shots)
	}
	return mockup.CloneResult{
		HTML:    "<main>clone</main>",
		Sources: []mockup.GroundingSource{{Title: "Example", URI: "https://example.com"}},
	}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gate blocks a fake call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	close(g.entered)
	<-g.release
}

func (g *gate) open() { close(g.release) }
