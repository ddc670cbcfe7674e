package generate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbonatakis/mockingbird/internal/capture"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	b, err := NewBackend(ctx, Config{Backend: "local", Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, b.Name())

	b, err = NewBackend(ctx, Config{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, b.Name())

	_, err = NewBackend(ctx, Config{Backend: "gemini", Logger: quietLogger()})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewBackend(ctx, Config{Backend: "openai", Logger: quietLogger()})
	var unsupported ErrUnsupportedBackend
	assert.True(t, errors.As(err, &unsupported))

	b, err = NewBackend(ctx, Config{Backend: "local", MaxRetries: 2, Capturer: &fakeCapturer{}, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, b.Name(), "decorators keep the backend name")
}

// flaky fails the first n calls of each kind.
type flaky struct {
	Local
	failures int
	calls    int
}

func (f *flaky) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", &AdapterError{Op: OpHTML, Message: "rate limited"}
	}
	return f.Local.GenerateHTML(ctx, prompt)
}

func TestWithRetries(t *testing.T) {
	inner := &flaky{failures: 1}
	b := WithRetries(inner, 1, quietLogger()).(*retrying)
	b.backoff = 0

	html, err := b.GenerateHTML(context.Background(), "p")
	require.NoError(t, err)
	assert.NotEmpty(t, html)
	assert.Equal(t, 2, inner.calls)

	inner = &flaky{failures: 5}
	b = WithRetries(inner, 2, quietLogger()).(*retrying)
	b.backoff = 0
	_, err = b.GenerateHTML(context.Background(), "p")
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, 3, inner.calls)

	assert.Same(t, inner, WithRetries(inner, 0, nil))
}

type fakeCapturer struct {
	page capture.Page
	err  error
	urls []string
}

func (f *fakeCapturer) Capture(_ context.Context, url string) (capture.Page, error) {
	f.urls = append(f.urls, url)
	return f.page, f.err
}

type recordingCloner struct {
	Local
	got CloneRequest
}

func (r *recordingCloner) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	r.got = req
	return mockup.CloneResult{HTML: "<main/>"}, nil
}

func TestWithCaptureEnrichesCloneRequests(t *testing.T) {
	shot := mockup.NewImage([]byte("\x89PNG\r\n\x1a\nshot"))
	capt := &fakeCapturer{page: capture.Page{Title: "Shop", Outline: "# Cart", Screenshot: shot}}
	inner := &recordingCloner{}
	b := WithCapture(inner, capt, quietLogger())

	_, err := b.CloneURL(context.Background(), "https://shop.example", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.example"}, capt.urls)
	assert.Equal(t, "Shop", inner.got.PageTitle)
	assert.Equal(t, "# Cart", inner.got.PageOutline)
	require.Len(t, inner.got.Screenshots, 1)

	full := []mockup.Image{shot, shot, shot}
	_, err = b.CloneURL(context.Background(), "https://shop.example", full)
	require.NoError(t, err)
	assert.Len(t, inner.got.Screenshots, mockup.MaxScreenshots, "never exceeds the screenshot cap")

	_, err = b.CloneURL(context.Background(), "", []mockup.Image{shot})
	require.NoError(t, err)
	assert.Len(t, capt.urls, 2, "no capture without a URL")
}

func TestWithCaptureFallsBackOnFailure(t *testing.T) {
	capt := &fakeCapturer{err: errors.New("no chrome")}
	inner := &recordingCloner{}
	res, err := WithCapture(inner, capt, quietLogger()).CloneURL(context.Background(), "https://a.example", nil)
	require.NoError(t, err)
	assert.Equal(t, "<main/>", res.HTML)
	assert.Empty(t, inner.got.PageTitle)
	assert.Equal(t, "https://a.example", inner.got.URL)
}
