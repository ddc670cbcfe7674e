package generate

import (
	"context"
	"log/slog"
	"time"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const retryBackoff = 500 * time.Millisecond

// WithRetries retries each failed call up to n more times. The engine itself
// never retries; this is an opt-in policy at the adapter boundary.
func WithRetries(b Backend, n int, logger *slog.Logger) Backend {
	if n <= 0 {
		return b
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retrying{inner: b, attempts: n + 1, logger: logger, backoff: retryBackoff}
}

type retrying struct {
	inner    Backend
	attempts int
	logger   *slog.Logger
	backoff  time.Duration
}

func retry[T any](ctx context.Context, r *retrying, op string, call func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for i := 0; i < r.attempts; i++ {
		out, err = call()
		if err == nil || ctx.Err() != nil {
			return out, err
		}
		if i+1 < r.attempts {
			r.logger.Debug("retrying generation call", "op", op, "attempt", i+2, "of", r.attempts, "error", err)
			select {
			case <-ctx.Done():
				return out, err
			case <-time.After(r.backoff * time.Duration(i+1)):
			}
		}
	}
	return out, err
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error) {
	return retry(ctx, r, OpEnhance, func() (string, error) { return r.inner.EnhancePrompt(ctx, text, style) })
}

func (r *retrying) GenerateImage(ctx context.Context, prompt string) (mockup.Image, error) {
	return retry(ctx, r, OpImage, func() (mockup.Image, error) { return r.inner.GenerateImage(ctx, prompt) })
}

func (r *retrying) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	return retry(ctx, r, OpHTML, func() (string, error) { return r.inner.GenerateHTML(ctx, prompt) })
}

func (r *retrying) RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error) {
	return retry(ctx, r, OpRestyle, func() (string, error) { return r.inner.RestyleHTML(ctx, baseHTML, styleHTML) })
}

func (r *retrying) CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error) {
	return r.Clone(ctx, CloneRequest{URL: url, Screenshots: screenshots})
}

func (r *retrying) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	return retry(ctx, r, OpClone, func() (mockup.CloneResult, error) { return r.inner.Clone(ctx, req) })
}
