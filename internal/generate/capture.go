package generate

import (
	"context"
	"log/slog"

	"github.com/jbonatakis/mockingbird/internal/capture"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Capturer loads a live page so clone requests can carry what it looks like.
type Capturer interface {
	Capture(ctx context.Context, url string) (capture.Page, error)
}

// WithCapture enriches clone requests that name a URL with a screenshot and
// an outline of the live page. A failed capture is logged and the clone goes
// ahead with what the user supplied.
func WithCapture(b Backend, c Capturer, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &capturing{Backend: b, capturer: c, logger: logger}
}

type capturing struct {
	Backend
	capturer Capturer
	logger   *slog.Logger
}

func (c *capturing) CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error) {
	return c.Clone(ctx, CloneRequest{URL: url, Screenshots: screenshots})
}

func (c *capturing) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	if req.URL == "" {
		return c.Backend.Clone(ctx, req)
	}
	page, err := c.capturer.Capture(ctx, req.URL)
	if err != nil {
		c.logger.Warn("page capture failed", "url", req.URL, "error", err)
		return c.Backend.Clone(ctx, req)
	}
	if req.PageTitle == "" {
		req.PageTitle = page.Title
	}
	if req.PageOutline == "" {
		req.PageOutline = page.Outline
	}
	if !page.Screenshot.Empty() && len(req.Screenshots) < mockup.MaxScreenshots {
		req.Screenshots = append(append([]mockup.Image(nil), req.Screenshots...), page.Screenshot)
	}
	return c.Backend.Clone(ctx, req)
}
