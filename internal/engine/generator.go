package engine

import (
	"context"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Generator is the set of external generation calls a run can make. Each
// call returns a cleaned value or a single error; retries and timeouts are
// the implementation's business.
type Generator interface {
	EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error)
	GenerateImage(ctx context.Context, prompt string) (mockup.Image, error)
	GenerateHTML(ctx context.Context, prompt string) (string, error)
	RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error)
	CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error)
}
