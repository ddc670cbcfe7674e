package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

var ErrMissingAPIKey = errors.New("gemini backend needs GEMINI_API_KEY (or API_KEY)")

// Gemini calls the Gemini API for text and Imagen for previews.
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    timeoutPolicy
	logger     *slog.Logger
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		timeout:    timeoutPolicy(cfg.Timeout),
		logger:     cfg.Logger,
	}, nil
}

func (g *Gemini) Name() string { return BackendGemini }

func (g *Gemini) EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error) {
	out, _, err := g.generateText(ctx, OpEnhance, genai.Text(enhancePrompt(text, style)), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (mockup.Image, error) {
	ctx, cancel := g.timeout.apply(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, imagePrompt(prompt), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return mockup.Image{}, &AdapterError{Op: OpImage, Message: "imagen request failed", Cause: err}
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return mockup.Image{}, &AdapterError{Op: OpImage, Message: "no image was generated"}
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return mockup.Image{MIMEType: mime, Data: img.ImageBytes}, nil
}

func (g *Gemini) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	out, _, err := g.generateText(ctx, OpHTML, genai.Text(htmlPrompt(prompt)), nil)
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

func (g *Gemini) RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error) {
	out, _, err := g.generateText(ctx, OpRestyle, genai.Text(restylePrompt(baseHTML, styleHTML)), nil)
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

func (g *Gemini) CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error) {
	return g.Clone(ctx, CloneRequest{URL: url, Screenshots: screenshots})
}

func (g *Gemini) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	parts := []*genai.Part{genai.NewPartFromText(clonePrompt(req))}
	for _, shot := range req.Screenshots {
		parts = append(parts, genai.NewPartFromBytes(shot.Data, shot.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var config *genai.GenerateContentConfig
	if req.URL != "" {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}
	out, resp, err := g.generateText(ctx, OpClone, contents, config)
	if err != nil {
		return mockup.CloneResult{}, err
	}
	return mockup.CloneResult{HTML: StripCodeFence(out), Sources: groundingSources(resp)}, nil
}

func (g *Gemini) generateText(ctx context.Context, op string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, *genai.GenerateContentResponse, error) {
	ctx, cancel := g.timeout.apply(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, config)
	if err != nil {
		return "", nil, &AdapterError{Op: op, Message: "gemini request failed", Cause: err}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", resp, &AdapterError{Op: op, Message: "gemini returned no text"}
	}
	g.logger.Debug("gemini call finished", "op", op, "model", g.textModel, "chars", len(text))
	return text, resp, nil
}

// groundingSources lists the web citations of the first candidate in the
// order the model returned them, dropping duplicates.
func groundingSources(resp *genai.GenerateContentResponse) []mockup.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []mockup.GroundingSource
	seen := map[string]bool{}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, mockup.GroundingSource{Title: title, URI: chunk.Web.URI})
	}
	return out
}
