package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Command hands each call to an external program. The program reads one JSON
// request on stdin and prints one JSON response object on stdout, optionally
// inside a ```json fence.
type Command struct {
	command string
	timeout timeoutPolicy
	logger  *slog.Logger
}

type commandRequest struct {
	Op          string         `json:"op"`
	Prompt      string         `json:"prompt"`
	Text        string         `json:"text,omitempty"`
	Style       string         `json:"style,omitempty"`
	BaseHTML    string         `json:"baseHtml,omitempty"`
	StyleHTML   string         `json:"styleHtml,omitempty"`
	URL         string         `json:"url,omitempty"`
	Screenshots []mockup.Image `json:"screenshots,omitempty"`
	TextModel   string         `json:"textModel,omitempty"`
	ImageModel  string         `json:"imageModel,omitempty"`
}

type commandResponse struct {
	Text    string                   `json:"text,omitempty"`
	HTML    string                   `json:"html,omitempty"`
	Image   *mockup.Image            `json:"image,omitempty"`
	Sources []mockup.GroundingSource `json:"sources,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Diagnostics keeps the raw output of a failed command for logs.
type Diagnostics struct {
	Stdout string
	Stderr string
	JSON   string
}

// CommandError is an AdapterError carrying the command's output.
type CommandError struct {
	AdapterError
	Diag Diagnostics
}

func NewCommand(cfg Config) (*Command, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("command backend needs generation.command")
	}
	return &Command{command: cfg.Command, timeout: timeoutPolicy(cfg.Timeout), logger: cfg.Logger}, nil
}

func (c *Command) Name() string { return BackendCommand }

func (c *Command) EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error) {
	resp, err := c.run(ctx, commandRequest{Op: OpEnhance, Prompt: enhancePrompt(text, style), Text: text, Style: string(style)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *Command) GenerateImage(ctx context.Context, prompt string) (mockup.Image, error) {
	resp, err := c.run(ctx, commandRequest{Op: OpImage, Prompt: imagePrompt(prompt)})
	if err != nil {
		return mockup.Image{}, err
	}
	if resp.Image == nil || resp.Image.Empty() {
		return mockup.Image{}, &AdapterError{Op: OpImage, Message: "command returned no image"}
	}
	return *resp.Image, nil
}

func (c *Command) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	resp, err := c.run(ctx, commandRequest{Op: OpHTML, Prompt: htmlPrompt(prompt)})
	if err != nil {
		return "", err
	}
	return StripCodeFence(resp.HTML), nil
}

func (c *Command) RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error) {
	resp, err := c.run(ctx, commandRequest{Op: OpRestyle, Prompt: restylePrompt(baseHTML, styleHTML), BaseHTML: baseHTML, StyleHTML: styleHTML})
	if err != nil {
		return "", err
	}
	return StripCodeFence(resp.HTML), nil
}

func (c *Command) CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error) {
	return c.Clone(ctx, CloneRequest{URL: url, Screenshots: screenshots})
}

func (c *Command) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	resp, err := c.run(ctx, commandRequest{Op: OpClone, Prompt: clonePrompt(req), URL: req.URL, Screenshots: req.Screenshots})
	if err != nil {
		return mockup.CloneResult{}, err
	}
	return mockup.CloneResult{HTML: StripCodeFence(resp.HTML), Sources: resp.Sources}, nil
}

func (c *Command) run(ctx context.Context, req commandRequest) (commandResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return commandResponse{}, &AdapterError{Op: req.Op, Message: "encode request", Cause: err}
	}

	ctx, cancel := c.timeout.apply(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", c.command)
	// Children of the shell can hold the pipes open after it is killed.
	cmd.WaitDelay = 500 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := Diagnostics{Stdout: stdout.String(), Stderr: stderr.String()}
		msg := "generation command failed"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "generation command timed out"
		}
		c.logger.Debug(msg, "op", req.Op, "stderr", truncate(diag.Stderr, 2000))
		return commandResponse{}, &CommandError{AdapterError: AdapterError{Op: req.Op, Message: msg, Cause: err}, Diag: diag}
	}

	diag := Diagnostics{Stdout: stdout.String(), Stderr: stderr.String()}
	jsonStr, err := ExtractJSON(diag.Stdout)
	if err != nil {
		return commandResponse{}, &CommandError{AdapterError: AdapterError{Op: req.Op, Message: "unreadable command output", Cause: err}, Diag: diag}
	}
	diag.JSON = jsonStr

	var resp commandResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return commandResponse{}, &CommandError{AdapterError: AdapterError{Op: req.Op, Message: "decode response", Cause: err}, Diag: diag}
	}
	if resp.Error != "" {
		return commandResponse{}, &CommandError{AdapterError: AdapterError{Op: req.Op, Message: resp.Error}, Diag: diag}
	}
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + fmt.Sprintf("... (%d more bytes)", len(s)-n)
}

// Unwrap exposes the AdapterError so callers can match on either type.
func (e *CommandError) Unwrap() error {
	return &e.AdapterError
}
