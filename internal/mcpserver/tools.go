package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func (s *Server) registerTools() {
	styles := make([]string, len(mockup.VisualStyles))
	for i, st := range mockup.VisualStyles {
		styles[i] = string(st)
	}

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_describe",
			mcplib.WithDescription("Generate a UI mockup from a description: an enhanced design prompt, a preview image and HTML"),
			mcplib.WithString("text", mcplib.Description("What the UI should be"), mcplib.Required()),
			mcplib.WithString("style", mcplib.Description("Visual style: "+strings.Join(styles, ", "))),
		),
		s.handleDescribe,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_remix",
			mcplib.WithDescription("Restyle existing HTML with the look of another HTML snippet"),
			mcplib.WithString("base_html", mcplib.Description("HTML whose structure and content are kept"), mcplib.Required()),
			mcplib.WithString("style_html", mcplib.Description("HTML whose visual style is applied"), mcplib.Required()),
		),
		s.handleRemix,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_clone",
			mcplib.WithDescription("Recreate a web page as HTML from its URL"),
			mcplib.WithString("url", mcplib.Description("Page to clone"), mcplib.Required()),
		),
		s.handleClone,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_history",
			mcplib.WithDescription("List recent generation runs, newest first"),
		),
		s.handleHistory,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_restore",
			mcplib.WithDescription("Return the full input and output of a past run and make it current"),
			mcplib.WithString("id", mcplib.Description("History entry id"), mcplib.Required()),
		),
		s.handleRestore,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("mockingbird_template",
			mcplib.WithDescription("Render one of the starter templates to HTML"),
			mcplib.WithString("id", mcplib.Description("Template id"), mcplib.Required()),
		),
		s.handleTemplate,
	)
}

type runResult struct {
	RunID            uint64                   `json:"runId"`
	Mode             mockup.Mode              `json:"mode"`
	EnhancedPrompt   *string                  `json:"enhancedPrompt,omitempty"`
	HTML             *string                  `json:"html,omitempty"`
	GroundingSources []mockup.GroundingSource `json:"groundingSources,omitempty"`
	Errors           mockup.ChannelErrors     `json:"errors,omitempty"`
	HistoryID        string                   `json:"historyId,omitempty"`
}

func (s *Server) handleDescribe(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.run(ctx, mockup.ModeDescription, map[mockup.Field]string{
		mockup.FieldText:  request.GetString("text", ""),
		mockup.FieldStyle: request.GetString("style", string(mockup.DefaultStyle)),
	}), nil
}

func (s *Server) handleRemix(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.run(ctx, mockup.ModeModify, map[mockup.Field]string{
		mockup.FieldBaseHTML:  request.GetString("base_html", ""),
		mockup.FieldStyleHTML: request.GetString("style_html", ""),
	}), nil
}

func (s *Server) handleClone(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := s.session.SetScreenshots(nil); err != nil {
		return errorResult(err.Error()), nil
	}
	return s.run(ctx, mockup.ModeClone, map[mockup.Field]string{
		mockup.FieldURL: request.GetString("url", ""),
	}), nil
}

// run fills the form, starts a run and waits for it to settle.
func (s *Server) run(ctx context.Context, mode mockup.Mode, fields map[mockup.Field]string) *mcplib.CallToolResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := s.session.Wait(ctx); err != nil {
		return errorResult(err.Error())
	}
	if err := s.session.SetMode(mode); err != nil {
		return errorResult(err.Error())
	}
	for field, value := range fields {
		if err := s.session.SetInput(field, value); err != nil {
			return errorResult(err.Error())
		}
	}

	handle, err := s.session.StartRun()
	if err != nil {
		var verr *mockup.ValidationError
		if errors.As(err, &verr) {
			return errorResult(verr.Message)
		}
		return errorResult(err.Error())
	}
	if err := handle.Wait(ctx); err != nil {
		return errorResult(fmt.Sprintf("run %d: %v", handle.ID, err))
	}

	snap := s.session.Snapshot()
	if snap.RunID != handle.ID || snap.Running {
		return errorResult(fmt.Sprintf("run %d was superseded", handle.ID))
	}
	res := runResult{
		RunID:            handle.ID,
		Mode:             mode,
		EnhancedPrompt:   snap.Output.EnhancedPrompt,
		HTML:             snap.Output.HTML,
		GroundingSources: snap.Output.GroundingSources,
		Errors:           snap.Errors,
	}
	if len(snap.History) > 0 {
		res.HistoryID = snap.History[0].ID
	}
	s.logger.Info("mcp run settled", "run", handle.ID, "mode", mode, "failed", len(snap.Errors))

	result := outputResult(res, snap.Output)
	result.IsError = snap.Output.Empty() && len(snap.Errors) > 0
	return result
}

// outputResult renders a run as a JSON text block plus the preview image
// when there is one.
func outputResult(v any, out mockup.RunOutput) *mcplib.CallToolResult {
	result := jsonResult(v)
	if out.PreviewImage != nil && !out.PreviewImage.Empty() {
		result.Content = append(result.Content, mcplib.ImageContent{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(out.PreviewImage.Data),
			MIMEType: out.PreviewImage.MIMEType,
		})
	}
	return result
}

func (s *Server) handleHistory(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return jsonResult(historyItems(s.session.Snapshot().History)), nil
}

func (s *Server) handleRestore(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return errorResult("id is required"), nil
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := s.session.Restore(id); err != nil {
		if errors.Is(err, engine.ErrEntryNotFound) {
			return errorResult("no history entry with id " + id), nil
		}
		return errorResult(err.Error()), nil
	}
	entry, _ := s.session.Snapshot().History.Find(id)
	return outputResult(entry, entry.Output), nil
}

func (s *Server) handleTemplate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("id", "")
	html, err := s.session.GenerateTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, engine.ErrTemplateNotFound) {
			ids := make([]string, 0, len(mockup.Templates()))
			for _, t := range mockup.Templates() {
				ids = append(ids, t.ID)
			}
			return errorResult(fmt.Sprintf("unknown template %q (available: %s)", id, strings.Join(ids, ", "))), nil
		}
		return errorResult("Failed to generate template."), nil
	}
	return jsonResult(map[string]string{"id": id, "html": html}), nil
}
