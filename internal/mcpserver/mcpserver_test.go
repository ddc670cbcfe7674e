package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/generate"
	"github.com/jbonatakis/mockingbird/internal/history"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hist := history.NewManager(history.NewMemoryStore(nil), history.WithDebounce(0), history.WithLogger(logger))
	sess := engine.NewSession(generate.NewLocal(), hist, engine.WithLogger(logger))
	sess.Init(context.Background())
	t.Cleanup(func() { sess.Close(context.Background()) })
	return New(sess, "test", logger)
}

func call(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// parseToolText extracts the first TextContent text from a CallToolResult.
func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok, "first content should be text, got %T", result.Content[0])
	return text.Text
}

func TestDescribeTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleDescribe(context.Background(), call("mockingbird_describe", map[string]any{
		"text":  "a settings page",
		"style": "Brutalist",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, parseToolText(t, result))

	var res runResult
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &res))
	assert.Equal(t, mockup.ModeDescription, res.Mode)
	require.NotNil(t, res.HTML)
	require.NotNil(t, res.EnhancedPrompt)
	assert.NotEmpty(t, res.HistoryID)

	require.Len(t, result.Content, 2)
	img, ok := result.Content[1].(mcplib.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)

	snap := s.session.Snapshot()
	assert.Equal(t, mockup.StyleBrutalist, snap.Draft.Style)
}

func TestDescribeToolValidation(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleDescribe(context.Background(), call("mockingbird_describe", map[string]any{"text": "  "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Please describe your UI idea.", parseToolText(t, result))
}

func TestRemixAndCloneTools(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleRemix(context.Background(), call("mockingbird_remix", map[string]any{
		"base_html":  `<div class="p-2">Hi</div>`,
		"style_html": `<div class="bg-black text-white">Style</div>`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, parseToolText(t, result))
	assert.Len(t, result.Content, 1, "remix produces no image")

	result, err = s.handleClone(context.Background(), call("mockingbird_clone", map[string]any{"url": "https://example.com"}))
	require.NoError(t, err)
	require.False(t, result.IsError, parseToolText(t, result))
	var res runResult
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &res))
	assert.Equal(t, mockup.ModeClone, res.Mode)
	assert.NotEmpty(t, res.GroundingSources)
}

func TestHistoryAndRestoreTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleDescribe(ctx, call("mockingbird_describe", map[string]any{"text": "a dashboard"}))
	require.NoError(t, err)

	result, err := s.handleHistory(ctx, call("mockingbird_history", nil))
	require.NoError(t, err)
	var items []historyItem
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "a dashboard", items[0].Title)
	assert.Equal(t, "Describe", items[0].Badge)

	result, err = s.handleRestore(ctx, call("mockingbird_restore", map[string]any{"id": items[0].ID}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	var entry mockup.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &entry))
	assert.Equal(t, items[0].ID, entry.ID)

	result, err = s.handleRestore(ctx, call("mockingbird_restore", map[string]any{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	contents, err := s.handleHistoryResource(ctx, mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, items[0].ID)
}

func TestTemplateTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleTemplate(context.Background(), call("mockingbird_template", map[string]any{"id": "nav-bar"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), `"id":"nav-bar"`)

	result, err = s.handleTemplate(context.Background(), call("mockingbird_template", map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "login-form")
}
