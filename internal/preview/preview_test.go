package preview

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func TestSanitizeKeepsMarkupDropsScripts(t *testing.T) {
	got := Sanitize(`<div class="p-4" onclick="steal()"><button type="submit">Go</button><script>alert(1)</script></div>`)
	assert.Contains(t, got, `class="p-4"`)
	assert.Contains(t, got, `<button type="submit">Go</button>`)
	assert.NotContains(t, got, "script")
	assert.NotContains(t, got, "onclick")
}

func TestDocument(t *testing.T) {
	doc, err := Document("Login <form>", `<main class="flex">hi</main>`)
	require.NoError(t, err)
	assert.Contains(t, doc, "cdn.tailwindcss.com")
	assert.Contains(t, doc, "<title>Login &lt;form&gt;</title>")
	assert.Contains(t, doc, `<main class="flex">hi</main>`)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	img := mockup.NewImage([]byte("\x89PNG\r\n\x1a\n0000"))
	out := mockup.RunOutput{
		EnhancedPrompt:   mockup.StringPtr("A login card "),
		PreviewImage:     &img,
		HTML:             mockup.StringPtr(`<main>ok</main>`),
		GroundingSources: []mockup.GroundingSource{{Title: "A", URI: "https://a.example"}},
	}

	paths, err := Write(dir, "", out)
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	prompt, err := os.ReadFile(filepath.Join(dir, PromptFile))
	require.NoError(t, err)
	assert.Equal(t, "A login card\n", string(prompt))

	_, err = os.Stat(filepath.Join(dir, "preview.png"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, SourcesFile))
	require.NoError(t, err)
	var sources []mockup.GroundingSource
	require.NoError(t, json.Unmarshal(data, &sources))
	assert.Equal(t, out.GroundingSources, sources)
}

func TestWriteSkipsMissingChannels(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, "x", mockup.RunOutput{HTML: mockup.StringPtr("<p>x</p>")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, IndexFile)}, paths)

	_, err = Write(dir, "x", mockup.RunOutput{})
	assert.ErrorIs(t, err, ErrNothingToWrite)
}

func TestOutline(t *testing.T) {
	md := Outline(`<main><h1>Pricing</h1><p>Pick a plan</p><script>x()</script></main>`)
	assert.Contains(t, md, "# Pricing")
	assert.Contains(t, md, "Pick a plan")
	assert.NotContains(t, md, "x()")
}
