// Package preview turns a run's output into files a browser can open.
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jbonatakis/mockingbird/internal/capture"
	"github.com/jbonatakis/mockingbird/internal/fsutil"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const (
	IndexFile   = "index.html"
	PromptFile  = "prompt.md"
	SourcesFile = "sources.json"
)

var ErrNothingToWrite = errors.New("output has no channels to write")

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").Globally()
	p.AllowElements("main", "header", "footer", "nav", "section", "article", "aside",
		"form", "label", "input", "button", "select", "option", "textarea", "svg", "path")
	p.AllowAttrs("type", "placeholder", "value", "name", "for", "disabled", "checked", "selected", "role").Globally()
	p.AllowAttrs("viewBox", "fill", "stroke", "stroke-width", "d", "xmlns").Globally()
	return p
}

// Sanitize strips scripts, event handlers and anything else that could run
// when the generated markup is opened locally.
func Sanitize(html string) string {
	return strings.TrimSpace(policy.Sanitize(html))
}

var shell = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="min-h-screen bg-gray-50 flex items-center justify-center p-8">
{{.Body}}
</body>
</html>
`))

// Document wraps sanitized markup in a page that loads Tailwind from its CDN.
func Document(title, html string) (string, error) {
	if title == "" {
		title = "mockingbird preview"
	}
	var b strings.Builder
	err := shell.Execute(&b, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(Sanitize(html))})
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return b.String(), nil
}

// Outline renders generated markup as markdown for terminal display.
func Outline(html string) string {
	return capture.Outline(Sanitize(html), "")
}

// Write stores every present channel of out under dir and returns the paths
// written. Missing channels are skipped.
func Write(dir, title string, out mockup.RunOutput) ([]string, error) {
	if out.Empty() {
		return nil, ErrNothingToWrite
	}
	var written []string
	put := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if out.HTML != nil {
		doc, err := Document(title, *out.HTML)
		if err != nil {
			return written, err
		}
		if err := put(IndexFile, []byte(doc)); err != nil {
			return written, err
		}
	}
	if out.PreviewImage != nil && !out.PreviewImage.Empty() {
		if err := put("preview."+out.PreviewImage.Ext(), out.PreviewImage.Data); err != nil {
			return written, err
		}
	}
	if out.EnhancedPrompt != nil {
		if err := put(PromptFile, []byte(strings.TrimSpace(*out.EnhancedPrompt)+"\n")); err != nil {
			return written, err
		}
	}
	if len(out.GroundingSources) > 0 {
		data, err := json.MarshalIndent(out.GroundingSources, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode sources: %w", err)
		}
		if err := put(SourcesFile, append(data, '\n')); err != nil {
			return written, err
		}
	}
	return written, nil
}
