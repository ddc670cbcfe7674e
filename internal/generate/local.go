package generate

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Local is an offline backend. Its output is a deterministic function of its
// input, which makes it useful for demos, tests and working without a key.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) Name() string { return BackendLocal }

var stylePalettes = map[mockup.VisualStyle][3]color.RGBA{
	mockup.StyleMinimalist:    {{250, 250, 250, 255}, {30, 30, 30, 255}, {0, 112, 243, 255}},
	mockup.StyleNeumorphic:    {{224, 229, 236, 255}, {163, 177, 198, 255}, {255, 255, 255, 255}},
	mockup.StyleCyberpunk:     {{13, 2, 33, 255}, {255, 0, 153, 255}, {0, 255, 240, 255}},
	mockup.StyleGlassmorphism: {{102, 126, 234, 255}, {118, 75, 162, 255}, {255, 255, 255, 200}},
	mockup.StyleBrutalist:     {{255, 255, 0, 255}, {0, 0, 0, 255}, {255, 255, 255, 255}},
	mockup.StyleCorporate:     {{248, 250, 252, 255}, {30, 58, 138, 255}, {59, 130, 246, 255}},
	mockup.StylePlayful:       {{255, 247, 237, 255}, {249, 115, 22, 255}, {168, 85, 247, 255}},
	mockup.StyleVintage:       {{245, 235, 220, 255}, {112, 66, 20, 255}, {189, 140, 80, 255}},
}

var styleClasses = map[mockup.VisualStyle]string{
	mockup.StyleMinimalist:    "bg-white text-gray-900 rounded-lg border border-gray-200 p-8",
	mockup.StyleNeumorphic:    "bg-slate-200 text-slate-700 rounded-3xl shadow-[8px_8px_16px_#a3b1c6,-8px_-8px_16px_#ffffff] p-8",
	mockup.StyleCyberpunk:     "bg-black text-cyan-300 border-2 border-pink-500 font-mono p-8",
	mockup.StyleGlassmorphism: "bg-white/20 backdrop-blur-lg text-white rounded-2xl border border-white/30 p-8",
	mockup.StyleBrutalist:     "bg-yellow-300 text-black border-4 border-black font-bold p-8",
	mockup.StyleCorporate:     "bg-slate-50 text-blue-900 rounded-md shadow p-8",
	mockup.StylePlayful:       "bg-orange-50 text-purple-700 rounded-3xl shadow-lg p-8",
	mockup.StyleVintage:       "bg-amber-50 text-amber-900 font-serif border border-amber-700 p-8",
}

func (*Local) EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &AdapterError{Op: OpEnhance, Message: "cancelled", Cause: err}
	}
	p := paletteFor(style)
	return fmt.Sprintf(`## Overall Vibe & Style
A %s interface for %s.

## Color Palette
Background %s, primary %s, accent %s.

## Typography
A clean sans-serif for headings and body text, with a clear size scale.

## Layout & Composition
A single centered column with generous spacing.

## Key UI Components
Components for %s, styled to match the %s look.

## Iconography
Simple line icons.

## Micro-interactions & Animations (Subtle)
Gentle hover states and smooth transitions.`,
		style, strings.TrimSpace(text), hexColor(p[0]), hexColor(p[1]), hexColor(p[2]),
		strings.TrimSpace(text), style), nil
}

func (*Local) GenerateImage(ctx context.Context, prompt string) (mockup.Image, error) {
	if err := ctx.Err(); err != nil {
		return mockup.Image{}, &AdapterError{Op: OpImage, Message: "cancelled", Cause: err}
	}
	p := paletteFor(styleFromPrompt(prompt))
	const w, h = 320, 200
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := hash(prompt)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := p[0]
			switch {
			case y < 28:
				c = p[1]
			case x > 24 && x < w-24 && y > 48 && y < 48+int(seed%80)+40:
				c = p[2]
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return mockup.Image{}, &AdapterError{Op: OpImage, Message: "encode png", Cause: err}
	}
	return mockup.Image{MIMEType: "image/png", Data: buf.Bytes()}, nil
}

func (*Local) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &AdapterError{Op: OpHTML, Message: "cancelled", Cause: err}
	}
	style := styleFromPrompt(prompt)
	title := firstLine(prompt)
	return fmt.Sprintf(`<main class="min-h-screen flex items-center justify-center">
  <section class="%s max-w-md w-full" aria-labelledby="mock-title">
    <h1 id="mock-title" class="text-2xl mb-4">%s</h1>
    <p class="mb-6">%s</p>
    <button type="button" class="px-4 py-2 rounded">Get started</button>
  </section>
</main>`, styleClasses[style], html.EscapeString(title), html.EscapeString(summary(prompt))), nil
}

// RestyleHTML moves the class list of the style document's first element onto
// the base document's first element, keeping the base content.
func (*Local) RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &AdapterError{Op: OpRestyle, Message: "cancelled", Cause: err}
	}
	styleRoot, err := firstElement(styleHTML)
	if err != nil {
		return "", &AdapterError{Op: OpRestyle, Message: "parse style html", Cause: err}
	}
	classes := attr(styleRoot, "class")

	nodes, err := xhtml.ParseFragment(strings.NewReader(baseHTML), bodyContext())
	if err != nil {
		return "", &AdapterError{Op: OpRestyle, Message: "parse base html", Cause: err}
	}
	var buf bytes.Buffer
	applied := false
	for _, n := range nodes {
		if !applied && n.Type == xhtml.ElementNode {
			setAttr(n, "class", classes)
			applied = true
		}
		if err := xhtml.Render(&buf, n); err != nil {
			return "", &AdapterError{Op: OpRestyle, Message: "render html", Cause: err}
		}
	}
	if !applied {
		return fmt.Sprintf(`<div class="%s">%s</div>`, html.EscapeString(classes), buf.String()), nil
	}
	return buf.String(), nil
}

func (l *Local) CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error) {
	return l.Clone(ctx, CloneRequest{URL: url, Screenshots: screenshots})
}

func (*Local) Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error) {
	if err := ctx.Err(); err != nil {
		return mockup.CloneResult{}, &AdapterError{Op: OpClone, Message: "cancelled", Cause: err}
	}
	title := req.PageTitle
	var sources []mockup.GroundingSource
	if req.URL != "" {
		u, err := url.Parse(req.URL)
		if err != nil {
			return mockup.CloneResult{}, &AdapterError{Op: OpClone, Message: "parse url", Cause: err}
		}
		if title == "" {
			title = u.Host
		}
		sources = append(sources, mockup.GroundingSource{Title: u.Host, URI: req.URL})
	}
	if title == "" {
		title = fmt.Sprintf("Page from %d screenshot(s)", len(req.Screenshots))
	}
	var b strings.Builder
	b.WriteString(`<div class="min-h-screen bg-white text-gray-900">` + "\n")
	fmt.Fprintf(&b, `  <header class="border-b p-4"><h1 class="text-xl font-semibold">%s</h1></header>`+"\n", html.EscapeString(title))
	b.WriteString(`  <main class="p-8 space-y-4">` + "\n")
	for _, line := range outlineHeadings(req.PageOutline, 6) {
		fmt.Fprintf(&b, `    <section class="rounded border p-4"><h2 class="font-medium">%s</h2></section>`+"\n", html.EscapeString(line))
	}
	b.WriteString("  </main>\n</div>")
	return mockup.CloneResult{HTML: b.String(), Sources: sources}, nil
}

func paletteFor(style mockup.VisualStyle) [3]color.RGBA {
	if p, ok := stylePalettes[style]; ok {
		return p
	}
	return stylePalettes[mockup.DefaultStyle]
}

// styleFromPrompt finds the style named in a prompt, the longest name first
// so "Clean & Corporate" is not mistaken for a shorter match.
func styleFromPrompt(prompt string) mockup.VisualStyle {
	best := mockup.DefaultStyle
	bestLen := 0
	lower := strings.ToLower(prompt)
	for _, s := range mockup.VisualStyles {
		if strings.Contains(lower, strings.ToLower(string(s))) && len(s) > bestLen {
			best, bestLen = s, len(s)
		}
	}
	return best
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			return line
		}
	}
	return "Mockup"
}

func summary(prompt string) string {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return "Generated offline preview."
}

func outlineHeadings(outline string, max int) []string {
	var out []string
	for _, line := range strings.Split(outline, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.TrimSpace(strings.TrimLeft(line, "#")))
		if len(out) == max {
			break
		}
	}
	if len(out) == 0 {
		out = []string{"Hero", "Content", "Footer"}
	}
	return out
}

func bodyContext() *xhtml.Node {
	return &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
}

func firstElement(src string) (*xhtml.Node, error) {
	nodes, err := xhtml.ParseFragment(strings.NewReader(src), bodyContext())
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == xhtml.ElementNode {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no element found")
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *xhtml.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, xhtml.Attribute{Key: key, Val: val})
}
