package tui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/mockingbird/internal/mockup"
	"github.com/jbonatakis/mockingbird/internal/preview"
)

type OutputTab int

const (
	OutputTabPrompt OutputTab = iota
	OutputTabImage
	OutputTabHTML
	OutputTabOutline
	OutputTabSources
)

func (t OutputTab) String() string {
	switch t {
	case OutputTabPrompt:
		return "Prompt"
	case OutputTabImage:
		return "Image"
	case OutputTabHTML:
		return "HTML"
	case OutputTabOutline:
		return "Outline"
	case OutputTabSources:
		return "Sources"
	default:
		return "?"
	}
}

func (t OutputTab) channel() mockup.Channel {
	switch t {
	case OutputTabPrompt:
		return mockup.ChannelPrompt
	case OutputTabImage:
		return mockup.ChannelImage
	default:
		return mockup.ChannelHTML
	}
}

func outputTabs(mode mockup.Mode) []OutputTab {
	switch mode {
	case mockup.ModeDescription:
		return []OutputTab{OutputTabPrompt, OutputTabImage, OutputTabHTML, OutputTabOutline}
	case mockup.ModeClone:
		return []OutputTab{OutputTabHTML, OutputTabOutline, OutputTabSources}
	default:
		return []OutputTab{OutputTabHTML, OutputTabOutline}
	}
}

func defaultTab(mode mockup.Mode) OutputTab {
	return outputTabs(mode)[0]
}

func tabAvailable(mode mockup.Mode, tab OutputTab) bool {
	for _, t := range outputTabs(mode) {
		if t == tab {
			return true
		}
	}
	return false
}

func cycleTab(mode mockup.Mode, current OutputTab, delta int) OutputTab {
	tabs := outputTabs(mode)
	idx := 0
	for i, t := range tabs {
		if t == current {
			idx = i
		}
	}
	return tabs[(idx+delta+len(tabs))%len(tabs)]
}

func renderOutputTabs(m Model) string {
	tabs := outputTabs(m.snap.Mode)
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.String()
		if m.snap.Errors.Has(t.channel()) {
			label += " !"
		}
		parts = append(parts, tabStyle(t == m.outputTab).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderOutput is the viewport content for the active tab. A failed channel
// shows its message, a pending one its loading line, an empty one a hint.
func renderOutput(m Model) string {
	out := m.snap.Output
	ch := m.outputTab.channel()
	if msg, ok := m.snap.Errors.Get(ch); ok {
		return errorStyle().Render(msg)
	}
	if !out.Has(ch) {
		if m.snap.Running {
			return mutedStyle().Render(loadingText(ch))
		}
		return mutedStyle().Render(placeholderText(m.snap.Mode, ch))
	}

	switch m.outputTab {
	case OutputTabPrompt:
		return lipglossWrap(out.PromptText(), m.output.Width)
	case OutputTabImage:
		return renderImage(*out.PreviewImage, m.output.Width)
	case OutputTabOutline:
		outline := preview.Outline(out.HTMLText())
		if strings.TrimSpace(outline) == "" {
			return mutedStyle().Render("No readable content in this markup.")
		}
		return outline
	case OutputTabSources:
		if len(out.GroundingSources) == 0 {
			return mutedStyle().Render("No sources were cited.")
		}
		lines := make([]string, 0, len(out.GroundingSources))
		for _, src := range out.GroundingSources {
			title := src.Title
			if title == "" {
				title = src.URI
			}
			lines = append(lines, fmt.Sprintf("- %s\n  %s", title, mutedStyle().Render(src.URI)))
		}
		return strings.Join(lines, "\n")
	default:
		return out.HTMLText()
	}
}

func loadingText(ch mockup.Channel) string {
	switch ch {
	case mockup.ChannelPrompt:
		return "Enhancing your prompt..."
	case mockup.ChannelImage:
		return "Rendering a preview image..."
	default:
		return "Writing HTML..."
	}
}

func placeholderText(mode mockup.Mode, ch mockup.Channel) string {
	switch ch {
	case mockup.ChannelPrompt:
		return "Your enhanced prompt will appear here."
	case mockup.ChannelImage:
		return "A preview image will appear here."
	}
	if mode == mockup.ModeDescription {
		return "HTML for your idea will appear here."
	}
	return "Generated HTML will appear here."
}

const maxImageColumns = 72

// renderImage draws img with half-block characters: each cell carries two
// vertically stacked pixels, the upper as foreground and the lower as
// background.
func renderImage(img mockup.Image, width int) string {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return mutedStyle().Render(fmt.Sprintf("%s, %d bytes (not decodable: %v)", img.MIMEType, len(img.Data), err))
	}
	bounds := decoded.Bounds()
	caption := mutedStyle().Render(fmt.Sprintf("%s %dx%d, %d bytes", img.MIMEType, bounds.Dx(), bounds.Dy(), len(img.Data)))
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return caption
	}

	cols := min(max(width, 1), maxImageColumns, bounds.Dx())
	// Terminal cells are about twice as tall as wide, and each cell holds two
	// pixel rows, so rows in pixels equals cols scaled by the aspect ratio.
	rows := max(cols*bounds.Dy()/bounds.Dx(), 2)
	rows += rows % 2

	var b strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			top := sample(decoded, x, y, cols, rows)
			bottom := sample(decoded, x, y+1, cols, rows)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		b.WriteByte('\n')
	}
	b.WriteString(caption)
	return b.String()
}

func sample(img image.Image, x, y, cols, rows int) string {
	bounds := img.Bounds()
	px := bounds.Min.X + x*bounds.Dx()/cols
	py := bounds.Min.Y + y*bounds.Dy()/rows
	r, g, b, _ := img.At(px, py).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
