package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Form holds one editor per input field. The session's draft is the source
// of truth; the editors mirror it and push every change back.
type Form struct {
	text      textarea.Model
	baseHTML  textarea.Model
	styleHTML textarea.Model
	url       textinput.Model
	shots     textinput.Model
	style     mockup.VisualStyle
	shotCount int
	focus     int
	width     int
}

func NewForm() Form {
	text := textarea.New()
	text.Placeholder = "e.g. A pricing page with three tiers and a FAQ..."
	text.CharLimit = 4000
	text.ShowLineNumbers = false
	text.Blur()

	base := textarea.New()
	base.Placeholder = "Paste the HTML to keep..."
	base.CharLimit = 0
	base.MaxHeight = 0
	base.Blur()

	styleHTML := textarea.New()
	styleHTML.Placeholder = "Paste the HTML whose look you want..."
	styleHTML.CharLimit = 0
	styleHTML.MaxHeight = 0
	styleHTML.Blur()

	url := textinput.New()
	url.Placeholder = "https://example.com"
	url.CharLimit = 2048
	url.Blur()

	shots := textinput.New()
	shots.Placeholder = "screenshot paths, comma-separated"
	shots.CharLimit = 4096
	shots.Blur()

	f := Form{
		text:      text,
		baseHTML:  base,
		styleHTML: styleHTML,
		url:       url,
		shots:     shots,
		style:     mockup.DefaultStyle,
	}
	f.SetSize(80, 24)
	return f
}

func (f *Form) SetSize(width, height int) {
	fieldWidth := width - 4
	if fieldWidth > 120 {
		fieldWidth = 120
	}
	if fieldWidth < 20 {
		fieldWidth = 20
	}
	f.width = fieldWidth

	areaHeight := 3
	if height > 30 {
		areaHeight = height / 8
		if areaHeight > 8 {
			areaHeight = 8
		}
	}
	f.text.SetWidth(fieldWidth)
	f.text.SetHeight(areaHeight)
	f.baseHTML.SetWidth(fieldWidth)
	f.baseHTML.SetHeight(areaHeight)
	f.styleHTML.SetWidth(fieldWidth)
	f.styleHTML.SetHeight(areaHeight)
	f.url.Width = fieldWidth
	f.shots.Width = fieldWidth
}

// Load copies the draft into the editors.
func (f *Form) Load(d mockup.Draft) {
	setArea(&f.text, d.Text)
	setArea(&f.baseHTML, d.BaseHTML)
	setArea(&f.styleHTML, d.StyleHTML)
	if f.url.Value() != d.URL {
		f.url.SetValue(d.URL)
	}
	f.style = d.Style
	if len(d.Screenshots) != f.shotCount {
		f.shots.SetValue("")
	}
	f.shotCount = len(d.Screenshots)
}

func setArea(ta *textarea.Model, value string) {
	if ta.Value() != value {
		ta.SetValue(value)
	}
}

// FocusedField is the field under the cursor for mode.
func (f Form) FocusedField(mode mockup.Mode) mockup.Field {
	fields := mockup.MustDescriptor(mode).Fields
	idx := f.focus
	if idx < 0 || idx >= len(fields) {
		idx = 0
	}
	return fields[idx].Field
}

func (f *Form) FocusNext(mode mockup.Mode) {
	n := len(mockup.MustDescriptor(mode).Fields)
	f.focus = (f.focus + 1) % n
}

func (f *Form) FocusPrev(mode mockup.Mode) {
	n := len(mockup.MustDescriptor(mode).Fields)
	f.focus = (f.focus - 1 + n) % n
}

func (f *Form) ResetFocus() {
	f.focus = 0
}

// StartEditing focuses the editor of field. It reports false for fields that
// are not edited as text.
func (f *Form) StartEditing(field mockup.Field) (tea.Cmd, bool) {
	switch field {
	case mockup.FieldText:
		return f.text.Focus(), true
	case mockup.FieldBaseHTML:
		return f.baseHTML.Focus(), true
	case mockup.FieldStyleHTML:
		return f.styleHTML.Focus(), true
	case mockup.FieldURL:
		return f.url.Focus(), true
	case mockup.FieldScreenshots:
		return f.shots.Focus(), true
	default:
		return nil, false
	}
}

func (f *Form) StopEditing() {
	f.text.Blur()
	f.baseHTML.Blur()
	f.styleHTML.Blur()
	f.url.Blur()
	f.shots.Blur()
}

// Update feeds msg to the editor of field and returns its new value.
func (f *Form) Update(field mockup.Field, msg tea.Msg) (string, tea.Cmd) {
	var cmd tea.Cmd
	switch field {
	case mockup.FieldText:
		f.text, cmd = f.text.Update(msg)
		return f.text.Value(), cmd
	case mockup.FieldBaseHTML:
		f.baseHTML, cmd = f.baseHTML.Update(msg)
		return f.baseHTML.Value(), cmd
	case mockup.FieldStyleHTML:
		f.styleHTML, cmd = f.styleHTML.Update(msg)
		return f.styleHTML.Value(), cmd
	case mockup.FieldURL:
		f.url, cmd = f.url.Update(msg)
		return f.url.Value(), cmd
	case mockup.FieldScreenshots:
		f.shots, cmd = f.shots.Update(msg)
		return f.shots.Value(), cmd
	default:
		return "", nil
	}
}

// Value returns the editor contents for field.
func (f Form) Value(field mockup.Field) string {
	switch field {
	case mockup.FieldText:
		return f.text.Value()
	case mockup.FieldStyle:
		return string(f.style)
	case mockup.FieldBaseHTML:
		return f.baseHTML.Value()
	case mockup.FieldStyleHTML:
		return f.styleHTML.Value()
	case mockup.FieldURL:
		return f.url.Value()
	case mockup.FieldScreenshots:
		return f.shots.Value()
	default:
		return ""
	}
}

func (f Form) View(field mockup.Field) string {
	switch field {
	case mockup.FieldText:
		return f.text.View()
	case mockup.FieldStyle:
		return renderStylePicker(f.style, f.width)
	case mockup.FieldBaseHTML:
		return f.baseHTML.View()
	case mockup.FieldStyleHTML:
		return f.styleHTML.View()
	case mockup.FieldURL:
		return f.url.View()
	case mockup.FieldScreenshots:
		view := f.shots.View()
		if f.shotCount > 0 {
			view += "\n" + mutedStyle().Render(fmt.Sprintf("%d attached", f.shotCount))
		}
		return view
	default:
		return ""
	}
}

// nextStyle steps through the visual styles, wrapping at either end.
func nextStyle(current mockup.VisualStyle, delta int) mockup.VisualStyle {
	styles := mockup.VisualStyles
	idx := 0
	for i, s := range styles {
		if s == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(styles)) % len(styles)
	return styles[idx]
}

func renderStylePicker(current mockup.VisualStyle, width int) string {
	parts := make([]string, 0, len(mockup.VisualStyles))
	for _, s := range mockup.VisualStyles {
		if s == current {
			parts = append(parts, selectedStyle().Render("["+string(s)+"]"))
			continue
		}
		parts = append(parts, mutedStyle().Render(string(s)))
	}
	return lipglossWrap(strings.Join(parts, "  "), width)
}

// loadScreenshots reads a comma-separated list of image files.
func loadScreenshots(list, root string) ([]mockup.Image, error) {
	var images []mockup.Image
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) && root != "" {
			p = filepath.Join(root, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read screenshot: %w", err)
		}
		images = append(images, mockup.NewImage(data))
	}
	return images, nil
}
