package mockup

import "fmt"

// RunInput is the validated, mode-tagged input of a single run. The concrete
// type determines the mode; there is no flat record with optional fields.
type RunInput interface {
	Mode() Mode
	isRunInput()
}

type DescriptionInput struct {
	Text  string      `json:"text"`
	Style VisualStyle `json:"style"`
}

type ModifyInput struct {
	BaseHTML  string `json:"baseHtml"`
	StyleHTML string `json:"styleHtml"`
}

type CloneInput struct {
	URL         string  `json:"url,omitempty"`
	Screenshots []Image `json:"screenshots,omitempty"`
}

func (DescriptionInput) Mode() Mode { return ModeDescription }
func (ModifyInput) Mode() Mode      { return ModeModify }
func (CloneInput) Mode() Mode       { return ModeClone }

func (DescriptionInput) isRunInput() {}
func (ModifyInput) isRunInput()      {}
func (CloneInput) isRunInput()       {}

// MaxScreenshots caps the number of screenshots a clone run accepts.
const MaxScreenshots = 3

// Field names an editable input of the session form.
type Field string

const (
	FieldText        Field = "text"
	FieldStyle       Field = "style"
	FieldBaseHTML    Field = "baseHtml"
	FieldStyleHTML   Field = "styleHtml"
	FieldURL         Field = "url"
	FieldScreenshots Field = "screenshots"
)

func ParseField(s string) (Field, error) {
	for _, f := range []Field{FieldText, FieldStyle, FieldBaseHTML, FieldStyleHTML, FieldURL, FieldScreenshots} {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown input field %q", s)
}

// Draft is the editable form state behind every mode. It holds the fields of
// all modes at once so switching tabs does not lose what the user typed; only
// Input(mode) turns it into a RunInput.
type Draft struct {
	Text        string      `json:"text"`
	Style       VisualStyle `json:"style"`
	BaseHTML    string      `json:"baseHtml"`
	StyleHTML   string      `json:"styleHtml"`
	URL         string      `json:"url"`
	Screenshots []Image     `json:"screenshots,omitempty"`
}

func NewDraft() Draft {
	return Draft{Style: DefaultStyle}
}

// Input projects the draft onto the variant for mode.
func (d Draft) Input(mode Mode) (RunInput, error) {
	switch mode {
	case ModeDescription:
		return DescriptionInput{Text: d.Text, Style: d.Style}, nil
	case ModeModify:
		return ModifyInput{BaseHTML: d.BaseHTML, StyleHTML: d.StyleHTML}, nil
	case ModeClone:
		return CloneInput{URL: NormalizeURL(d.URL), Screenshots: cloneImages(d.Screenshots)}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// DraftFromInput builds the form state for input with every field that does
// not belong to input's mode reset to its default.
func DraftFromInput(input RunInput) Draft {
	d := NewDraft()
	switch in := input.(type) {
	case DescriptionInput:
		d.Text = in.Text
		if in.Style.Valid() {
			d.Style = in.Style
		}
	case ModifyInput:
		d.BaseHTML = in.BaseHTML
		d.StyleHTML = in.StyleHTML
	case CloneInput:
		d.URL = in.URL
		d.Screenshots = cloneImages(in.Screenshots)
	}
	return d
}

// Set assigns a string-valued field. Screenshots are set through SetScreenshots.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldText:
		d.Text = value
	case FieldStyle:
		style, err := ParseStyle(value)
		if err != nil {
			return err
		}
		d.Style = style
	case FieldBaseHTML:
		d.BaseHTML = value
	case FieldStyleHTML:
		d.StyleHTML = value
	case FieldURL:
		d.URL = value
	case FieldScreenshots:
		return fmt.Errorf("field %q takes images, not text", field)
	default:
		return fmt.Errorf("unknown input field %q", field)
	}
	return nil
}

func (d Draft) Clone() Draft {
	d.Screenshots = cloneImages(d.Screenshots)
	return d
}

func cloneImages(images []Image) []Image {
	if images == nil {
		return nil
	}
	out := make([]Image, len(images))
	copy(out, images)
	return out
}
