package mockup

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type FieldSpec struct {
	Field    Field
	Label    string
	Required bool
}

// Descriptor is the static definition of one mode: the inputs it reads, how
// they are validated and which output channels a run in that mode fills.
type Descriptor struct {
	Mode     Mode
	Label    string
	Badge    string
	Action   string
	Fields   []FieldSpec
	Channels []Channel
	// AnyOf lists fields of which at least one must be non-empty.
	AnyOf   []Field
	Message string
}

var descriptors = map[Mode]Descriptor{
	ModeDescription: {
		Mode:   ModeDescription,
		Label:  "Describe UI",
		Badge:  "Describe",
		Action: "Enhance Prompt",
		Fields: []FieldSpec{
			{Field: FieldText, Label: "Describe your UI idea", Required: true},
			{Field: FieldStyle, Label: "Choose a visual style", Required: true},
		},
		Channels: []Channel{ChannelPrompt, ChannelImage, ChannelHTML},
		Message:  "Please describe your UI idea.",
	},
	ModeModify: {
		Mode:   ModeModify,
		Label:  "Remix HTML",
		Badge:  "Remix",
		Action: "Remix HTML",
		Fields: []FieldSpec{
			{Field: FieldBaseHTML, Label: "Your existing HTML", Required: true},
			{Field: FieldStyleHTML, Label: "HTML to clone the style from", Required: true},
		},
		Channels: []Channel{ChannelHTML},
		Message:  "Please provide both your existing HTML and the HTML to clone the style from.",
	},
	ModeClone: {
		Mode:   ModeClone,
		Label:  "Clone URL",
		Badge:  "Clone",
		Action: "Clone UI",
		Fields: []FieldSpec{
			{Field: FieldURL, Label: "Page URL"},
			{Field: FieldScreenshots, Label: fmt.Sprintf("Screenshots (up to %d)", MaxScreenshots)},
		},
		Channels: []Channel{ChannelHTML},
		AnyOf:    []Field{FieldURL, FieldScreenshots},
		Message:  "Please provide a URL or at least one screenshot.",
	},
}

func DescriptorFor(mode Mode) (Descriptor, bool) {
	d, ok := descriptors[mode]
	return d, ok
}

// MustDescriptor is for callers holding a mode that already passed validation.
func MustDescriptor(mode Mode) Descriptor {
	d, ok := descriptors[mode]
	if !ok {
		panic(fmt.Sprintf("mockup: no descriptor for mode %q", mode))
	}
	return d
}

// Applies reports whether ch is an output channel of mode.
func (d Descriptor) Applies(ch Channel) bool {
	for _, c := range d.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

type ValidationError struct {
	Mode    Mode
	Fields  []Field
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(names, ", "))
}

// Validate rejects an input whose required fields are empty or malformed.
// It never looks at anything outside the input, so it is safe to call before
// any generation work is scheduled.
func Validate(input RunInput) error {
	if input == nil {
		return &ValidationError{Message: "no input"}
	}
	d, ok := DescriptorFor(input.Mode())
	if !ok {
		return &ValidationError{Mode: input.Mode(), Message: fmt.Sprintf("unknown mode %q", input.Mode())}
	}

	switch in := input.(type) {
	case DescriptionInput:
		if blank(in.Text) {
			return &ValidationError{Mode: d.Mode, Fields: []Field{FieldText}, Message: d.Message}
		}
		if !in.Style.Valid() {
			return &ValidationError{Mode: d.Mode, Fields: []Field{FieldStyle}, Message: fmt.Sprintf("Unknown visual style %q.", in.Style)}
		}
	case ModifyInput:
		var missing []Field
		if blank(in.BaseHTML) {
			missing = append(missing, FieldBaseHTML)
		}
		if blank(in.StyleHTML) {
			missing = append(missing, FieldStyleHTML)
		}
		if len(missing) > 0 {
			return &ValidationError{Mode: d.Mode, Fields: missing, Message: d.Message}
		}
	case CloneInput:
		if blank(in.URL) && len(in.Screenshots) == 0 {
			return &ValidationError{Mode: d.Mode, Fields: d.AnyOf, Message: d.Message}
		}
		if len(in.Screenshots) > MaxScreenshots {
			return &ValidationError{
				Mode:    d.Mode,
				Fields:  []Field{FieldScreenshots},
				Message: fmt.Sprintf("At most %d screenshots can be attached.", MaxScreenshots),
			}
		}
		for _, shot := range in.Screenshots {
			if shot.Empty() {
				return &ValidationError{Mode: d.Mode, Fields: []Field{FieldScreenshots}, Message: "Screenshots must not be empty."}
			}
		}
		if !blank(in.URL) {
			if err := checkURL(in.URL); err != nil {
				return &ValidationError{Mode: d.Mode, Fields: []Field{FieldURL}, Message: err.Error()}
			}
		}
	}
	return nil
}

var errInvalidURL = errors.New("Please provide a valid http(s) URL.")

// NormalizeURL trims raw and assumes https when no scheme is given, so a bare
// host like "example.com" is accepted.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

func checkURL(raw string) error {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errInvalidURL
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
