package mockup

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a canned description-mode prompt the user can render and then
// remix.
type Template struct {
	ID     string      `yaml:"id" json:"id"`
	Name   string      `yaml:"name" json:"name"`
	Prompt string      `yaml:"prompt" json:"prompt"`
	Style  VisualStyle `yaml:"style" json:"style"`
}

// Directive is the text sent to the html generator for this template.
func (t Template) Directive() string {
	return fmt.Sprintf("%s The visual style should be %s.", t.Prompt, t.Style)
}

// TemplateTarget selects which remix input a rendered template is placed in.
type TemplateTarget string

const (
	TargetBase  TemplateTarget = "base"
	TargetStyle TemplateTarget = "style"
)

func ParseTemplateTarget(s string) (TemplateTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base", "basehtml":
		return TargetBase, nil
	case "style", "stylehtml":
		return TargetStyle, nil
	default:
		return "", fmt.Errorf("unknown template target %q (expected base or style)", s)
	}
}

//go:embed templates.yaml
var templatesYAML []byte

var templates = mustLoadTemplates(templatesYAML)

func mustLoadTemplates(data []byte) []Template {
	out, err := parseTemplates(data)
	if err != nil {
		panic(err)
	}
	return out
}

func parseTemplates(data []byte) ([]Template, error) {
	var out []Template
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for _, t := range out {
		if t.ID == "" || t.Prompt == "" {
			return nil, fmt.Errorf("template catalog: entry %q missing id or prompt", t.Name)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("template catalog: duplicate id %q", t.ID)
		}
		if !t.Style.Valid() {
			return nil, fmt.Errorf("template catalog: %s has unknown style %q", t.ID, t.Style)
		}
		seen[t.ID] = true
	}
	return out, nil
}

// Templates returns the catalog in display order.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
