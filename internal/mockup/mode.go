package mockup

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeDescription Mode = "description"
	ModeModify      Mode = "modify"
	ModeClone       Mode = "clone"
)

// Modes lists every mode in tab order.
var Modes = []Mode{ModeDescription, ModeModify, ModeClone}

func (m Mode) Valid() bool {
	switch m {
	case ModeDescription, ModeModify, ModeClone:
		return true
	default:
		return false
	}
}

// ParseMode accepts the canonical names plus the labels shown in the UI.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "description", "describe":
		return ModeDescription, nil
	case "modify", "remix":
		return ModeModify, nil
	case "clone":
		return ModeClone, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected description, modify or clone)", s)
	}
}

type VisualStyle string

const (
	StyleMinimalist    VisualStyle = "Minimalist"
	StyleNeumorphic    VisualStyle = "Neumorphic"
	StyleCyberpunk     VisualStyle = "Cyberpunk"
	StyleGlassmorphism VisualStyle = "Glassmorphism"
	StyleBrutalist     VisualStyle = "Brutalist"
	StyleCorporate     VisualStyle = "Clean & Corporate"
	StylePlayful       VisualStyle = "Playful & Illustrated"
	StyleVintage       VisualStyle = "Vintage & Retro"
)

// DefaultStyle is the style a fresh or restored non-description session falls back to.
const DefaultStyle = StyleMinimalist

var VisualStyles = []VisualStyle{
	StyleMinimalist,
	StyleNeumorphic,
	StyleCyberpunk,
	StyleGlassmorphism,
	StyleBrutalist,
	StyleCorporate,
	StylePlayful,
	StyleVintage,
}

func (s VisualStyle) Valid() bool {
	for _, known := range VisualStyles {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStyle matches case-insensitively on the display name or on its first
// word, so "clean" and "playful" resolve to the multi-word styles.
func ParseStyle(s string) (VisualStyle, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "" {
		return "", fmt.Errorf("style is empty")
	}
	for _, known := range VisualStyles {
		name := strings.ToLower(string(known))
		if name == want {
			return known, nil
		}
		if first, _, ok := strings.Cut(name, " "); ok && first == want {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}

// Channel is an independently resolvable output slot of a run.
type Channel string

const (
	ChannelPrompt Channel = "prompt"
	ChannelImage  Channel = "image"
	ChannelHTML   Channel = "html"
)

var Channels = []Channel{ChannelPrompt, ChannelImage, ChannelHTML}
