package generate

import (
	"fmt"
	"strings"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func enhancePrompt(text string, style mockup.VisualStyle) string {
	return fmt.Sprintf(`As an expert UI/UX designer and prompt engineer, take the user's short description of a user interface and a visual style and expand it into a rich, structured prompt suitable for an image model producing a high-fidelity UI mockup.

The user wants a UI for: %q
The desired visual style is: %q

Write one markdown section per heading below, in this order:

## Overall Vibe & Style
The aesthetic (%s), the mood and the overall feeling.
## Color Palette
Primary, secondary, accent and neutral colors, with hex codes.
## Typography
A heading font and a body font that fit the style, with weights and scale.
## Layout & Composition
Structure (centered, grid, asymmetrical), spacing and arrangement.
## Key UI Components
Shape, shadows, borders and textures of the components the description implies.
## Iconography
The icon style.
## Micro-interactions & Animations (Subtle)
Hover states, transitions and loading indicators.

Reply with the prompt text only, starting at "## Overall Vibe & Style". No preamble.`, text, style, style)
}

func imagePrompt(prompt string) string {
	return "A high-fidelity UI mockup for a web/mobile application, embodying the following detailed description. " +
		"Focus on a visually appealing and realistic interface. UI design, UX, user interface.\n\n" + prompt
}

const htmlRules = `Rules:
1. Use semantic HTML5 elements (nav, main, button, article) instead of generic divs where they fit.
2. Add ARIA attributes where a screen reader needs them. Every interactive element must be keyboard reachable.
3. Every img has an alt attribute; decorative images use alt="".
4. Style with Tailwind CSS classes only. No style blocks and no inline style attributes.
5. Return only the HTML. No explanations and no markdown fences.`

func htmlPrompt(prompt string) string {
	return `You are an expert front-end developer specializing in Tailwind CSS and accessibility.
Convert the UI prompt below into one clean, accessible, responsive block of HTML. Do not emit html or body tags unless the prompt describes a full page. Use placeholder text and https://via.placeholder.com images where content is missing.

PROMPT:
---
` + prompt + `
---

` + htmlRules
}

func restylePrompt(baseHTML, styleHTML string) string {
	return `You are an expert front-end developer specializing in Tailwind CSS and accessibility (WCAG).
Remix the ORIGINAL HTML so it looks and feels like the STYLE HTML. Keep the original's content, text, image sources and meaning; take nothing but the design language (colors, typography, spacing, layout, borders, shadows) from the style. Fix accessibility problems in the original while you are at it: divs acting as buttons, missing labels, missing alt text.

` + htmlRules + `

ORIGINAL HTML:
` + "```html\n" + baseHTML + "\n```" + `

STYLE HTML:
` + "```html\n" + styleHTML + "\n```"
}

// CloneRequest is a clone call with whatever page context could be gathered.
type CloneRequest struct {
	URL         string
	Screenshots []mockup.Image
	PageTitle   string
	PageOutline string
}

func clonePrompt(req CloneRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert front-end developer specializing in Tailwind CSS and accessibility.\n")
	b.WriteString("Recreate the user interface described below as one self-contained block of HTML that matches its layout, content hierarchy and visual design as closely as you can.\n\n")
	if req.URL != "" {
		fmt.Fprintf(&b, "Page URL: %s\nLook the page up if you need more detail about it.\n", req.URL)
	}
	if req.PageTitle != "" {
		fmt.Fprintf(&b, "Page title: %s\n", req.PageTitle)
	}
	if n := len(req.Screenshots); n > 0 {
		fmt.Fprintf(&b, "%d screenshot(s) of the page are attached; treat them as the reference for the visual design.\n", n)
	}
	if req.PageOutline != "" {
		b.WriteString("\nPage outline:\n---\n")
		b.WriteString(req.PageOutline)
		b.WriteString("\n---\n")
	}
	b.WriteString("\n")
	b.WriteString(htmlRules)
	return b.String()
}
