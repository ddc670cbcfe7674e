package engine

import "github.com/jbonatakis/mockingbird/internal/mockup"

const (
	msgPrompt      = "Failed to enhance prompt."
	msgImage       = "Failed to generate preview."
	msgHTMLFromDoc = "Failed to generate HTML from prompt."
	msgHTMLModify  = "Failed to modify HTML."
	msgHTMLClone   = "Failed to clone the page."
	msgTemplate    = "Failed to generate template."
)

// FailureMessage is the fixed text shown in place of a failed channel.
// Adapter error details are logged, never shown.
func FailureMessage(mode mockup.Mode, ch mockup.Channel) string {
	switch ch {
	case mockup.ChannelPrompt:
		return msgPrompt
	case mockup.ChannelImage:
		return msgImage
	}
	switch mode {
	case mockup.ModeModify:
		return msgHTMLModify
	case mockup.ModeClone:
		return msgHTMLClone
	default:
		return msgHTMLFromDoc
	}
}
