package generate

import "fmt"

// AdapterError is the failure of one generation call.
type AdapterError struct {
	Op      string
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

const (
	OpEnhance = "enhance-text"
	OpImage   = "synthesize-image"
	OpHTML    = "synthesize-html"
	OpRestyle = "restyle-html"
	OpClone   = "clone-url"
)
