package mockup

import (
	"encoding/json"
	"fmt"
	"time"
)

// HistoryEntry is an immutable snapshot of one settled run.
type HistoryEntry struct {
	ID        string
	CreatedAt time.Time
	Input     RunInput
	Output    RunOutput
	Errors    ChannelErrors
}

func (e HistoryEntry) Mode() Mode {
	if e.Input == nil {
		return ""
	}
	return e.Input.Mode()
}

type entryJSON struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Mode      Mode            `json:"mode"`
	Input     json.RawMessage `json:"input"`
	Output    RunOutput       `json:"output"`
	Errors    ChannelErrors   `json:"errors,omitempty"`
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	if e.Input == nil {
		return nil, fmt.Errorf("history entry %s has no input", e.ID)
	}
	input, err := json.Marshal(e.Input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	return json.Marshal(entryJSON{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Mode:      e.Input.Mode(),
		Input:     input,
		Output:    e.Output,
		Errors:    e.Errors,
	})
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("history entry: id required")
	}

	var input RunInput
	switch raw.Mode {
	case ModeDescription:
		var in DescriptionInput
		if err := json.Unmarshal(raw.Input, &in); err != nil {
			return fmt.Errorf("history entry %s: decode description input: %w", raw.ID, err)
		}
		input = in
	case ModeModify:
		var in ModifyInput
		if err := json.Unmarshal(raw.Input, &in); err != nil {
			return fmt.Errorf("history entry %s: decode modify input: %w", raw.ID, err)
		}
		input = in
	case ModeClone:
		var in CloneInput
		if err := json.Unmarshal(raw.Input, &in); err != nil {
			return fmt.Errorf("history entry %s: decode clone input: %w", raw.ID, err)
		}
		input = in
	default:
		return fmt.Errorf("history entry %s: unknown mode %q", raw.ID, raw.Mode)
	}

	*e = HistoryEntry{
		ID:        raw.ID,
		CreatedAt: raw.CreatedAt,
		Input:     input,
		// Drop channels a mode never produces, in case the blob was edited by hand.
		Output: raw.Output.Only(MustDescriptor(raw.Mode).Channels...),
		Errors: raw.Errors,
	}
	return nil
}

// Summary is the one-glance description of an entry used by history lists.
type Summary struct {
	Title  string
	Badge  string
	Detail string
	Body   string
}

func (e HistoryEntry) Summary() Summary {
	d, _ := DescriptorFor(e.Mode())
	s := Summary{Badge: d.Badge}

	switch in := e.Input.(type) {
	case DescriptionInput:
		s.Title = in.Text
		if s.Title == "" {
			s.Title = "Generated UI"
		}
		s.Detail = "Style: " + string(in.Style)
		s.Body = e.Output.PromptText()
		if e.Output.EnhancedPrompt == nil {
			s.Body = "No prompt generated"
		}
	case ModifyInput:
		s.Title = "HTML Remix"
		s.Detail = "Cloned style applied"
		s.Body = in.BaseHTML
		if s.Body == "" {
			s.Body = "No original HTML provided."
		}
	case CloneInput:
		s.Title = in.URL
		if s.Title == "" {
			s.Title = "Screenshot Clone"
		}
		s.Detail = fmt.Sprintf("%d screenshot(s), %d source(s)", len(in.Screenshots), len(e.Output.GroundingSources))
		s.Body = e.Output.HTMLText()
		if e.Output.HTML == nil {
			s.Body = "No HTML generated"
		}
	}

	if len(e.Errors) > 0 {
		s.Detail += fmt.Sprintf(" · %d failed", len(e.Errors))
	}
	return s
}
