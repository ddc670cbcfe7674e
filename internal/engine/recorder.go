package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// Recorder turns a settled run into a history entry.
type Recorder struct {
	newID func() string
	now   func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{newID: newEntryID, now: time.Now}
}

// newEntryID returns a UUIDv7, which sorts by creation time.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Record builds the entry for a settled run. The output is masked to the
// channels the input's mode produces, so an entry never carries fields
// foreign to its mode.
func (r *Recorder) Record(input mockup.RunInput, output mockup.RunOutput, errs mockup.ChannelErrors) mockup.HistoryEntry {
	d := mockup.MustDescriptor(input.Mode())
	entry := mockup.HistoryEntry{
		ID:        r.newID(),
		CreatedAt: r.now().UTC(),
		Input:     input,
		Output:    output.Only(d.Channels...),
	}
	if len(errs) > 0 {
		entry.Errors = errs.Clone()
	}
	return entry
}

// Restored is the session state rebuilt from a history entry.
type Restored struct {
	Mode   mockup.Mode
	Draft  mockup.Draft
	Input  mockup.RunInput
	Output mockup.RunOutput
}

// Restore rebuilds the form and output of entry. Fields that do not belong
// to the entry's mode come back at their defaults. It calls nothing external.
func Restore(entry mockup.HistoryEntry) Restored {
	mode := entry.Mode()
	return Restored{
		Mode:   mode,
		Draft:  mockup.DraftFromInput(entry.Input),
		Input:  entry.Input,
		Output: entry.Output.Only(mockup.MustDescriptor(mode).Channels...),
	}
}
