package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// MaxEntries caps the persisted log.
const MaxEntries = 20

// ErrCorrupt marks a stored blob that could not be decoded.
var ErrCorrupt = errors.New("history blob is corrupt")

// Log is the run history, most recent entry first.
type Log []mockup.HistoryEntry

// Prepend returns a new log with entry at the head and the tail truncated to
// MaxEntries. The receiver is never modified.
func (l Log) Prepend(entry mockup.HistoryEntry) Log {
	n := len(l) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	out := make(Log, 0, n)
	out = append(out, entry)
	out = append(out, l[:n-1]...)
	return out
}

func (l Log) Find(id string) (mockup.HistoryEntry, bool) {
	for _, e := range l {
		if e.ID == id {
			return e, true
		}
	}
	return mockup.HistoryEntry{}, false
}

// Encode serializes the log as a JSON array of entries.
func Encode(l Log) ([]byte, error) {
	if l == nil {
		l = Log{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by Encode. An empty blob is an empty log.
// Anything undecodable is reported as ErrCorrupt.
func Decode(data []byte) (Log, error) {
	if len(data) == 0 {
		return Log{}, nil
	}
	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if l == nil {
		l = Log{}
	}
	if len(l) > MaxEntries {
		l = l[:MaxEntries]
	}
	return l, nil
}
