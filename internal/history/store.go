package history

import (
	"context"
	"sync"
)

// Store persists one opaque history blob. Load returns a nil blob when
// nothing has been saved.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the blob in process. It is used by tests and by
// commands that run without a state directory.
type MemoryStore struct {
	mu    sync.Mutex
	blob  []byte
	saves int

	// LoadErr and SaveErr, when set, are returned by the matching call.
	LoadErr error
	SaveErr error
}

func NewMemoryStore(blob []byte) *MemoryStore {
	return &MemoryStore{blob: append([]byte(nil), blob...)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *MemoryStore) Save(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.blob = append([]byte(nil), blob...)
	s.saves++
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

// Saves reports how many successful writes the store has taken.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) Blob() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.blob...)
}
