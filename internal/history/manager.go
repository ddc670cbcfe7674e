package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is how long Persist waits for further changes before writing.
const DefaultDebounce = 500 * time.Millisecond

// Manager sits between the session and a Store. Every store failure is
// logged and swallowed: history is a convenience, never a reason to fail a run.
type Manager struct {
	store    Store
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending Log
	dirty   bool
	timer   *time.Timer

	// saveMu serializes writes so a slow save cannot land after a newer one.
	saveMu   sync.Mutex
	lastBlob []byte
}

type Option func(*Manager)

func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.debounce = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load reads the persisted log. Unreadable or corrupt data yields an empty
// log; a corrupt blob is also removed so the next save starts clean.
func (m *Manager) Load(ctx context.Context) Log {
	blob, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("history load failed", "error", err)
		return Log{}
	}
	log, err := Decode(blob)
	if err != nil {
		m.logger.Warn("discarding history", "error", err)
		if errors.Is(err, ErrCorrupt) {
			if err := m.store.Clear(ctx); err != nil {
				m.logger.Warn("history clear failed", "error", err)
			}
		}
		return Log{}
	}

	m.saveMu.Lock()
	m.lastBlob = blob
	m.saveMu.Unlock()
	return log
}

// Persist schedules log to be written. Calls within the debounce window
// coalesce into one write of the latest log. A zero window writes inline.
func (m *Manager) Persist(log Log) {
	m.mu.Lock()
	m.pending = append(Log(nil), log...)
	m.dirty = true
	if m.debounce == 0 {
		m.mu.Unlock()
		m.write(context.Background())
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() { m.write(context.Background()) })
	m.mu.Unlock()
}

// Clear drops any pending write and removes the stored blob immediately.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = nil
	m.dirty = false
	m.mu.Unlock()

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("history clear failed", "error", err)
		return
	}
	m.lastBlob = nil
}

// Flush writes any pending log now.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	m.write(ctx)
}

func (m *Manager) write(ctx context.Context) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	log, dirty := m.pending, m.dirty
	m.dirty = false
	m.mu.Unlock()
	if !dirty {
		return
	}

	if len(log) == 0 {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("history clear failed", "error", err)
			return
		}
		m.lastBlob = nil
		return
	}

	blob, err := Encode(log)
	if err != nil {
		m.logger.Warn("history encode failed", "error", err)
		return
	}
	if m.lastBlob != nil && bytes.Equal(blob, m.lastBlob) {
		return
	}
	if err := m.store.Save(ctx, blob); err != nil {
		m.logger.Warn("history save failed", "error", err, "entries", len(log))
		return
	}
	m.lastBlob = blob
	m.logger.Debug("history saved", "entries", len(log), "bytes", len(blob))
}
