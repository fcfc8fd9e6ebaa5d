package state

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/basepi/basereceipt/internal/config"
	"github.com/basepi/basereceipt/internal/receipt"
	"github.com/basepi/basereceipt/internal/storage"
)

// Listener receives state snapshots. Each invocation gets its own deep
// copy; mutating it cannot affect the manager or other listeners.
type Listener func(AppState)

// Manager is the per-tab state store.
//
// Thread-safety model:
//   - All exported methods are safe from any goroutine.
//   - Listeners are invoked outside the internal lock, so a listener may
//     call back into the manager without deadlocking.
//   - Listener panics are recovered and logged; they never break other
//     listeners or future notifications.
type Manager struct {
	mu        sync.Mutex
	state     AppState
	listeners map[int]Listener
	nextID    int

	kv       storage.KV
	degraded bool
	lastRaw  string // last successfully persisted serialization

	clock  receipt.Clock
	domain config.DomainConfig
	logger *slog.Logger

	emit   func(storage.Event)
	detach func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithKV sets the durable store. Defaults to an in-memory store, which
// is equivalent to permanently degraded operation.
func WithKV(kv storage.KV) ManagerOption {
	return func(m *Manager) {
		m.kv = kv
	}
}

// WithClock overrides the wall clock used for lastUpdated stamps.
func WithClock(c receipt.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithHub attaches the manager to a storage event hub. The manager
// broadcasts its persisted writes through the hub and applies events
// published by other tabs.
func WithHub(hub *storage.Hub) ManagerOption {
	return func(m *Manager) {
		m.emit, m.detach = hub.Attach(m.HandleStorageEvent)
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a manager for one tab, loading any previously
// persisted state from the durable store. A corrupt or absent persisted
// value falls back to the default empty state; it is never an error.
func NewManager(domain config.DomainConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		listeners: make(map[int]Listener),
		kv:        storage.NewMemoryKV(),
		clock:     receipt.SystemClock{},
		domain:    domain,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.state = m.defaultState()
	m.loadPersisted()
	return m
}

// State returns a deep-copy snapshot of the current state.
func (m *Manager) State() AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Apply merges the patch into the current state, stamps lastUpdated,
// persists the result, notifies local subscribers, and broadcasts the
// change to other tabs. It returns the resulting snapshot.
//
// The merge happens atomically under the manager's lock: rapid
// concurrent Apply calls within one tab serialize cleanly and the final
// durable value always matches the last call's intent.
func (m *Manager) Apply(p Patch) AppState {
	m.mu.Lock()

	next := m.state.clone()
	switch {
	case p.ClearReceipt:
		next.Receipt = nil
	case p.Receipt != nil:
		rec := p.Receipt.Clone()
		next.Receipt = &rec
	}
	if p.IsProcessing != nil {
		next.IsProcessing = *p.IsProcessing
	}
	next.LastUpdated = m.clock.Now()
	next.Domain = m.domain
	m.state = next

	old := m.lastRaw
	raw, persisted := m.persistLocked()
	snapshot := m.state.clone()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	m.notify(listeners, snapshot)
	if persisted && m.emit != nil {
		m.emit(storage.Event{Key: StateKey, OldValue: old, NewValue: raw})
	}
	return snapshot
}

// Subscribe registers a listener. It is invoked once immediately with
// the current state, then on every local Apply and every accepted
// cross-tab update. The returned function deregisters it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	snapshot := m.state.clone()
	m.mu.Unlock()

	m.notify([]Listener{fn}, snapshot)

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Reset returns the state to its default shape - no receipt, not
// processing - keeping the domain identity, then persists and notifies.
func (m *Manager) Reset() AppState {
	m.mu.Lock()
	m.state = m.defaultState()
	old := m.lastRaw
	raw, persisted := m.persistLocked()
	snapshot := m.state.clone()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	m.notify(listeners, snapshot)
	if persisted && m.emit != nil {
		m.emit(storage.Event{Key: StateKey, OldValue: old, NewValue: raw})
	}
	return snapshot
}

// ClearAll removes every durable entry owned by this system, then
// performs the equivalent of Reset.
func (m *Manager) ClearAll() AppState {
	for _, key := range []string{StateKey, SyncTimestampKey, DomainKey} {
		if err := m.kv.Delete(key); err != nil {
			m.logger.Warn("clearing storage key failed", "key", key, "error", err)
		}
	}
	m.mu.Lock()
	m.lastRaw = ""
	m.mu.Unlock()
	return m.Reset()
}

// DomainIdentity returns the static deployment identity.
func (m *Manager) DomainIdentity() config.DomainConfig {
	return m.domain
}

// VerifyDomainBinding compares the durably stored identity against this
// runtime's identity. True when nothing is stored yet (first run) or the
// full domains match; false on mismatch or an unreadable stored value.
// The result is advisory - callers may escalate, the manager does not.
func (m *Manager) VerifyDomainBinding() bool {
	raw, err := m.kv.Get(DomainKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return true
	}
	if err != nil {
		m.logger.Warn("reading stored domain identity failed", "error", err)
		return true
	}

	var stored config.DomainConfig
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		m.logger.Warn("stored domain identity is corrupt", "error", err)
		return false
	}

	ok := stored.FullDomain == m.domain.FullDomain
	if !ok {
		m.logger.Warn("domain binding mismatch",
			"stored", stored.FullDomain, "runtime", m.domain.FullDomain)
	}
	return ok
}

// HandleStorageEvent applies a cross-tab storage notification.
//
// Only events for the state key matter. The incoming serialized state
// replaces the local one iff its lastUpdated is strictly newer
// (last-writer-wins); the local domain identity is always re-applied.
// Corrupt payloads are logged and discarded, never fatal.
func (m *Manager) HandleStorageEvent(ev storage.Event) {
	if ev.Key != StateKey || ev.NewValue == "" {
		return
	}

	var incoming AppState
	if err := json.Unmarshal([]byte(ev.NewValue), &incoming); err != nil {
		m.logger.Warn("cross-tab state payload is corrupt", "error", err)
		return
	}

	m.mu.Lock()
	if !incoming.LastUpdated.After(m.state.LastUpdated) {
		m.mu.Unlock()
		return
	}
	incoming.Domain = m.domain
	m.state = incoming.clone()
	snapshot := m.state.clone()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	m.notify(listeners, snapshot)
}

// Degraded reports whether a persistence failure has switched this tab
// to in-memory-only operation.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// Close detaches the manager from the storage event hub. The durable
// store's lifecycle belongs to the caller.
func (m *Manager) Close() {
	if m.detach != nil {
		m.detach()
	}
}

func (m *Manager) defaultState() AppState {
	return AppState{
		Receipt:      nil,
		IsProcessing: false,
		LastUpdated:  m.clock.Now(),
		Domain:       m.domain,
	}
}

// loadPersisted restores state from the durable store at startup.
// Absence and corruption both fall back to the default state.
func (m *Manager) loadPersisted() {
	raw, err := m.kv.Get(StateKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return
	}
	if err != nil {
		m.logger.Warn("loading persisted state failed; starting empty", "error", err)
		m.degraded = true
		return
	}

	var loaded AppState
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		m.logger.Warn("persisted state is corrupt; starting empty", "error", err)
		return
	}

	loaded.Domain = m.domain // never trust a stored identity
	m.mu.Lock()
	m.state = loaded.clone()
	m.lastRaw = raw
	m.mu.Unlock()
}

// persistLocked writes the current state under all three storage keys.
// Must be called with m.mu held. On failure the tab degrades to
// in-memory-only operation; the caller must then skip broadcasting.
func (m *Manager) persistLocked() (raw string, ok bool) {
	data, err := json.Marshal(m.state)
	if err != nil {
		m.logger.Warn("serializing state failed", "error", err)
		return "", false
	}
	raw = string(data)

	if err := m.kv.Set(StateKey, raw); err != nil {
		m.degraded = true
		m.logger.Warn("persisting state failed; continuing in-memory", "error", err)
		return "", false
	}
	if err := m.kv.Set(SyncTimestampKey, m.state.LastUpdated.UTC().Format(time.RFC3339Nano)); err != nil {
		m.logger.Warn("persisting sync timestamp failed", "error", err)
	}
	domainJSON, err := json.Marshal(m.domain)
	if err == nil {
		if err := m.kv.Set(DomainKey, string(domainJSON)); err != nil {
			m.logger.Warn("persisting domain identity failed", "error", err)
		}
	}

	m.degraded = false
	m.lastRaw = raw
	return raw, true
}

// listenersLocked snapshots the listener set. Must be called with m.mu held.
func (m *Manager) listenersLocked() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

// notify invokes listeners outside the lock, isolating panics.
func (m *Manager) notify(listeners []Listener, snapshot AppState) {
	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("state listener panicked", "panic", r)
				}
			}()
			fn(snapshot.clone())
		}()
	}
}
