// Package session keeps one navigation state machine per browser tab.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rparrett/synthlang-web/internal/navigation"
)

// Tab owns the state machine for one browser tab. All access goes through Do,
// so each event runs to completion before the next one starts.
type Tab struct {
	mu      sync.Mutex
	machine *navigation.Machine
}

// Do runs fn with exclusive access to the tab's machine.
func (t *Tab) Do(fn func(m *navigation.Machine)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.machine)
}

// MachineFactory builds a machine whose first load is initialPath.
type MachineFactory func(initialPath string) *navigation.Machine

// Store is a bounded, idle-expiring set of tabs keyed by session id.
type Store struct {
	mu         sync.Mutex
	tabs       *expirable.LRU[string, *Tab]
	newMachine MachineFactory
}

// Config controls Store capacity and expiry.
type Config struct {
	MaxTabs int
	TTL     time.Duration
	// OnEvict is called for every tab dropped by capacity or expiry.
	OnEvict func(id string)
}

// NewStore builds a Store.
func NewStore(cfg Config, factory MachineFactory) *Store {
	var onEvict expirable.EvictCallback[string, *Tab]
	if cfg.OnEvict != nil {
		onEvict = func(id string, _ *Tab) { cfg.OnEvict(id) }
	}
	return &Store{
		tabs:       expirable.NewLRU[string, *Tab](cfg.MaxTabs, onEvict, cfg.TTL),
		newMachine: factory,
	}
}

// Get returns the tab for id and refreshes its expiry.
func (s *Store) Get(id string) (*Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab, ok := s.tabs.Get(id)
	if ok {
		s.tabs.Add(id, tab)
	}
	return tab, ok
}

// GetOrCreate returns the tab for id, creating it from path when it is
// missing or expired. created reports whether the machine was just built, in
// which case it has already handled path as an external URL change.
func (s *Store) GetOrCreate(id, path string) (tab *Tab, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tab, ok := s.tabs.Get(id); ok {
		s.tabs.Add(id, tab)
		return tab, false
	}
	tab = &Tab{machine: s.newMachine(path)}
	s.tabs.Add(id, tab)
	return tab, true
}

// Create builds a fresh tab for id from path, replacing any existing one.
func (s *Store) Create(id, path string) *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := &Tab{machine: s.newMachine(path)}
	s.tabs.Add(id, tab)
	return tab
}

// Len reports the number of live tabs.
func (s *Store) Len() int {
	return s.tabs.Len()
}

// NewTabID returns a random identifier for a freshly loaded page.
func NewTabID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Key scopes a tab id to the session that issued it.
func Key(sessionID, tabID string) string {
	return sessionID + "/" + tabID
}
