package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Registration describes an engine adapter and its connection defaults.
type Registration struct {
	Name string
	New  func(*slog.Logger) Adapter

	// FileBased engines open a local database file instead of dialing a server.
	FileBased     bool
	DefaultPort   int
	DefaultSchema string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register makes an adapter available by name. Adapter packages call it from init().
func Register(r Registration) {
	if r.Name == "" || r.New == nil {
		panic("adapter: Register requires a name and constructor")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[r.Name] = r
}

// Lookup returns the registration for an engine name.
func Lookup(name string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[name]
	return r, ok
}

// NewAdapter creates an unconnected adapter for cfg.Type.
// A nil logger is replaced by a discard logger inside the adapter.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	r, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return r.New(logger), nil
}

// ListAdapters returns the registered engine names, sorted.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether an engine name is known.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// UnknownAdapterError is returned when target.type names no registered engine.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check your target.type in sqlplay.yaml", e.Type, e.Available)
}
