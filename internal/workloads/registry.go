// Package workloads holds the workload-specific reduction steps and the registry
// the dispatcher resolves them from.
package workloads

import (
	"sort"
	"sync"

	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

// Factory builds a fresh extension for one report.
type Factory func() report.Extension

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register binds a workload name to its extension factory. A later registration
// for the same name wins.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = f
}

// Lookup returns the factory registered for name.
func Lookup(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Names lists the registered workloads in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
