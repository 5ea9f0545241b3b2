package scanner

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateScanner is returned when a name is registered twice.
var ErrDuplicateScanner = errors.New("scanner already registered")

// ErrUnknownScanner is returned by Select for names that are not registered.
var ErrUnknownScanner = errors.New("unknown scanner")

// Registry holds scanners by name.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Scanner
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: make(map[string]Scanner)}
}

// Register adds s. Names must be unique.
func (r *Registry) Register(s Scanner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scanners[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateScanner, s.Name())
	}
	r.scanners[s.Name()] = s
	return nil
}

// Get returns a scanner by name, or nil if not found.
func (r *Registry) Get(name string) Scanner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scanners[name]
}

// Names returns registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scanners))
	for n := range r.scanners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns all scanners sorted by name.
func (r *Registry) All() []Scanner {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Scanner, 0, len(names))
	for _, n := range names {
		out = append(out, r.scanners[n])
	}
	return out
}

// Select returns the named scanners, or all scanners when names is empty.
// Names listed in skip are left out.
func (r *Registry) Select(names []string, skip []string) ([]Scanner, error) {
	skipped := make(map[string]bool, len(skip))
	for _, n := range skip {
		skipped[n] = true
	}
	if len(names) == 0 {
		var out []Scanner
		for _, s := range r.All() {
			if !skipped[s.Name()] {
				out = append(out, s)
			}
		}
		return out, nil
	}
	out := make([]Scanner, 0, len(names))
	for _, n := range names {
		s := r.Get(n)
		if s == nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownScanner, n, r.Names())
		}
		if !skipped[n] {
			out = append(out, s)
		}
	}
	return out, nil
}

// ForFile returns the scanners that claim path, sorted by name.
func (r *Registry) ForFile(path string) []Scanner {
	var out []Scanner
	for _, s := range r.All() {
		if s.CanHandleFile(path) {
			out = append(out, s)
		}
	}
	return out
}
