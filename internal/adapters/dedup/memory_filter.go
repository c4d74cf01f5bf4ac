package dedup

import (
	"context"
	"sync"
)

// MemoryFilter tracks seen fingerprints for the life of the process
type MemoryFilter struct {
	seen map[string]map[string]struct{}
	mu   sync.Mutex
}

// NewMemoryFilter creates a new in-memory fingerprint filter
func NewMemoryFilter() *MemoryFilter {
	return &MemoryFilter{seen: make(map[string]map[string]struct{})}
}

// IsNew returns true the first time a fingerprint is seen in the scope
func (f *MemoryFilter) IsNew(ctx context.Context, scope, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, ok := f.seen[scope]
	if !ok {
		set = make(map[string]struct{})
		f.seen[scope] = set
	}
	if _, dup := set[fingerprint]; dup {
		return false, nil
	}
	set[fingerprint] = struct{}{}
	return true, nil
}
