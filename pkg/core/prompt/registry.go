package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the loaded prompts.
type Registry struct {
	prompts map[string]*PromptTemplate
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]*PromptTemplate)}
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// Get returns the process-wide registry.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

func (r *Registry) Register(pt *PromptTemplate) error {
	if pt.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[pt.ID] = pt
	return nil
}

func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prompts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("prompt not found: %s", id)
}

// ListPrompts returns the registered IDs, sorted.
func (r *Registry) ListPrompts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}
