package project

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore serves settings from memory, seeded from the config file at
// startup. This is the default for single-instance deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]Settings
}

func NewMemoryStore(settings ...Settings) *MemoryStore {
	s := &MemoryStore{projects: make(map[string]Settings, len(settings))}
	for _, p := range settings {
		s.projects[p.ProjectID] = p
	}
	return s
}

// Put adds or replaces one project's settings.
func (s *MemoryStore) Put(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[settings.ProjectID] = settings
}

func (s *MemoryStore) Get(_ context.Context, projectID string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.projects[projectID]; ok {
		return p, nil
	}
	return Settings{}, ErrNotFound
}

func (s *MemoryStore) ListEnabled(_ context.Context) ([]Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Settings
	for _, p := range s.projects {
		if p.Enabled {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
