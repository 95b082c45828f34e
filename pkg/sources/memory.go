package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// MemoryID identifies the in-memory source.
const MemoryID ID = "memory"

// Memory is a Source backed by a fixed set of projects. Failures can be
// injected per project to exercise skip paths.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*Project
	failures map[string]error
	listErr  error
}

// NewMemory creates a memory source holding the given projects.
func NewMemory(projects ...*Project) *Memory {
	m := &Memory{
		projects: make(map[string]*Project, len(projects)),
		failures: make(map[string]error),
	}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

// Fail makes FetchProject for id return err. An id with no project is
// still listed.
func (m *Memory) Fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = err
}

// FailListing makes ListProjects return err.
func (m *Memory) FailListing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// ID implements Source.
func (m *Memory) ID() ID {
	return MemoryID
}

// ListProjects implements Source.
func (m *Memory) ListProjects(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.projects)+len(m.failures))
	for id := range m.projects {
		ids = append(ids, id)
	}
	for id := range m.failures {
		if _, ok := m.projects[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// FetchProject implements Source.
func (m *Memory) FetchProject(ctx context.Context, id string) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.failures[id]; ok {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, errors.NewFetchError(id, errors.ErrNotFound)
	}
	return p, nil
}
