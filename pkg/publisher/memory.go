package publisher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Health-RI/img2catalog/internal/sparql"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
)

// Memory is an in-memory Sink that keeps every record it receives. It also
// answers reconciliation queries, so a run against it behaves like a run
// against a real store. Failures can be injected to exercise retries.
type Memory struct {
	mu        sync.Mutex
	base      string
	records   map[string]*graph.Graph
	container map[string]string
	order     []string
	failNext  []error
	rejects   map[string]error
	delay     time.Duration

	creates, updates      int
	inFlight, maxInFlight int
}

var _ Sink = (*Memory)(nil)

// NewMemory creates an empty store that hands out references under base.
func NewMemory(base string) *Memory {
	return &Memory{
		base:      strings.TrimRight(base, "/"),
		records:   make(map[string]*graph.Graph),
		container: make(map[string]string),
		rejects:   make(map[string]error),
	}
}

// FailNext makes the next n writes fail with err before reaching the store.
func (m *Memory) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for range n {
		m.failNext = append(m.failNext, err)
	}
}

// Reject makes every write of subject fail with err.
func (m *Memory) Reject(subject string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejects[subject] = err
}

// SetDelay makes every write take at least d.
func (m *Memory) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Create implements Sink.
func (m *Memory) Create(ctx context.Context, container string, g *graph.Graph, subject string) (string, error) {
	if err := m.begin(ctx, subject); err != nil {
		return "", err
	}
	defer m.end()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	ref := fmt.Sprintf("%s/dataset/%d", m.base, len(m.order)+1)
	doc := g.Rename(subject, ref)
	doc.Add(graph.IRI(ref), graph.DCTIsPartOf, graph.IRI(container))
	m.records[ref] = doc
	m.container[ref] = container
	m.order = append(m.order, ref)
	return ref, nil
}

// Update implements Sink.
func (m *Memory) Update(ctx context.Context, reference string, g *graph.Graph, subject string) error {
	if err := m.begin(ctx, subject); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if _, ok := m.records[reference]; !ok {
		return errors.NewAPIError("memory", 404, "no record at "+reference)
	}
	doc := g.Rename(subject, reference)
	doc.Add(graph.IRI(reference), graph.DCTIsPartOf, graph.IRI(m.container[reference]))
	m.records[reference] = doc
	return nil
}

// Select answers the reconciliation query with every record whose
// container appears in the query.
func (m *Memory) Select(_ context.Context, query string) (*sparql.Results, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := &sparql.Results{}
	res.Head.Vars = []string{"subject", "identifier"}
	for _, ref := range m.order {
		if !strings.Contains(query, sparql.IRI(m.container[ref])) {
			continue
		}
		for _, id := range m.records[ref].Objects(graph.IRI(ref), graph.DCTIdentifier) {
			res.Results.Bindings = append(res.Results.Bindings, map[string]sparql.Binding{
				"subject":    {Type: "uri", Value: ref},
				"identifier": {Type: "literal", Value: id.Value},
			})
		}
	}
	return res, nil
}

// Records returns the stored graphs by reference.
func (m *Memory) Records() map[string]*graph.Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*graph.Graph, len(m.records))
	for k, v := range m.records {
		out[k] = v
	}
	return out
}

// Calls returns the number of create and update calls that reached the store.
func (m *Memory) Calls() (creates, updates int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates, m.updates
}

// MaxInFlight returns the highest number of concurrent writes observed.
func (m *Memory) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *Memory) begin(ctx context.Context, subject string) error {
	m.mu.Lock()
	m.inFlight++
	m.maxInFlight = max(m.maxInFlight, m.inFlight)
	delay := m.delay
	var err error
	if len(m.failNext) > 0 {
		err, m.failNext = m.failNext[0], m.failNext[1:]
	} else if rerr, ok := m.rejects[subject]; ok {
		err = rerr
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.end()
			return ctx.Err()
		}
	}
	if err != nil {
		m.end()
		return err
	}
	return nil
}

func (m *Memory) end() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}
