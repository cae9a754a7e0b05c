package store

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Memory is an in-process Store for development and tests.
// It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	closed    bool
	junctions map[roadnet.NodeID]junctionDoc
	features  map[roadnet.NodeID][]featureDoc
	edges     map[string]edgeDoc
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		junctions: make(map[roadnet.NodeID]junctionDoc),
		features:  make(map[roadnet.NodeID][]featureDoc),
		edges:     make(map[string]edgeDoc),
	}
}

// PutJunction implements Store.
func (m *Memory) PutJunction(_ context.Context, r *junction.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.junctions[r.Node] = toJunctionDoc(r)
	return nil
}

// AppendNodeFeature implements Store.
func (m *Memory) AppendNodeFeature(_ context.Context, id roadnet.NodeID, f odd.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	doc := toFeatureDoc(f)
	for _, existing := range m.features[id] {
		if reflect.DeepEqual(existing, doc) {
			return nil
		}
	}
	m.features[id] = append(m.features[id], doc)
	return nil
}

// PutEdge implements Store.
func (m *Memory) PutEdge(_ context.Context, e *roadnet.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	doc := toEdgeDoc(e)
	m.edges[doc.ID] = doc
	return nil
}

// NodeFeatures implements Store.
func (m *Memory) NodeFeatures(_ context.Context) (map[roadnet.NodeID][]odd.Feature, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make(map[roadnet.NodeID][]odd.Feature, len(m.features))
	for id, docs := range m.features {
		for _, doc := range docs {
			if f, ok := doc.toFeature(); ok {
				out[id] = append(out[id], f)
			}
		}
	}
	return out, nil
}

// Edges implements Store.
func (m *Memory) Edges(_ context.Context) ([]*roadnet.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.edges))
	for k := range m.edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*roadnet.Edge, 0, len(keys))
	for _, k := range keys {
		e, err := m.edges[k].toEdge()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Junctions implements Store.
func (m *Memory) Junctions(_ context.Context) ([]*junction.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	ids := make([]roadnet.NodeID, 0, len(m.junctions))
	for id := range m.junctions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*junction.Result, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.junctions[id].toResult())
	}
	return out, nil
}

// Drop implements Store.
func (m *Memory) Drop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.junctions = make(map[roadnet.NodeID]junctionDoc)
	m.features = make(map[roadnet.NodeID][]featureDoc)
	m.edges = make(map[string]edgeDoc)
	return nil
}

// Close implements Store.
func (m *Memory) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
