package store

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/phishgraph/phishgraph/internal/model"
)

// Memory keeps entities in per-kind arenas ordered by identity.
type Memory struct {
	mu     sync.RWMutex
	arenas map[model.Kind][]model.Entity
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{arenas: make(map[model.Kind][]model.Entity)}
}

// Insert adds entities, keeping each arena sorted by identity. Inserting an
// identity that already exists is an error.
func (m *Memory) Insert(entities ...model.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		arena := m.arenas[e.Kind()]
		i, found := slices.BinarySearchFunc(arena, e, compareIdentity)
		if found {
			return fmt.Errorf("duplicate %s id %v", e.Kind(), e.Identity())
		}
		m.arenas[e.Kind()] = slices.Insert(arena, i, e)
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, kind model.Kind, filter Filter) (model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Kind: kind, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.arenas[kind] {
		if model.Matches(e, filter) {
			return e, nil
		}
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context, kind model.Kind, filter Filter) ([]model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Kind: kind, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Entity{}
	for _, e := range m.arenas[kind] {
		if model.Matches(e, filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

func compareIdentity(a, b model.Entity) int {
	switch x := a.Identity().(type) {
	case int64:
		if y, ok := b.Identity().(int64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.Identity().(string); ok {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(fmt.Sprint(a.Identity()), fmt.Sprint(b.Identity()))
}

// LoadFixture reads a YAML document whose top-level keys are entity kinds
// (table names) and whose values are lists of records.
func LoadFixture(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	m := NewMemory()
	if err := m.LoadYAML(data); err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return m, nil
}

// LoadYAML decodes a fixture document into the store.
func (m *Memory) LoadYAML(data []byte) error {
	var doc map[string][]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for name, records := range doc {
		kind := model.Kind(name)
		for i := range records {
			e, err := model.New(kind)
			if err != nil {
				return err
			}
			if err := records[i].Decode(e); err != nil {
				return fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			if err := m.Insert(e); err != nil {
				return err
			}
		}
	}
	return nil
}
