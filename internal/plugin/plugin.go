// Package plugin describes the plugin registry collaborator.
package plugin

import (
	"cmp"
	"iter"
	"slices"
)

// Descriptor is the metadata of one loaded plugin.
type Descriptor struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Homepage    string   `yaml:"homepage"`
	Authors     []string `yaml:"authors"`
	Version     string   `yaml:"version"`
}

// Registry iterates loaded plugins keyed by registry name. Iteration order is
// unspecified.
type Registry interface {
	All() iter.Seq2[string, Descriptor]
}

// Static is a Registry backed by a map.
type Static map[string]Descriptor

func (s Static) All() iter.Seq2[string, Descriptor] {
	return func(yield func(string, Descriptor) bool) {
		for k, d := range s {
			if !yield(k, d) {
				return
			}
		}
	}
}

// FromList builds a Static registry keyed by descriptor name.
func FromList(descs []Descriptor) Static {
	s := make(Static, len(descs))
	for _, d := range descs {
		s[d.Name] = d
	}
	return s
}

// Find returns the plugin whose descriptor name equals name.
func Find(r Registry, name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	for _, d := range r.All() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Sorted returns every plugin ordered by descriptor name ascending. Plugins
// sharing a name are ordered by registry key.
func Sorted(r Registry) []Descriptor {
	if r == nil {
		return nil
	}
	type entry struct {
		key  string
		desc Descriptor
	}
	var entries []entry
	for k, d := range r.All() {
		entries = append(entries, entry{k, d})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.desc.Name, b.desc.Name), cmp.Compare(a.key, b.key))
	})
	out := make([]Descriptor, len(entries))
	for i, e := range entries {
		out[i] = e.desc
	}
	return out
}
