package resource

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Handle is a ref-counted reference into a Group. Handles for the same
// canonical name share one entry; Release drops the count and the entry
// dies at zero.
type Handle struct {
	id    string
	name  string
	data  any
	refs  int
	group *Group
}

func (h *Handle) ID() string   { return h.id }
func (h *Handle) Name() string { return h.name }
func (h *Handle) Data() any    { return h.data }
func (h *Handle) Refs() int    { return h.refs }

// Release decrements the count; the group entry is dropped at zero.
// Handles obtained with force-fresh loads are disjoint and only release
// themselves.
func (h *Handle) Release() {
	h.refs--
	if h.refs <= 0 && h.group != nil {
		delete(h.group.byName, h.name)
	}
}

// Group is a named resource cache. Not safe for concurrent use; the scene
// drives it from the render goroutine.
type Group struct {
	name   string
	byName map[string]*Handle
}

func NewGroup(name string) *Group {
	return &Group{name: name, byName: make(map[string]*Handle)}
}

func (g *Group) Name() string { return g.name }
func (g *Group) Len() int     { return len(g.byName) }

// Add inserts a programmatic resource under name and returns its handle.
// An existing entry is reused with a bumped count.
func (g *Group) Add(name string, data any) *Handle {
	if h, ok := g.byName[name]; ok {
		h.refs++
		return h
	}
	h := &Handle{id: uuid.NewString(), name: name, data: data, refs: 1, group: g}
	g.byName[name] = h
	return h
}

// Get returns the handle under name with a bumped count, or nil.
func (g *Group) Get(name string) *Handle {
	h, ok := g.byName[name]
	if !ok {
		return nil
	}
	h.refs++
	return h
}

// Load resolves path through the media registry, deduplicating by the
// cleaned path. force bypasses the cache and returns a disjoint handle
// that is not registered in the group.
func (g *Group) Load(media *Media, typ Type, path string, force bool) (*Handle, error) {
	name := filepath.Clean(path)
	if !force {
		if h, ok := g.byName[name]; ok {
			h.refs++
			return h, nil
		}
	}
	data, err := media.LoadFromFile(path, typ)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	if force {
		return &Handle{id: uuid.NewString(), name: name, data: data, refs: 1}, nil
	}
	h := &Handle{id: uuid.NewString(), name: name, data: data, refs: 1, group: g}
	g.byName[name] = h
	return h, nil
}
