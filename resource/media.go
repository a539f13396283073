// Package resource provides the media loader registry and the ref-counted
// resource cache the scene resolves shaders, materials and textures
// through.
package resource

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/scengine/scengine/core"
)

// Type identifies a media category. Clients register their own types
// above TypeUser.
type Type int

const (
	TypeGeometry Type = iota
	TypeTexture
	TypeShader
	TypeMaterial
	TypeSkeleton
	TypeAnimation
	TypeUser Type = 64
)

// LoaderFunc parses one media stream. The name is the canonical resource
// name, usable for error context and relative lookups.
type LoaderFunc func(r io.Reader, name string) (any, error)

type loaderEntry struct {
	typ   Type
	magic uint32
	exts  []string
	fn    LoaderFunc
}

// Media maps (type, extension, magic number) to loader callbacks. Loading
// by filename resolves a loader by magic first, then by extension, then
// by the explicit type.
type Media struct {
	loaders []loaderEntry
}

func NewMedia() *Media { return &Media{} }

// Register adds a loader. magic 0 means the format has no magic number;
// exts is a comma-separated extension list like ".ffm,.mesh".
func (m *Media) Register(typ Type, magic uint32, exts string, fn LoaderFunc) {
	entry := loaderEntry{typ: typ, magic: magic, fn: fn}
	for _, e := range strings.Split(exts, ",") {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			entry.exts = append(entry.exts, e)
		}
	}
	m.loaders = append(m.loaders, entry)
}

// LoadFromFile opens path and dispatches to the best matching loader.
func (m *Media) LoadFromFile(path string, typ Type) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, core.ErrFileNotFound)
		}
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(4)
	var magic uint32
	if len(head) == 4 {
		magic = binary.LittleEndian.Uint32(head)
	}
	ext := strings.ToLower(filepath.Ext(path))

	if ld := m.findByMagic(magic); ld != nil {
		return ld.fn(br, path)
	}
	if ld := m.findByExt(ext); ld != nil {
		return ld.fn(br, path)
	}
	if ld := m.findByType(typ); ld != nil {
		return ld.fn(br, path)
	}
	return nil, fmt.Errorf("no loader for %q (type %d): %w", path, typ, core.ErrNotFound)
}

func (m *Media) findByMagic(magic uint32) *loaderEntry {
	if magic == 0 {
		return nil
	}
	for i := range m.loaders {
		if m.loaders[i].magic == magic {
			return &m.loaders[i]
		}
	}
	return nil
}

func (m *Media) findByExt(ext string) *loaderEntry {
	if ext == "" {
		return nil
	}
	for i := range m.loaders {
		for _, e := range m.loaders[i].exts {
			if e == ext {
				return &m.loaders[i]
			}
		}
	}
	return nil
}

func (m *Media) findByType(typ Type) *loaderEntry {
	for i := range m.loaders {
		if m.loaders[i].typ == typ {
			return &m.loaders[i]
		}
	}
	return nil
}
