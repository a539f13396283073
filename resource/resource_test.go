package resource

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/core"
)

func TestGroupRefCounting(t *testing.T) {
	g := NewGroup("materials")
	h1 := g.Add("stone", "stone-data")
	h2 := g.Get("stone")

	require.Same(t, h1, h2)
	assert.Equal(t, 2, h1.Refs())

	h2.Release()
	assert.Equal(t, 1, g.Len())
	h1.Release()
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, g.Get("stone"))
}

func TestGroupLoadDedupAndForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.raw")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	loads := 0
	m := NewMedia()
	m.Register(TypeUser, 0, ".raw", func(r io.Reader, name string) (any, error) {
		loads++
		data, err := io.ReadAll(r)
		return string(data), err
	})

	g := NewGroup("blobs")
	h1, err := g.Load(m, TypeUser, path, false)
	require.NoError(t, err)
	h2, err := g.Load(m, TypeUser, path, false)
	require.NoError(t, err)

	assert.Same(t, h1, h2, "same canonical name shares the handle")
	assert.Equal(t, 1, loads)
	assert.Equal(t, "payload", h1.Data())

	h3, err := g.Load(m, TypeUser, path, true)
	require.NoError(t, err)
	assert.NotSame(t, h1, h3, "force load returns a disjoint handle")
	assert.Equal(t, 2, loads)

	h3.Release()
	assert.Equal(t, 1, g.Len(), "disjoint handle never touches the cache")
}

func TestMediaDispatchOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(path, []byte{0x11, 0x22, 0x33, 0x44, 0xAA}, 0o644))

	m := NewMedia()
	var hit string
	m.Register(TypeUser, 0, ".xyz", func(r io.Reader, name string) (any, error) {
		hit = "ext"
		return nil, nil
	})
	m.Register(TypeUser+1, 0x44332211, "", func(r io.Reader, name string) (any, error) {
		hit = "magic"
		return nil, nil
	})

	_, err := m.LoadFromFile(path, TypeUser)
	require.NoError(t, err)
	assert.Equal(t, "magic", hit, "magic beats extension")
}

func TestMediaMissingLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unknown.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	m := NewMedia()
	_, err := m.LoadFromFile(path, TypeUser)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = m.LoadFromFile(filepath.Join(dir, "absent.bin"), TypeUser)
	assert.ErrorIs(t, err, core.ErrFileNotFound)
}

func TestTextureLoaderScalesToPow2(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 6))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data, err := LoadTexture(&buf, "test.png")
	require.NoError(t, err)
	tex := data.(*Texture)
	assert.Equal(t, 16, tex.Width)
	assert.Equal(t, 8, tex.Height)
	assert.Len(t, tex.Pixels, 16*8*4)
}

func TestTextureLoaderRegistration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m := NewMedia()
	RegisterTextureLoaders(m)
	g := NewGroup("textures")
	h, err := g.Load(m, TypeTexture, path, false)
	require.NoError(t, err)
	tex := h.Data().(*Texture)
	assert.Equal(t, 4, tex.Width)
}
