package resource

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/scengine/scengine/core"
)

// Texture is decoded RGBA pixel data, scaled to power-of-two dimensions
// so legacy targets accept it.
type Texture struct {
	Width  int
	Height int
	Pixels []uint8
}

const (
	pngMagic  = 0x474e5089 // "\x89PNG" little-endian
	jpegMagic = 0xe0ffd8ff
)

// RegisterTextureLoaders wires the stdlib image codecs into a media
// registry under TypeTexture.
func RegisterTextureLoaders(m *Media) {
	m.Register(TypeTexture, pngMagic, ".png", LoadTexture)
	m.Register(TypeTexture, jpegMagic, ".jpg,.jpeg", LoadTexture)
}

// LoadTexture decodes an image stream and rescales it to the next
// power-of-two size when needed.
func LoadTexture(r io.Reader, name string) (any, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, core.ErrBadFormat)
	}
	b := img.Bounds()
	w, h := nextPow2(b.Dx()), nextPow2(b.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return &Texture{Width: w, Height: h, Pixels: dst.Pix}, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
