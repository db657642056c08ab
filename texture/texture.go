// Package texture decodes image files into RGBA8 texel data sized for upload.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxExtent bounds both dimensions when no limit is given.
const DefaultMaxExtent = 2048

var ErrEmptyImage = errors.New("texture: image has no pixels")

// Image is tightly packed RGBA8 with power-of-two dimensions.
type Image struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// BytesPerRow is the row pitch of Pix.
func (i *Image) BytesPerRow() uint32 { return i.Width * 4 }

// Load decodes a png, jpeg, bmp, tiff or webp file.
func Load(path string, maxExtent int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f, maxExtent)
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", path, err)
	}
	return img, nil
}

func Decode(r io.Reader, maxExtent int) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(src, maxExtent)
}

// FromImage converts src to RGBA and rescales it to the nearest power-of-two
// extent not larger than maxExtent.
func FromImage(src image.Image, maxExtent int) (*Image, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	if maxExtent <= 0 {
		maxExtent = DefaultMaxExtent
	}
	w, h := fitExtent(b.Dx(), maxExtent), fitExtent(b.Dy(), maxExtent)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return &Image{Width: uint32(w), Height: uint32(h), Pix: dst.Pix}, nil
}

// fitExtent rounds n up to a power of two, then clamps to the largest power
// of two not above limit.
func fitExtent(n, limit int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	for p > limit && p > 1 {
		p >>= 1
	}
	return p
}

func Solid(c color.RGBA) *Image {
	return &Image{Width: 1, Height: 1, Pix: []byte{c.R, c.G, c.B, c.A}}
}

// Fallback is the 1x1 texture bound to a slot with no file. Each value leaves
// the material factor it multiplies unchanged.
func Fallback(slot rev2.Textures) *Image {
	if slot == rev2.NormalTexture {
		return Solid(color.RGBA{R: 128, G: 128, B: 255, A: 255})
	}
	return Solid(color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// LoadSet loads the texture for every slot, using Fallback where paths has no
// entry. A failed file is reported and replaced by its fallback.
func LoadSet(paths map[rev2.Textures]string, maxExtent int) ([rev2.TextureCount]*Image, error) {
	var out [rev2.TextureCount]*Image
	var errs []error
	for i, slot := range rev2.TextureSlots {
		out[i] = Fallback(slot)
		path, ok := paths[slot]
		if !ok || path == "" {
			continue
		}
		img, err := Load(path, maxExtent)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", slot, err))
			continue
		}
		out[i] = img
	}
	return out, errors.Join(errs...)
}
