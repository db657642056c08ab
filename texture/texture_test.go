package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestFitExtent(t *testing.T) {
	cases := []struct{ n, limit, want int }{
		{1, 2048, 1},
		{3, 2048, 4},
		{4, 2048, 4},
		{5, 2048, 8},
		{3000, 1024, 1024},
		{1000, 1000, 512},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, fitExtent(c.n, c.limit), "n=%d limit=%d", c.n, c.limit)
	}
}

func TestDecodeFormats(t *testing.T) {
	src := checker(4, 2)
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, enc(&buf))
			img, err := Decode(&buf, 0)
			require.NoError(t, err)
			assert.EqualValues(t, 4, img.Width)
			assert.EqualValues(t, 2, img.Height)
			assert.Len(t, img.Pix, 4*2*4)
			assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[:4])
			assert.Equal(t, []byte{0, 0, 255, 255}, img.Pix[4:8])
		})
	}
}

func TestFromImageResizes(t *testing.T) {
	img, err := FromImage(checker(3, 5), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, img.Width)
	assert.EqualValues(t, 8, img.Height)
	assert.EqualValues(t, 16, img.BytesPerRow())
	assert.Len(t, img.Pix, 4*8*4)

	img, err = FromImage(checker(64, 8), 16)
	require.NoError(t, err)
	assert.EqualValues(t, 16, img.Width)
	assert.EqualValues(t, 8, img.Height)

	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")), 0)
	assert.Error(t, err)
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, []byte{128, 128, 255, 255}, Fallback(rev2.NormalTexture).Pix)
	for _, slot := range []rev2.Textures{rev2.BaseColorTexture, rev2.RoughnessTexture, rev2.MetallicTexture, rev2.AOTexture} {
		f := Fallback(slot)
		assert.EqualValues(t, 1, f.Width)
		assert.Equal(t, []byte{255, 255, 255, 255}, f.Pix, slot.String())
	}
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checker(2, 2)))
	require.NoError(t, f.Close())

	set, err := LoadSet(map[rev2.Textures]string{
		rev2.BaseColorTexture: path,
		rev2.AOTexture:        filepath.Join(dir, "missing.png"),
	}, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.EqualValues(t, 2, set[rev2.BaseColorTexture].Width)
	assert.Equal(t, Fallback(rev2.AOTexture), set[rev2.AOTexture])
	assert.Equal(t, Fallback(rev2.NormalTexture), set[rev2.NormalTexture])
}
