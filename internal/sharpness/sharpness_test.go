package sharpness

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/cell+y/cell)%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// boxBlur is a 3x3 edge-clamped box average, enough to knock the high
// frequencies out of a checkerboard.
func boxBlur(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl, a int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 {
						sx = 0
					}
					if sx >= w {
						sx = w - 1
					}
					if sy < 0 {
						sy = 0
					}
					if sy >= h {
						sy = h - 1
					}
					c := src.RGBAAt(sx, sy)
					r += int(c.R)
					g += int(c.G)
					bl += int(c.B)
					a += int(c.A)
				}
			}
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(r / 9), G: uint8(g / 9), B: uint8(bl / 9), A: uint8(a / 9),
			})
		}
	}
	return dst
}

func TestScoreUniformImageIsZero(t *testing.T) {
	for _, size := range []int{3, 5, 32} {
		score, err := Score(uniform(size, size, color.RGBA{R: 90, G: 120, B: 30, A: 255}))
		require.NoError(t, err)
		assert.Equal(t, 0.0, score, "size %d", size)
	}
}

func TestScoreCheckerboardSharperThanBlurred(t *testing.T) {
	board := checkerboard(32, 32, 2)
	blurred := boxBlur(board)

	sharp, err := Score(board)
	require.NoError(t, err)
	soft, err := Score(blurred)
	require.NoError(t, err)

	assert.Greater(t, sharp, soft)
	assert.Greater(t, sharp, 0.0)
}

func TestScoreReproducible(t *testing.T) {
	board := checkerboard(24, 16, 3)
	a, err := Score(board)
	require.NoError(t, err)
	b, err := Score(board)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScoreRejectsTinyImages(t *testing.T) {
	_, err := Score(uniform(2, 8, color.RGBA{A: 255}))
	assert.ErrorIs(t, err, ErrTooSmall)
	_, err = Score(uniform(8, 2, color.RGBA{A: 255}))
	assert.ErrorIs(t, err, ErrTooSmall)
	_, err = Score(nil)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestScoreIgnoresAlpha(t *testing.T) {
	opaque := uniform(8, 8, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	transparent := uniform(8, 8, color.RGBA{R: 50, G: 50, B: 50, A: 10})
	// Vary alpha across one of them to prove it cannot leak into luma.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := transparent.RGBAAt(x, y)
			c.A = uint8(x * 30)
			transparent.SetRGBA(x, y, c)
		}
	}

	a, err := Score(opaque)
	require.NoError(t, err)
	b, err := Score(transparent)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
