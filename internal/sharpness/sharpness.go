// Package sharpness scores frame blur via the variance of the discrete
// Laplacian over image luma. Sharper frames produce higher-variance edge
// response; the score is reproducible bit-for-bit for identical pixels.
package sharpness

import (
	"errors"
	"image"
)

// ErrTooSmall is returned for inputs below 3x3, where the interior
// Laplacian is undefined.
var ErrTooSmall = errors.New("sharpness: image must be at least 3x3")

// Score computes the Laplacian-variance sharpness of an RGBA frame.
//
// Luma is Rec.601 (0.299R + 0.587G + 0.114B, alpha ignored). The 4-neighbor
// Laplacian north+south+west+east-4*center is evaluated over interior
// pixels only; the 1-pixel border contributes to neighbor reads but never
// to the mean or variance. The returned value is the population variance
// of that response.
func Score(img *image.RGBA) (float64, error) {
	if img == nil {
		return 0, ErrTooSmall
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0, ErrTooSmall
	}

	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			gray[y*w+x] = 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
		}
	}

	n := (w - 2) * (h - 2)
	lap := make([]float64, 0, n)
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			l := gray[i-w] + gray[i+w] + gray[i-1] + gray[i+1] - 4*gray[i]
			lap = append(lap, l)
			sum += l
		}
	}

	mean := sum / float64(n)
	var sqDev float64
	for _, l := range lap {
		d := l - mean
		sqDev += d * d
	}
	return sqDev / float64(n), nil
}
