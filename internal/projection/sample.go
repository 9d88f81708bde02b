package projection

import (
	"image"
	"math"

	"github.com/golang/geo/r3"
)

func normalize(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}.Normalize()
}

// sampleBilinear reads the source at texture coordinates u,v in [0,1]^2
// with 4-neighbor weighted averaging, edge-clamped, and writes the RGBA
// result into out[0:4].
func sampleBilinear(src *image.RGBA, u, v float64, out []byte) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	sx := u * float64(w-1)
	sy := v * float64(h-1)

	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := sx - float64(x0)
	fy := sy - float64(y0)

	x0 = clampInt(x0, 0, w-1)
	y0 = clampInt(y0, 0, h-1)
	x1 := clampInt(x0+1, 0, w-1)
	y1 := clampInt(y0+1, 0, h-1)

	p00 := src.Pix[src.PixOffset(b.Min.X+x0, b.Min.Y+y0):]
	p10 := src.Pix[src.PixOffset(b.Min.X+x1, b.Min.Y+y0):]
	p01 := src.Pix[src.PixOffset(b.Min.X+x0, b.Min.Y+y1):]
	p11 := src.Pix[src.PixOffset(b.Min.X+x1, b.Min.Y+y1):]

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	for c := 0; c < 4; c++ {
		val := float64(p00[c])*w00 + float64(p10[c])*w10 +
			float64(p01[c])*w01 + float64(p11[c])*w11
		out[c] = byte(math.Round(val))
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
