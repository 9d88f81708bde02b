package analysis

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

func exceedsEdge(img *image.RGBA, maxEdge int) bool {
	b := img.Bounds()
	return maxEdge > 0 && (b.Dx() > maxEdge || b.Dy() > maxEdge)
}

// downscale resizes so the longer edge equals maxEdge, preserving aspect
// ratio. Analysis never needs more than approximate bilinear quality.
func downscale(img *image.RGBA, maxEdge int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = h * maxEdge / w
	} else {
		nh = maxEdge
		nw = w * maxEdge / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
