// Package projection converts between equirectangular source pixels and
// planar output pixels: cubemap face extraction and arbitrary yaw/pitch/fov
// perspective extraction over a spherical video frame. All functions are
// stateless and deterministic.
package projection

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r3"
)

// GeometryError reports degenerate projection input (zero-size source,
// non-finite angles). Extractions fail loudly instead of producing
// NaN-filled output.
type GeometryError struct {
	Op     string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("projection: %s: %s", e.Op, e.Reason)
}

func geometryErr(op, format string, args ...any) error {
	return &GeometryError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// SphericalToCartesian maps longitude/latitude (radians, lon in [-pi,pi],
// lat in [-pi/2,pi/2]) to a unit direction vector. Longitude 0 looks down
// +Z, positive latitude is up (+Y).
func SphericalToCartesian(lon, lat float64) r3.Vector {
	return r3.Vector{
		X: math.Cos(lat) * math.Sin(lon),
		Y: math.Sin(lat),
		Z: math.Cos(lat) * math.Cos(lon),
	}
}

// EquirectUV maps a unit direction vector to equirectangular texture
// coordinates in [0,1]^2. Row 0 (v=0) is the top of the image, the north
// pole.
func EquirectUV(d r3.Vector) (u, v float64) {
	lon := math.Atan2(d.X, d.Z)
	lat := math.Asin(clamp(d.Y, -1, 1))
	u = (lon/math.Pi + 1) / 2
	v = 1 - (lat/(math.Pi/2)+1)/2
	return u, v
}

// ViewAngles is a virtual camera orientation into the spherical source.
type ViewAngles struct {
	Yaw   float64 // degrees, wraps mod 360
	Pitch float64 // degrees
	FOV   float64 // degrees
}

// GenerateCustomViews produces frameCount cameras evenly spaced in yaw
// starting at startAngle, all sharing rigPitch and fov. The sequence is
// fully determined by its inputs.
func GenerateCustomViews(frameCount int, rigPitch, startAngle, fov float64) ([]ViewAngles, error) {
	if frameCount <= 0 {
		return nil, geometryErr("generate custom views", "frame count %d must be positive", frameCount)
	}
	if !finite(rigPitch) || !finite(startAngle) || !finite(fov) {
		return nil, geometryErr("generate custom views", "non-finite rig angles")
	}

	step := 360.0 / float64(frameCount)
	views := make([]ViewAngles, frameCount)
	for i := range views {
		views[i] = ViewAngles{
			Yaw:   wrapDegrees(startAngle + float64(i)*step),
			Pitch: rigPitch,
			FOV:   fov,
		}
	}
	return views, nil
}

// ExtractPerspective renders a w x h pinhole view of the equirectangular
// source. Rays are rotated by pitch about the X axis first, then by yaw
// about the Y axis; this order must match between interactive preview and
// export or the angles drift apart.
func ExtractPerspective(src *image.RGBA, yaw, pitch, fov float64, w, h int) (*image.RGBA, error) {
	if err := checkSource("extract perspective", src); err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, geometryErr("extract perspective", "output size %dx%d", w, h)
	}
	if !finite(yaw) || !finite(pitch) || !finite(fov) {
		return nil, geometryErr("extract perspective", "non-finite view angles")
	}
	if fov <= 0 || fov >= 180 {
		return nil, geometryErr("extract perspective", "fov %.2f out of range (0,180)", fov)
	}

	focal := float64(w) / (2 * math.Tan(radians(fov)/2))
	sinP, cosP := math.Sincos(radians(pitch))
	sinY, cosY := math.Sincos(radians(yaw))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		cy := float64(h)/2 - float64(py) - 0.5
		for px := 0; px < w; px++ {
			cx := float64(px) - float64(w)/2 + 0.5

			// Camera ray, then pitch (X axis, positive looks up),
			// then yaw (Y axis, positive toward +X).
			y := cy*cosP + focal*sinP
			z := -cy*sinP + focal*cosP
			x := cx*cosY + z*sinY
			z = -cx*sinY + z*cosY

			u, v := EquirectUV(r3.Vector{X: x, Y: y, Z: z}.Normalize())
			sampleBilinear(src, u, v, dst.Pix[py*dst.Stride+px*4:])
		}
	}
	return dst, nil
}

func checkSource(op string, src *image.RGBA) error {
	if src == nil || src.Bounds().Dx() == 0 || src.Bounds().Dy() == 0 {
		return geometryErr(op, "empty source image")
	}
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func wrapDegrees(deg float64) float64 {
	wrapped := math.Mod(deg, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
