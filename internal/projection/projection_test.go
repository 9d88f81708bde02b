package projection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientEquirect builds a w x h source whose red channel ramps with x and
// green channel ramps with y, so sampled positions are recoverable.
func gradientEquirect(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func TestSphericalUVRoundTrip(t *testing.T) {
	lons := []float64{-math.Pi + 1e-9, -math.Pi / 2, -0.3, 0, 0.3, math.Pi / 2, math.Pi - 1e-9}
	lats := []float64{-math.Pi/2 + 1e-6, -math.Pi / 4, 0, math.Pi / 4, math.Pi/2 - 1e-6}

	for _, lon := range lons {
		for _, lat := range lats {
			u, v := EquirectUV(SphericalToCartesian(lon, lat))
			assert.InDelta(t, (lon/math.Pi+1)/2, u, 1e-9, "u for lon=%v lat=%v", lon, lat)
			assert.InDelta(t, 1-(lat/(math.Pi/2)+1)/2, v, 1e-9, "v for lon=%v lat=%v", lon, lat)
		}
	}
}

func TestSphericalUVPoles(t *testing.T) {
	// Longitude is degenerate at the poles; only v is meaningful there.
	_, v := EquirectUV(SphericalToCartesian(0, math.Pi/2))
	assert.InDelta(t, 0.0, v, 1e-9)
	_, v = EquirectUV(SphericalToCartesian(0, -math.Pi/2))
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestExtractPerspectiveSizeAndCenter(t *testing.T) {
	src := gradientEquirect(101, 51)

	out, err := ExtractPerspective(src, 0, 0, 90, 101, 101)
	require.NoError(t, err)
	assert.Equal(t, 101, out.Bounds().Dx())
	assert.Equal(t, 101, out.Bounds().Dy())

	// The center ray of a yaw=0 pitch=0 camera lands exactly on u=0.5,
	// v=0.5, which is pixel (50,25) of the 101x51 source.
	want := src.RGBAAt(50, 25)
	got := out.RGBAAt(50, 50)
	assert.InDelta(t, float64(want.R), float64(got.R), 1.5)
	assert.InDelta(t, float64(want.G), float64(got.G), 1.5)
}

func TestExtractPerspectiveRejectsBadInput(t *testing.T) {
	src := gradientEquirect(8, 4)

	var geomErr *GeometryError

	_, err := ExtractPerspective(nil, 0, 0, 90, 10, 10)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractPerspective(src, 0, 0, 90, 0, 10)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractPerspective(src, math.NaN(), 0, 90, 10, 10)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractPerspective(src, 0, 0, 0, 10, 10)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractPerspective(src, 0, 0, 180, 10, 10)
	require.ErrorAs(t, err, &geomErr)
}

func TestExtractCubemapFaceSizes(t *testing.T) {
	src := gradientEquirect(64, 32)
	for _, face := range CubemapFaces {
		out, err := ExtractCubemapFace(src, face.Tag, 16)
		require.NoError(t, err, face.Tag)
		assert.Equal(t, 16, out.Bounds().Dx(), face.Tag)
		assert.Equal(t, 16, out.Bounds().Dy(), face.Tag)
	}
}

func TestExtractCubemapFaceRejectsBadInput(t *testing.T) {
	src := gradientEquirect(64, 32)
	var geomErr *GeometryError

	_, err := ExtractCubemapFace(src, "px", 0)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractCubemapFace(src, "zz", 16)
	require.ErrorAs(t, err, &geomErr)

	_, err = ExtractCubemapFace(image.NewRGBA(image.Rect(0, 0, 0, 0)), "px", 16)
	require.ErrorAs(t, err, &geomErr)
}

func TestFaceCenterRaysMatchNominalAngles(t *testing.T) {
	for _, face := range CubemapFaces {
		x, y, z := faceDirection(face.Tag, 0, 0)
		u, v := EquirectUV(normalize(x, y, z))

		pitch := (1 - 2*v) * 90
		assert.InDelta(t, face.Pitch, pitch, 1e-9, face.Tag)

		// Yaw is degenerate for the polar faces.
		if face.Tag == "py" || face.Tag == "ny" {
			continue
		}
		yaw := wrapDegrees((2*u - 1) * 180)
		assert.InDelta(t, face.Yaw, yaw, 1e-9, face.Tag)
	}
}

func TestFaceEdgesShareRays(t *testing.T) {
	// The right edge of the front face and the left edge of the right face
	// must look down the same direction, otherwise exported faces seam.
	fx, fy, fz := faceDirection("pz", 1, 0.25)
	rx, ry, rz := faceDirection("px", -1, 0.25)
	f := normalize(fx, fy, fz)
	r := normalize(rx, ry, rz)
	assert.InDelta(t, f.X, r.X, 1e-12)
	assert.InDelta(t, f.Y, r.Y, 1e-12)
	assert.InDelta(t, f.Z, r.Z, 1e-12)
}

func TestGenerateCustomViews(t *testing.T) {
	views, err := GenerateCustomViews(4, 0, 0, 90)
	require.NoError(t, err)
	require.Len(t, views, 4)

	wantYaws := []float64{0, 90, 180, 270}
	for i, v := range views {
		assert.Equal(t, wantYaws[i], v.Yaw)
		assert.Equal(t, 0.0, v.Pitch)
		assert.Equal(t, 90.0, v.FOV)
	}
}

func TestGenerateCustomViewsWrapsYaw(t *testing.T) {
	views, err := GenerateCustomViews(3, -10, 300, 75)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.InDelta(t, 300.0, views[0].Yaw, 1e-9)
	assert.InDelta(t, 60.0, views[1].Yaw, 1e-9)
	assert.InDelta(t, 180.0, views[2].Yaw, 1e-9)
}

func TestGenerateCustomViewsRejectsBadCount(t *testing.T) {
	var geomErr *GeometryError
	_, err := GenerateCustomViews(0, 0, 0, 90)
	require.ErrorAs(t, err, &geomErr)
	_, err = GenerateCustomViews(-3, 0, 0, 90)
	require.ErrorAs(t, err, &geomErr)
}

func TestGenerateCustomViewsDeterministic(t *testing.T) {
	a, err := GenerateCustomViews(7, 12.5, 33.3, 66)
	require.NoError(t, err)
	b, err := GenerateCustomViews(7, 12.5, 33.3, 66)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
