package projection

import "image"

// Face is one of the six canonical cubemap faces. Tags follow the axis the
// face looks down under the package's coordinate conventions (+Z forward,
// +Y up, longitude = atan2(x, z)); Yaw/Pitch give the equivalent camera
// orientation in degrees.
type Face struct {
	Tag   string
	Name  string
	Yaw   float64
	Pitch float64
}

// CubemapFaces lists the six faces in px/nx/py/ny/pz/nz order. A 90 degree
// fov camera at each face's Yaw/Pitch sees exactly that face.
var CubemapFaces = [6]Face{
	{Tag: "px", Name: "right", Yaw: 90},
	{Tag: "nx", Name: "left", Yaw: 270},
	{Tag: "py", Name: "top", Pitch: 90},
	{Tag: "ny", Name: "bottom", Pitch: -90},
	{Tag: "pz", Name: "front", Yaw: 0},
	{Tag: "nz", Name: "back", Yaw: 180},
}

// FaceByTag resolves a face tag (px, nx, py, ny, pz, nz).
func FaceByTag(tag string) (Face, bool) {
	for _, f := range CubemapFaces {
		if f.Tag == tag {
			return f, true
		}
	}
	return Face{}, false
}

// faceDirection maps normalized device coordinates nx,ny in [-1,1] (ny
// positive toward the bottom image row) to an unnormalized direction for
// the given face. The six mappings are fixed so adjacent face edges share
// rays.
func faceDirection(tag string, nx, ny float64) (x, y, z float64) {
	switch tag {
	case "pz":
		return nx, -ny, 1
	case "nz":
		return -nx, -ny, -1
	case "px":
		return 1, -ny, -nx
	case "nx":
		return -1, -ny, nx
	case "py":
		return nx, 1, ny
	case "ny":
		return nx, -1, -ny
	}
	return 0, 0, 0
}

// ExtractCubemapFace renders one size x size cubemap face from the
// equirectangular source. Each output pixel is computed independently from
// read-only input.
func ExtractCubemapFace(src *image.RGBA, tag string, size int) (*image.RGBA, error) {
	if err := checkSource("extract cubemap face", src); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, geometryErr("extract cubemap face", "face size %d", size)
	}
	if _, ok := FaceByTag(tag); !ok {
		return nil, geometryErr("extract cubemap face", "unknown face tag %q", tag)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	inv := 2 / float64(size)
	for py := 0; py < size; py++ {
		ny := (float64(py)+0.5)*inv - 1
		for px := 0; px < size; px++ {
			nx := (float64(px)+0.5)*inv - 1

			x, y, z := faceDirection(tag, nx, ny)
			u, v := EquirectUV(normalize(x, y, z))
			sampleBilinear(src, u, v, dst.Pix[py*dst.Stride+px*4:])
		}
	}
	return dst, nil
}
