package entity

import (
	"github.com/google/uuid"
)

// FrameSample is one sharpness measurement. Samples within a view are
// ordered by Time ascending; the analysis driver guarantees order by
// construction.
type FrameSample struct {
	Time     float64 `json:"time"`
	Variance float64 `json:"variance"`
}

// View is one rectilinear (or cubemap-face) camera into the spherical
// source. A non-empty Face marks a fixed skybox face; free-form yaw/pitch/
// fov editing and Face are mutually exclusive.
type View struct {
	ID        uuid.UUID
	Name      string
	Face      string // cubemap face tag, empty for free-form views
	Yaw       float64
	Pitch     float64
	FOV       float64
	Threshold float64
	Samples   []FrameSample
	Ranges    []*TimelineRange

	selectedRange uuid.UUID
}

// NewView creates a free-form perspective view.
func NewView(name string, yaw, pitch, fov float64) *View {
	return &View{
		ID:   uuid.New(),
		Name: name,
		Yaw:  yaw,
		Pitch: pitch,
		FOV:  fov,
	}
}

// NewFaceView creates a fixed skybox-face view.
func NewFaceView(name, faceTag string) *View {
	return &View{
		ID:   uuid.New(),
		Name: name,
		Face: faceTag,
		FOV:  90,
	}
}

// ResetSamples discards prior analysis data. Re-running analysis replaces,
// never appends.
func (v *View) ResetSamples() {
	v.Samples = v.Samples[:0]
}

// AppendSample records a measurement. Callers must append in non-decreasing
// time order.
func (v *View) AppendSample(s FrameSample) {
	v.Samples = append(v.Samples, s)
}

// MaxVariance returns the largest observed variance, or 0 with no samples.
func (v *View) MaxVariance() float64 {
	var maxVar float64
	for _, s := range v.Samples {
		if s.Variance > maxVar {
			maxVar = s.Variance
		}
	}
	return maxVar
}
