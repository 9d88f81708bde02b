package entity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sharpframes/sharpframes-processing-service/internal/detect360"
	"github.com/sharpframes/sharpframes-processing-service/internal/projection"
)

// Mode selects how views are generated for a spherical source.
type Mode string

const (
	// ModeSkybox generates exactly six fixed cubemap-face views.
	ModeSkybox Mode = "skybox"
	// ModeCustom generates 1-12 perspective views evenly spaced in yaw.
	ModeCustom Mode = "custom"
)

// CustomConfig is the custom-rig configuration; views are regenerated
// wholesale whenever it changes.
type CustomConfig struct {
	FrameCount int     `json:"frame_count"`
	RigPitch   float64 `json:"rig_pitch"`
	StartAngle float64 `json:"start_angle"`
	FOV        float64 `json:"fov"`
}

// DefaultCustomConfig is used when a session or URL carries no explicit
// rig configuration.
var DefaultCustomConfig = CustomConfig{FrameCount: 4, RigPitch: 0, StartAngle: 0, FOV: 90}

// ConfigurationError reports a rig configuration rejected at the boundary;
// prior views remain unchanged when it is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration bounds used by the editor.
func (c CustomConfig) Validate() error {
	if c.FrameCount < 1 || c.FrameCount > 12 {
		return &ConfigurationError{Field: "frame_count", Reason: fmt.Sprintf("%d outside 1-12", c.FrameCount)}
	}
	if c.RigPitch < -45 || c.RigPitch > 45 {
		return &ConfigurationError{Field: "rig_pitch", Reason: fmt.Sprintf("%.2f outside -45..45", c.RigPitch)}
	}
	if c.FOV < 30 || c.FOV > 120 {
		return &ConfigurationError{Field: "fov", Reason: fmt.Sprintf("%.2f outside 30..120", c.FOV)}
	}
	return nil
}

// Session is one editing/processing session over a loaded video. It
// exclusively owns its views; views own their samples and ranges. The
// decoded-video handle is owned elsewhere and only borrowed by the
// analysis and export paths.
type Session struct {
	VideoKey string
	Duration float64
	Width    int
	Height   int

	Spherical bool
	Detection detect360.Result

	Mode   Mode
	Custom CustomConfig

	Views        []*View
	ActiveViewID uuid.UUID

	Processing bool
	Progress   float64
}

// NewSession creates a session for a loaded video. Spherical sessions start
// in skybox mode with the six canonical face views; planar sessions carry a
// single full-frame view.
func NewSession(videoKey string, duration float64, width, height int, detection detect360.Result, spherical bool) *Session {
	s := &Session{
		VideoKey:  videoKey,
		Duration:  duration,
		Width:     width,
		Height:    height,
		Spherical: spherical,
		Detection: detection,
		Mode:      ModeSkybox,
		Custom:    DefaultCustomConfig,
	}
	s.regenerateViews()
	return s
}

// SetMode switches between skybox and custom view generation. Switching
// regenerates all views and discards per-view analysis and range data.
func (s *Session) SetMode(mode Mode) error {
	if mode != ModeSkybox && mode != ModeCustom {
		return &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	s.Mode = mode
	s.regenerateViews()
	return nil
}

// ApplyCustomConfig validates and installs a new rig configuration and
// regenerates the custom views. On validation failure the prior views and
// configuration are untouched.
func (s *Session) ApplyCustomConfig(cfg CustomConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.Custom = cfg
	if s.Mode == ModeCustom {
		s.regenerateViews()
	}
	return nil
}

// ApplyThreshold sets the blur cutoff on every view.
func (s *Session) ApplyThreshold(threshold float64) {
	for _, v := range s.Views {
		v.Threshold = threshold
	}
}

func (s *Session) regenerateViews() {
	if !s.Spherical {
		s.Views = []*View{NewView("full_frame", 0, 0, 0)}
		s.ActiveViewID = s.Views[0].ID
		return
	}

	switch s.Mode {
	case ModeCustom:
		angles, err := projection.GenerateCustomViews(
			s.Custom.FrameCount, s.Custom.RigPitch, s.Custom.StartAngle, s.Custom.FOV)
		if err != nil {
			// Custom config is validated before it lands here.
			panic(err)
		}
		views := make([]*View, len(angles))
		for i, a := range angles {
			views[i] = NewView(fmt.Sprintf("view_%d", i+1), a.Yaw, a.Pitch, a.FOV)
		}
		s.Views = views
	default:
		views := make([]*View, len(projection.CubemapFaces))
		for i, f := range projection.CubemapFaces {
			v := NewFaceView(f.Name, f.Tag)
			v.Yaw = f.Yaw
			v.Pitch = f.Pitch
			views[i] = v
		}
		s.Views = views
	}
	s.ActiveViewID = s.Views[0].ID
}

// ActiveView returns the view selected for editing.
func (s *Session) ActiveView() *View {
	for _, v := range s.Views {
		if v.ID == s.ActiveViewID {
			return v
		}
	}
	return nil
}

// SetActiveView switches the editing focus to another view.
func (s *Session) SetActiveView(id uuid.UUID) bool {
	for _, v := range s.Views {
		if v.ID == id {
			s.ActiveViewID = id
			return true
		}
	}
	return false
}
