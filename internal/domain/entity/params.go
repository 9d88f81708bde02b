package entity

import (
	"net/url"
	"strconv"
)

// EditorParams is the shareable editor state round-tripped through URL
// query parameters for the 360 editor.
type EditorParams struct {
	Mode   Mode
	Custom CustomConfig
}

// ParseEditorParams reads mode/frames/pitch/angle/fov from query values.
// Parsing is tolerant: missing or invalid parameters fall back to defaults
// so a mangled URL still opens an editor.
func ParseEditorParams(q url.Values) EditorParams {
	p := EditorParams{Mode: ModeSkybox, Custom: DefaultCustomConfig}

	if q.Get("mode") == string(ModeCustom) {
		p.Mode = ModeCustom
	}

	if n, err := strconv.Atoi(q.Get("frames")); err == nil && n >= 1 && n <= 12 {
		p.Custom.FrameCount = n
	}
	if f, err := strconv.ParseFloat(q.Get("pitch"), 64); err == nil && f >= -45 && f <= 45 {
		p.Custom.RigPitch = f
	}
	if f, err := strconv.ParseFloat(q.Get("angle"), 64); err == nil && f >= 0 && f <= 360 {
		p.Custom.StartAngle = f
	}
	if f, err := strconv.ParseFloat(q.Get("fov"), 64); err == nil && f >= 30 && f <= 120 {
		p.Custom.FOV = f
	}

	return p
}

// Values serializes the parameters. Mode is always emitted; the rig
// parameters only in custom mode.
func (p EditorParams) Values() url.Values {
	q := url.Values{}
	q.Set("mode", string(p.Mode))
	if p.Mode == ModeCustom {
		q.Set("frames", strconv.Itoa(p.Custom.FrameCount))
		q.Set("pitch", strconv.FormatFloat(p.Custom.RigPitch, 'f', -1, 64))
		q.Set("angle", strconv.FormatFloat(p.Custom.StartAngle, 'f', -1, 64))
		q.Set("fov", strconv.FormatFloat(p.Custom.FOV, 'f', -1, 64))
	}
	return q
}
