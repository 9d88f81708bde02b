package entity

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEditorParamsDefaults(t *testing.T) {
	p := ParseEditorParams(url.Values{})
	assert.Equal(t, ModeSkybox, p.Mode)
	assert.Equal(t, DefaultCustomConfig, p.Custom)
}

func TestParseEditorParamsCustom(t *testing.T) {
	q := url.Values{}
	q.Set("mode", "custom")
	q.Set("frames", "8")
	q.Set("pitch", "-15.5")
	q.Set("angle", "45")
	q.Set("fov", "75")

	p := ParseEditorParams(q)
	assert.Equal(t, ModeCustom, p.Mode)
	assert.Equal(t, 8, p.Custom.FrameCount)
	assert.Equal(t, -15.5, p.Custom.RigPitch)
	assert.Equal(t, 45.0, p.Custom.StartAngle)
	assert.Equal(t, 75.0, p.Custom.FOV)
}

func TestParseEditorParamsTolerant(t *testing.T) {
	q := url.Values{}
	q.Set("mode", "banana")
	q.Set("frames", "99")
	q.Set("pitch", "not-a-number")
	q.Set("fov", "500")

	p := ParseEditorParams(q)
	assert.Equal(t, ModeSkybox, p.Mode)
	assert.Equal(t, DefaultCustomConfig, p.Custom)
}

func TestEditorParamsValuesSkyboxOmitsRigParams(t *testing.T) {
	q := EditorParams{Mode: ModeSkybox, Custom: DefaultCustomConfig}.Values()
	assert.Equal(t, "skybox", q.Get("mode"))
	assert.Empty(t, q.Get("frames"))
	assert.Empty(t, q.Get("pitch"))
}

func TestEditorParamsRoundTrip(t *testing.T) {
	orig := EditorParams{
		Mode:   ModeCustom,
		Custom: CustomConfig{FrameCount: 6, RigPitch: 12.5, StartAngle: 30, FOV: 110},
	}
	parsed := ParseEditorParams(orig.Values())
	assert.Equal(t, orig, parsed)
}
