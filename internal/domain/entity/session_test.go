package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpframes/sharpframes-processing-service/internal/detect360"
)

func newSphericalSession() *Session {
	return NewSession("clip.mp4", 10, 3840, 1920, detect360.Detect(3840, 1920), true)
}

func TestNewSessionSkyboxHasSixFaceViews(t *testing.T) {
	sess := newSphericalSession()
	require.Len(t, sess.Views, 6)

	tags := map[string]bool{}
	for _, v := range sess.Views {
		assert.NotEmpty(t, v.Face)
		tags[v.Face] = true
	}
	assert.Len(t, tags, 6)
	assert.NotNil(t, sess.ActiveView())
}

func TestNewSessionPlanarHasSingleView(t *testing.T) {
	sess := NewSession("clip.mp4", 10, 1920, 1080, detect360.Detect(1920, 1080), false)
	require.Len(t, sess.Views, 1)
	assert.Empty(t, sess.Views[0].Face)
}

func TestSetModeRegeneratesViewsAndDiscardsData(t *testing.T) {
	sess := newSphericalSession()
	sess.Views[0].AppendSample(FrameSample{Time: 1, Variance: 50})

	require.NoError(t, sess.SetMode(ModeCustom))
	require.Len(t, sess.Views, DefaultCustomConfig.FrameCount)
	for _, v := range sess.Views {
		assert.Empty(t, v.Samples)
		assert.Empty(t, v.Face)
	}

	require.NoError(t, sess.SetMode(ModeSkybox))
	assert.Len(t, sess.Views, 6)
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	sess := newSphericalSession()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, sess.SetMode("panorama"), &cfgErr)
}

func TestApplyCustomConfigRegeneratesCustomViews(t *testing.T) {
	sess := newSphericalSession()
	require.NoError(t, sess.SetMode(ModeCustom))

	cfg := CustomConfig{FrameCount: 8, RigPitch: -10, StartAngle: 45, FOV: 75}
	require.NoError(t, sess.ApplyCustomConfig(cfg))
	require.Len(t, sess.Views, 8)

	assert.InDelta(t, 45.0, sess.Views[0].Yaw, 1e-9)
	assert.InDelta(t, 90.0, sess.Views[1].Yaw, 1e-9)
	for _, v := range sess.Views {
		assert.Equal(t, -10.0, v.Pitch)
		assert.Equal(t, 75.0, v.FOV)
	}
}

func TestApplyCustomConfigRejectsOutOfRangeLeavingViewsUntouched(t *testing.T) {
	sess := newSphericalSession()
	require.NoError(t, sess.SetMode(ModeCustom))
	before := sess.Views

	var cfgErr *ConfigurationError
	err := sess.ApplyCustomConfig(CustomConfig{FrameCount: 13, FOV: 90})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, before, sess.Views)

	err = sess.ApplyCustomConfig(CustomConfig{FrameCount: 0, FOV: 90})
	require.ErrorAs(t, err, &cfgErr)

	err = sess.ApplyCustomConfig(CustomConfig{FrameCount: 4, FOV: 200})
	require.ErrorAs(t, err, &cfgErr)

	err = sess.ApplyCustomConfig(CustomConfig{FrameCount: 4, FOV: 90, RigPitch: 80})
	require.ErrorAs(t, err, &cfgErr)
}

func TestApplyThreshold(t *testing.T) {
	sess := newSphericalSession()
	sess.ApplyThreshold(275)
	for _, v := range sess.Views {
		assert.Equal(t, 275.0, v.Threshold)
	}
}

func TestSetActiveView(t *testing.T) {
	sess := newSphericalSession()
	target := sess.Views[3]
	require.True(t, sess.SetActiveView(target.ID))
	assert.Equal(t, target, sess.ActiveView())

	other := NewView("elsewhere", 0, 0, 90)
	assert.False(t, sess.SetActiveView(other.ID))
	assert.Equal(t, target, sess.ActiveView())
}
