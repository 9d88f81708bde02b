package analysis

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/detect360"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
)

// fakeSource is a deterministic VideoSource producing synthetic frames.
// Frame() fails unless a seek confirmed first, mirroring the stale-frame
// hazard of reading before the decoder lands.
type fakeSource struct {
	duration float64
	width    int
	height   int

	position  float64
	seeked    bool
	seekCount int
	failAt    float64 // inject a seek error at this timestamp (NaN = never)
}

func newFakeSource(duration float64, w, h int) *fakeSource {
	return &fakeSource{duration: duration, width: w, height: h, failAt: math.NaN()}
}

func (f *fakeSource) Seek(_ context.Context, t float64) error {
	f.seekCount++
	if !math.IsNaN(f.failAt) && t == f.failAt {
		return errors.New("simulated seek failure")
	}
	f.position = t
	f.seeked = true
	return nil
}

func (f *fakeSource) Frame() (*image.RGBA, error) {
	if !f.seeked {
		return nil, errors.New("frame read before seek confirmed")
	}
	// Brightness varies with position so scores differ across time.
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			v := uint8((x*7 + y*13 + int(f.position*50)) % 256)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img, nil
}

func (f *fakeSource) Duration() float64 { return f.duration }
func (f *fakeSource) Width() int        { return f.width }
func (f *fakeSource) Height() int       { return f.height }
func (f *fakeSource) Position() float64 { return f.position }
func (f *fakeSource) Pause()            {}
func (f *fakeSource) Resume()           {}
func (f *fakeSource) Close() error      { return nil }

var _ port.VideoSource = (*fakeSource)(nil)

func planarOptions() Options {
	return Options{SampleFPS: 6, MaxPlanarEdge: 1080}
}

func TestSampleTimestampsInclusiveEndpoint(t *testing.T) {
	ts := SampleTimestamps(2, 6)
	require.Len(t, ts, 13)
	assert.Equal(t, 0.0, ts[0])
	assert.Equal(t, 2.0, ts[12])
}

func TestSampleTimestampsSkipsBeyondDuration(t *testing.T) {
	ts := SampleTimestamps(1.9, 3)
	// floor(1.9*3)=5, t_5=5/3=1.667 <= 1.9, so all six survive.
	require.Len(t, ts, 6)
	assert.InDelta(t, 5.0/3.0, ts[5], 1e-12)
}

func TestRunProducesOrderedSamplesPerView(t *testing.T) {
	src := newFakeSource(2, 64, 48)
	driver := NewDriver(src, zap.NewNop())
	view := entity.NewView("full_frame", 0, 0, 0)

	var lastProcessed, lastTotal int
	err := driver.Run(context.Background(), []*entity.View{view}, planarOptions(), func(p, total int) {
		lastProcessed, lastTotal = p, total
	})
	require.NoError(t, err)

	require.Len(t, view.Samples, 13)
	for i := 1; i < len(view.Samples); i++ {
		assert.Greater(t, view.Samples[i].Time, view.Samples[i-1].Time)
	}
	assert.Equal(t, 13, lastProcessed)
	assert.Equal(t, 13, lastTotal)
}

func TestRunSphericalScoresEveryView(t *testing.T) {
	src := newFakeSource(1, 128, 64)
	driver := NewDriver(src, zap.NewNop())

	sess := entity.NewSession("clip.mp4", 1, 128, 64, detect360.Detect(128, 64), true)
	require.Len(t, sess.Views, 6)

	opts := Options{SampleFPS: 3, Spherical: true, ViewSize: 32}
	err := driver.Run(context.Background(), sess.Views, opts, nil)
	require.NoError(t, err)

	for _, v := range sess.Views {
		assert.Len(t, v.Samples, 4, v.Name)
	}
	// One seek per timestamp regardless of view count.
	assert.Equal(t, 4+1, src.seekCount) // +1 for position restore
}

func TestRunReplacesPriorSamples(t *testing.T) {
	src := newFakeSource(1, 32, 32)
	driver := NewDriver(src, zap.NewNop())
	view := entity.NewView("full_frame", 0, 0, 0)

	require.NoError(t, driver.Run(context.Background(), []*entity.View{view}, planarOptions(), nil))
	first := len(view.Samples)
	require.NoError(t, driver.Run(context.Background(), []*entity.View{view}, planarOptions(), nil))
	assert.Equal(t, first, len(view.Samples))
}

func TestRunSeekFailureAbortsAndRestoresPosition(t *testing.T) {
	src := newFakeSource(2, 32, 32)
	src.position = 0.75 // pre-analysis playback cursor
	src.failAt = 1.0
	driver := NewDriver(src, zap.NewNop())
	view := entity.NewView("full_frame", 0, 0, 0)

	err := driver.Run(context.Background(), []*entity.View{view}, planarOptions(), nil)
	require.Error(t, err)

	var decodeErr *port.DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	// Samples before the failure are retained, not rolled back.
	assert.Len(t, view.Samples, 6) // t=0..5/6 succeeded, t=1.0 failed
	assert.Equal(t, 0.75, src.Position())
}

func TestRunCancelledContext(t *testing.T) {
	src := newFakeSource(10, 32, 32)
	driver := NewDriver(src, zap.NewNop())
	view := entity.NewView("full_frame", 0, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := driver.Run(ctx, []*entity.View{view}, planarOptions(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, view.Samples)
}

func TestRunRejectsBadOptions(t *testing.T) {
	src := newFakeSource(1, 32, 32)
	driver := NewDriver(src, zap.NewNop())
	view := entity.NewView("full_frame", 0, 0, 0)

	var cfgErr *entity.ConfigurationError
	err := driver.Run(context.Background(), []*entity.View{view}, Options{SampleFPS: 0}, nil)
	require.ErrorAs(t, err, &cfgErr)

	err = driver.Run(context.Background(), nil, planarOptions(), nil)
	require.ErrorAs(t, err, &cfgErr)
}
