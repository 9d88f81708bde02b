// Package analysis drives the cooperative sharpness scan over a video
// timeline, producing per-view frame samples with progress reporting.
package analysis

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
	"github.com/sharpframes/sharpframes-processing-service/internal/projection"
	"github.com/sharpframes/sharpframes-processing-service/internal/sharpness"
)

// Options configures one analysis run.
type Options struct {
	// SampleFPS is the sampling rate in samples per second.
	SampleFPS int
	// Spherical runs each view through the projection engine; otherwise the
	// full frame is scored directly.
	Spherical bool
	// ViewSize is the square analysis resolution per spherical view.
	ViewSize int
	// MaxPlanarEdge caps the longer edge when scoring planar frames.
	MaxPlanarEdge int
}

// DefaultOptions bounds analysis cost well below export resolution.
func DefaultOptions() Options {
	return Options{SampleFPS: 3, ViewSize: 512, MaxPlanarEdge: 1080}
}

// Progress is invoked after every processed timestamp.
type Progress func(processed, total int)

// Driver runs the scan. It borrows the video source; it never owns it.
type Driver struct {
	src port.VideoSource
	log *zap.Logger
}

func NewDriver(src port.VideoSource, log *zap.Logger) *Driver {
	return &Driver{src: src, log: log}
}

// SampleTimestamps returns t_i = i/fps for i = 0..floor(duration*fps),
// skipping any t_i beyond the duration. The endpoint is inclusive: a 2s
// video sampled at 6 fps yields 13 timestamps.
func SampleTimestamps(duration float64, fps int) []float64 {
	total := int(math.Floor(duration * float64(fps)))
	ts := make([]float64, 0, total+1)
	for i := 0; i <= total; i++ {
		t := float64(i) / float64(fps)
		if t > duration {
			break
		}
		ts = append(ts, t)
	}
	return ts
}

// Run scans the timeline once, replacing all views' prior samples.
//
// For each timestamp the shared source is sought and the decoded frame read
// only after the seek confirms; seeks are never issued concurrently. Pure
// per-view projection and scoring fan out over goroutines since they share
// only the read-only decoded frame. The pre-run playback position is
// restored on completion and on error; partial results accumulated before a
// failure are retained.
func (d *Driver) Run(ctx context.Context, views []*entity.View, opts Options, progress Progress) error {
	if opts.SampleFPS <= 0 {
		return &entity.ConfigurationError{Field: "sample_fps", Reason: fmt.Sprintf("%d must be positive", opts.SampleFPS)}
	}
	if len(views) == 0 {
		return &entity.ConfigurationError{Field: "views", Reason: "no views to analyze"}
	}

	timestamps := SampleTimestamps(d.src.Duration(), opts.SampleFPS)
	total := len(timestamps)

	origin := d.src.Position()
	d.src.Pause()
	defer func() {
		// Restore playback position even when the run was cancelled.
		if err := d.src.Seek(context.WithoutCancel(ctx), origin); err != nil {
			d.log.Warn("failed to restore playback position", zap.Error(err))
		}
		d.src.Resume()
	}()

	for _, v := range views {
		v.ResetSamples()
	}

	d.log.Info("analysis started",
		zap.Int("timestamps", total),
		zap.Int("views", len(views)),
		zap.Int("sample_fps", opts.SampleFPS),
	)

	for i, t := range timestamps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := d.src.Seek(ctx, t); err != nil {
			return &port.DecodeError{Op: fmt.Sprintf("seek %.3fs", t), Err: err}
		}
		frame, err := d.src.Frame()
		if err != nil {
			return &port.DecodeError{Op: fmt.Sprintf("read frame %.3fs", t), Err: err}
		}

		if err := d.scoreFrame(frame, t, views, opts); err != nil {
			return err
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	d.log.Info("analysis completed", zap.Int("timestamps", total))
	return nil
}

// scoreFrame scores one decoded frame for every view and appends the
// samples in view order, keeping each view's sequence time-ordered.
func (d *Driver) scoreFrame(frame *image.RGBA, t float64, views []*entity.View, opts Options) error {
	if !opts.Spherical {
		img := frame
		if exceedsEdge(frame, opts.MaxPlanarEdge) {
			img = downscale(frame, opts.MaxPlanarEdge)
		}
		variance, err := sharpness.Score(img)
		if err != nil {
			return fmt.Errorf("score frame at %.3fs: %w", t, err)
		}
		views[0].AppendSample(entity.FrameSample{Time: t, Variance: variance})
		return nil
	}

	variances := make([]float64, len(views))
	errs := make([]error, len(views))

	var wg sync.WaitGroup
	for i, v := range views {
		wg.Add(1)
		go func(i int, v *entity.View) {
			defer wg.Done()
			img, err := viewImage(frame, v, opts.ViewSize)
			if err != nil {
				errs[i] = err
				return
			}
			variances[i], errs[i] = sharpness.Score(img)
		}(i, v)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("score view %q at %.3fs: %w", views[i].Name, t, err)
		}
	}
	for i, v := range views {
		v.AppendSample(entity.FrameSample{Time: t, Variance: variances[i]})
	}
	return nil
}

// viewImage derives a view's analysis sub-image from the decoded frame.
func viewImage(frame *image.RGBA, v *entity.View, size int) (*image.RGBA, error) {
	if v.Face != "" {
		return projection.ExtractCubemapFace(frame, v.Face, size)
	}
	return projection.ExtractPerspective(frame, v.Yaw, v.Pitch, v.FOV, size, size)
}
