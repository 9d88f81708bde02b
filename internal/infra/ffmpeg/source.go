// Package ffmpeg adapts ffmpeg/ffprobe processes to the decoded-video
// capability the core consumes.
package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
)

// Source decodes one RGBA frame per seek by running ffmpeg against a local
// file. A mutex makes each seek-then-read sequence a critical section, so
// at most one seek is in flight and a stale run can never interleave with
// a fresh one on the same handle.
type Source struct {
	mu sync.Mutex

	path     string
	duration float64
	width    int
	height   int

	position float64
	frame    *image.RGBA
	logger   *zap.Logger
}

// Opener creates Sources; it satisfies port.VideoSourceOpener.
type Opener struct {
	Logger *zap.Logger
}

func (o *Opener) Open(ctx context.Context, path string) (port.VideoSource, error) {
	return NewSource(ctx, path, o.Logger)
}

func NewSource(ctx context.Context, path string, logger *zap.Logger) (*Source, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, &port.DecodeError{Op: "probe " + path, Err: err}
	}

	logger.Info("video source opened",
		zap.String("path", path),
		zap.Float64("duration", info.Duration),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
	)

	return &Source{
		path:     path,
		duration: info.Duration,
		width:    info.Width,
		height:   info.Height,
		logger:   logger,
	}, nil
}

// Seek decodes the frame at t and returns once it is readable. The frame
// stays available through Frame() until the next seek.
func (s *Source) Seek(ctx context.Context, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t < 0 {
		t = 0
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.6f", t),
		"-i", s.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-v", "error",
		"pipe:1",
	)
	data, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("ffmpeg seek %.3fs: %w", t, err)
	}

	want := s.width * s.height * 4
	if len(data) != want {
		return fmt.Errorf("ffmpeg seek %.3fs: decoded %d bytes, want %d", t, len(data), want)
	}

	s.frame = &image.RGBA{
		Pix:    data,
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
	s.position = t
	return nil
}

// Frame returns the most recently decoded frame.
func (s *Source) Frame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, &port.DecodeError{Op: "read frame", Err: fmt.Errorf("no frame decoded yet")}
	}
	return s.frame, nil
}

func (s *Source) Duration() float64 { return s.duration }
func (s *Source) Width() int        { return s.width }
func (s *Source) Height() int       { return s.height }

func (s *Source) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Pause and Resume are part of the decoded-video capability for live
// playback; a file-backed source has no playback to pause.
func (s *Source) Pause()  {}
func (s *Source) Resume() {}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = nil
	return nil
}
