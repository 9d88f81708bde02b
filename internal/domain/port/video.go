package port

import (
	"context"
	"fmt"
	"image"
)

// VideoSource is the decoded-video capability the core consumes. It never
// decodes container bytes itself.
//
// Seek is the sole suspension point of the analysis and export loops: it
// returns only once the frame at the requested position is decoded and
// readable, and implementations must allow at most one in-flight seek at a
// time (seek-then-read is a critical section).
type VideoSource interface {
	Seek(ctx context.Context, t float64) error
	Frame() (*image.RGBA, error)
	Duration() float64
	Width() int
	Height() int
	Position() float64
	Pause()
	Resume()
	Close() error
}

// VideoSourceOpener creates a VideoSource for a local video file.
type VideoSourceOpener interface {
	Open(ctx context.Context, path string) (VideoSource, error)
}

// DecodeError reports a failed seek or frame read. It aborts the current
// run; partial results already accumulated stay valid.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
