package port

import (
	"context"
	"fmt"
)

// MaskGenerator is the remote masking collaborator. Calls are best-effort:
// a failure never aborts the export of the base frame or of other frames.
type MaskGenerator interface {
	GenerateMask(ctx context.Context, frame []byte, prompt string) ([]byte, error)
}

// ExternalFeatureError wraps a failure of an optional external feature;
// callers log it and continue.
type ExternalFeatureError struct {
	Feature string
	Err     error
}

func (e *ExternalFeatureError) Error() string {
	return fmt.Sprintf("external feature %s: %v", e.Feature, e.Err)
}

func (e *ExternalFeatureError) Unwrap() error { return e.Err }
