package entity

import "github.com/google/uuid"

// RangeSpec is a timeline range carried in a processing request; it is
// applied to every generated view before selection runs.
type RangeSpec struct {
	Start  float64     `json:"start"`
	End    float64     `json:"end"`
	Action RangeAction `json:"action"`
	Prompt string      `json:"prompt,omitempty"`
}

// ProcessingRequestMessage is the inbound message from the frames.process
// queue. It carries the session configuration captured by the editor.
type ProcessingRequestMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	UserID    string    `json:"user_id"`
	VideoKey  string    `json:"video_key"`
	FileSize  int64     `json:"file_size"`
	UserEmail string    `json:"user_email"`

	SampleFPS int          `json:"sample_fps"` // 3, 6 or 12
	Mode      Mode         `json:"mode,omitempty"`
	Custom    CustomConfig `json:"custom,omitempty"` // custom mode only
	Threshold float64      `json:"threshold"`        // blur cutoff for all views
	Ranges    []RangeSpec  `json:"ranges,omitempty"`
	Force360  *bool        `json:"force_360,omitempty"` // overrides the detector
}

// ProcessingStatusMessage is the outbound message published to the
// frames.status queue.
type ProcessingStatusMessage struct {
	JobID         uuid.UUID `json:"job_id"`
	UserID        string    `json:"user_id"`
	Status        JobStatus `json:"status"`
	VideoKey      string    `json:"video_key"`
	ArchiveKey    string    `json:"archive_key,omitempty"`
	Spherical     bool      `json:"spherical"`
	Mode          string    `json:"mode,omitempty"`
	SampleCount   int       `json:"sample_count,omitempty"`
	EligibleCount int       `json:"eligible_count,omitempty"`
	Duration      float64   `json:"duration_seconds,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Attempt       int       `json:"attempt"`
	MaxAttempts   int       `json:"max_attempts"`
}
