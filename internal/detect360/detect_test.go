package detect360

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		is360      bool
		confidence Confidence
	}{
		{"4k 360 preset", 3840, 1920, true, ConfidenceHigh},
		{"8k 360 preset", 7680, 3840, true, ConfidenceHigh},
		{"near preset within slack", 3900, 1950, true, ConfidenceHigh},
		{"exact 2:1 but no preset", 3000, 1500, true, ConfidenceMedium},
		{"slightly off 2:1", 2000, 1040, true, ConfidenceLow},
		{"full hd flat", 1920, 1080, false, ConfidenceHigh},
		{"vertical video", 1080, 1920, false, ConfidenceHigh},
		{"square", 1024, 1024, false, ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.width, tt.height)
			assert.Equal(t, tt.is360, got.Is360)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestDetectDegenerateDimensions(t *testing.T) {
	got := Detect(0, 0)
	assert.False(t, got.Is360)
	assert.Equal(t, ConfidenceHigh, got.Confidence)
}
