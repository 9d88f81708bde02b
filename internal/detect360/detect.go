// Package detect360 classifies whether a video's frame geometry indicates
// an equirectangular 360 source, using only width and height. The result is
// advisory; an explicit user override always wins.
package detect360

import "fmt"

// Confidence grades how strongly the geometry matches equirectangular.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the classifier's verdict with a human-readable reason.
type Result struct {
	Is360      bool       `json:"is_360"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// presetWidths are the canonical 360 camera resolutions, each paired with a
// half-width height.
var presetWidths = []int{7680, 5760, 4096, 3840, 2880, 2048, 1920}

const (
	presetWidthSlack  = 100
	presetHeightSlack = 50
)

// Detect evaluates the policy rules in order; the first match wins.
func Detect(width, height int) Result {
	if width <= 0 || height <= 0 {
		return Result{Is360: false, Confidence: ConfidenceHigh, Reason: "invalid frame dimensions"}
	}

	aspect := float64(width) / float64(height)
	exact := aspect > 1.95 && aspect < 2.05

	if exact {
		for _, pw := range presetWidths {
			if abs(width-pw) <= presetWidthSlack && abs(height-pw/2) <= presetHeightSlack {
				return Result{
					Is360:      true,
					Confidence: ConfidenceHigh,
					Reason:     fmt.Sprintf("matches 360 resolution preset %dx%d", pw, pw/2),
				}
			}
		}
		return Result{
			Is360:      true,
			Confidence: ConfidenceMedium,
			Reason:     "2:1 equirectangular aspect ratio",
		}
	}

	if aspect >= 1.9 && aspect <= 2.1 {
		return Result{
			Is360:      true,
			Confidence: ConfidenceLow,
			Reason:     "aspect ratio close to 2:1",
		}
	}

	return Result{
		Is360:      false,
		Confidence: ConfidenceHigh,
		Reason:     "non-equirectangular aspect ratio",
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
