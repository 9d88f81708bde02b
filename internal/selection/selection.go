// Package selection derives the exportable frame set for a view from its
// threshold and timeline ranges.
package selection

import (
	"sort"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
)

// EffectiveThreshold clamps the configured threshold to the largest
// variance actually observed, so a stale high threshold after reloading
// smaller data never reports zero eligible frames on its own.
func EffectiveThreshold(v *entity.View) float64 {
	if len(v.Samples) == 0 {
		return v.Threshold
	}
	if maxVar := v.MaxVariance(); maxVar < v.Threshold {
		return maxVar
	}
	return v.Threshold
}

// Eligible returns the samples that pass the effective threshold and are
// not covered by any exclude range. Order follows the sample order.
func Eligible(v *entity.View) []entity.FrameSample {
	threshold := EffectiveThreshold(v)
	var out []entity.FrameSample
	for _, s := range v.Samples {
		if s.Variance >= threshold && !Excluded(v, s.Time) {
			out = append(out, s)
		}
	}
	return out
}

// Excluded reports whether t is covered by an exclude range on the view;
// range membership is inclusive on both ends.
func Excluded(v *entity.View, t float64) bool {
	for _, r := range v.Ranges {
		if r.Action == entity.ActionExclude && r.Contains(t) {
			return true
		}
	}
	return false
}

// PromptFor returns the mask prompt applicable at t: the prompt of the
// first mask_generation range covering the time. Ranges are not merged or
// deduplicated.
func PromptFor(v *entity.View, t float64) (string, bool) {
	for _, r := range v.Ranges {
		if r.Action == entity.ActionMaskGeneration && r.Contains(t) {
			return r.Prompt, true
		}
	}
	return "", false
}

// EligibleTimes returns the sorted union of eligible sample times across
// views. Skybox export groups faces by timestamp, so a timestamp eligible
// on any face is exported for all six.
func EligibleTimes(views []*entity.View) []float64 {
	seen := make(map[float64]struct{})
	var times []float64
	for _, v := range views {
		for _, s := range Eligible(v) {
			if _, ok := seen[s.Time]; !ok {
				seen[s.Time] = struct{}{}
				times = append(times, s.Time)
			}
		}
	}
	sort.Float64s(times)
	return times
}

// CountEligible totals eligible samples across views.
func CountEligible(views []*entity.View) int {
	n := 0
	for _, v := range views {
		n += len(Eligible(v))
	}
	return n
}
