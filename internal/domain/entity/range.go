package entity

import (
	"github.com/google/uuid"
)

// RangeAction tells the selection model what a timeline range means.
type RangeAction string

const (
	ActionNone           RangeAction = "none"
	ActionExclude        RangeAction = "exclude"
	ActionMaskGeneration RangeAction = "mask_generation"
	ActionHighlight      RangeAction = "highlight"
)

// MinRangeDuration is the shortest range a drag gesture may create, in
// seconds. Shorter drags are discarded, not created.
const MinRangeDuration = 0.1

// TimelineRange is a user-defined span of timeline owned by exactly one
// view. Membership is inclusive on both ends.
type TimelineRange struct {
	ID     uuid.UUID   `json:"id"`
	Start  float64     `json:"start"`
	End    float64     `json:"end"`
	Action RangeAction `json:"action"`
	Prompt string      `json:"prompt,omitempty"` // mask_generation only
}

// Contains reports whether t falls inside the range, inclusive both ends.
func (r *TimelineRange) Contains(t float64) bool {
	return r.Start <= t && t <= r.End
}

// CommitRange finishes a drag gesture on this view's timeline. Drags
// shorter than MinRangeDuration are discarded. Starting a new range
// implicitly deletes the currently selected range when it is still a draft
// (no action assigned). The created range becomes the selection.
func (v *View) CommitRange(start, end float64) (*TimelineRange, bool) {
	if end-start < MinRangeDuration {
		return nil, false
	}

	if sel := v.SelectedRange(); sel != nil && sel.Action == ActionNone {
		v.DeleteRange(sel.ID)
	}

	r := &TimelineRange{
		ID:     uuid.New(),
		Start:  start,
		End:    end,
		Action: ActionNone,
	}
	v.Ranges = append(v.Ranges, r)
	v.selectedRange = r.ID
	return r, true
}

// UpdateRange mutates a range's bounds, action, or prompt in place.
func (v *View) UpdateRange(id uuid.UUID, start, end float64, action RangeAction, prompt string) bool {
	for _, r := range v.Ranges {
		if r.ID == id {
			r.Start = start
			r.End = end
			r.Action = action
			r.Prompt = prompt
			return true
		}
	}
	return false
}

// DeleteRange removes a range; the selection is cleared if it pointed at
// the deleted range.
func (v *View) DeleteRange(id uuid.UUID) bool {
	for i, r := range v.Ranges {
		if r.ID == id {
			v.Ranges = append(v.Ranges[:i], v.Ranges[i+1:]...)
			if v.selectedRange == id {
				v.selectedRange = uuid.Nil
			}
			return true
		}
	}
	return false
}

// SelectRange makes the given range the single selected range for editing.
func (v *View) SelectRange(id uuid.UUID) bool {
	for _, r := range v.Ranges {
		if r.ID == id {
			v.selectedRange = id
			return true
		}
	}
	return false
}

// ClearSelection deselects any selected range.
func (v *View) ClearSelection() {
	v.selectedRange = uuid.Nil
}

// SelectedRange returns the range currently selected for editing, or nil.
func (v *View) SelectedRange() *TimelineRange {
	if v.selectedRange == uuid.Nil {
		return nil
	}
	for _, r := range v.Ranges {
		if r.ID == v.selectedRange {
			return r
		}
	}
	return nil
}
