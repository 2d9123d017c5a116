// Package quota evaluates metered-resource usage against plan limits.
package quota

import "math"

// NearLimitPercent is the advisory warning threshold.
const NearLimitPercent = 80

// Evaluation reports how much of a metered resource remains.
//
// Percentage is not clamped at 100: usage above the limit (for example after
// a plan downgrade) reports the true overage so callers can surface it.
type Evaluation struct {
	Used       int64 `json:"used"`
	Limit      int64 `json:"limit"`
	Remaining  int64 `json:"remaining"`
	Percentage int   `json:"percentage"`
	Limited    bool  `json:"limited"`
	NearLimit  bool  `json:"near_limit"`
}

// Evaluate computes the quota state for a usage counter. A limit of zero or
// below means the resource is unlimited and enforcement is bypassed.
func Evaluate(used, limit int64) Evaluation {
	if used < 0 {
		used = 0
	}

	ev := Evaluation{
		Used:  used,
		Limit: limit,
	}

	if limit <= 0 {
		return ev
	}

	ev.Limited = true
	ev.Remaining = limit - used
	if ev.Remaining < 0 {
		ev.Remaining = 0
	}
	ev.Percentage = int(math.Round(float64(used) / float64(limit) * 100))
	ev.NearLimit = ev.Percentage >= NearLimitPercent
	return ev
}

// Exhausted reports whether a consuming action must be rejected.
func (e Evaluation) Exhausted() bool {
	return e.Limited && e.Remaining == 0
}
