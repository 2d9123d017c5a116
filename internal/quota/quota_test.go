package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateLimited(t *testing.T) {
	tests := []struct {
		name       string
		used       int64
		limit      int64
		remaining  int64
		percentage int
		nearLimit  bool
	}{
		{name: "untouched", used: 0, limit: 10, remaining: 10, percentage: 0},
		{name: "partial", used: 4, limit: 10, remaining: 6, percentage: 40},
		{name: "below threshold", used: 79, limit: 100, remaining: 21, percentage: 79},
		{name: "at threshold", used: 80, limit: 100, remaining: 20, percentage: 80, nearLimit: true},
		{name: "exhausted", used: 10, limit: 10, remaining: 0, percentage: 100, nearLimit: true},
		{name: "rounded up", used: 5, limit: 6, remaining: 1, percentage: 83, nearLimit: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := Evaluate(tc.used, tc.limit)
			assert.True(t, ev.Limited)
			assert.Equal(t, tc.remaining, ev.Remaining)
			assert.Equal(t, tc.percentage, ev.Percentage)
			assert.Equal(t, tc.nearLimit, ev.NearLimit)
		})
	}
}

func TestEvaluateUnlimited(t *testing.T) {
	for _, used := range []int64{0, 5, 5000} {
		ev := Evaluate(used, 0)
		assert.False(t, ev.Limited)
		assert.False(t, ev.NearLimit)
		assert.Equal(t, 0, ev.Percentage)
		assert.False(t, ev.Exhausted())
	}
}

func TestEvaluateOverQuotaReportsTrueOverage(t *testing.T) {
	ev := Evaluate(150, 100)
	assert.Equal(t, int64(0), ev.Remaining)
	assert.Equal(t, 150, ev.Percentage)
	assert.True(t, ev.NearLimit)
	assert.True(t, ev.Exhausted())
}

func TestEvaluateNegativeUsageTreatedAsZero(t *testing.T) {
	ev := Evaluate(-3, 10)
	assert.Equal(t, int64(10), ev.Remaining)
	assert.Equal(t, 0, ev.Percentage)
}

func TestExhausted(t *testing.T) {
	assert.True(t, Evaluate(10, 10).Exhausted())
	assert.False(t, Evaluate(9, 10).Exhausted())
	assert.False(t, Evaluate(10, 0).Exhausted())
}
