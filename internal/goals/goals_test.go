package goals

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controlly/internal/core"
)

func goal(target, current int64) core.Goal {
	return core.Goal{
		ID:            "goal_1",
		Title:         "Emergency fund",
		TargetAmount:  core.Money{Cents: target},
		CurrentAmount: core.Money{Cents: current},
		TargetDate:    core.NewDate(2030, 1, 1),
		Type:          core.Savings,
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		g         core.Goal
		pct       float64
		remaining int64
	}{
		{"fresh", goal(100000, 0), 0, 100000},
		{"forty percent", goal(100000, 40000), 40, 60000},
		{"done", goal(100000, 100000), 100, 0},
		{"overshoot is uncapped", goal(100000, 110000), 110, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compute(tt.g)
			assert.InDelta(t, tt.pct, p.Percentage, 1e-9)
			assert.Equal(t, tt.remaining, p.Remaining.Cents)
		})
	}
}

func TestAddProgress(t *testing.T) {
	g := goal(100000, 40000)

	next, err := AddProgress(g, core.Money{Cents: 70000})
	require.NoError(t, err)
	assert.Equal(t, int64(110000), next.CurrentAmount.Cents, "not clamped to target")
	assert.True(t, next.Completed)
	assert.False(t, g.Completed, "input goal untouched")

	partial, err := AddProgress(g, core.Money{Cents: 100})
	require.NoError(t, err)
	assert.False(t, partial.Completed)

	for _, bad := range []int64{0, -500} {
		same, err := AddProgress(g, core.Money{Cents: bad})
		assert.True(t, errors.Is(err, core.ErrValidation), "amount %d", bad)
		assert.Equal(t, g, same)
	}
}

func TestAddProgressKeepsCompletion(t *testing.T) {
	g := goal(100000, 100000)
	g.Completed = true
	g.TargetAmount = core.Money{Cents: 500000}

	next, err := AddProgress(g, core.Money{Cents: 1})
	require.NoError(t, err)
	assert.True(t, next.Completed, "completion is never reset")
}

func TestCheckOvershoot(t *testing.T) {
	assert.Equal(t, Overshoot{MaxAllowed: core.Money{Cents: 60000}}, CheckOvershoot(goal(100000, 40000), core.Money{Cents: 60000}))
	assert.Equal(t, Overshoot{Exceeds: true, MaxAllowed: core.Money{Cents: 60000}}, CheckOvershoot(goal(100000, 40000), core.Money{Cents: 60001}))
	assert.Equal(t, Overshoot{Exceeds: true, AlreadyComplete: true}, CheckOvershoot(goal(100000, 100000), core.Money{Cents: 1}))
}

func TestDaysRemaining(t *testing.T) {
	g := goal(1, 0)
	g.TargetDate = core.NewDate(2024, 3, 20)

	assert.Equal(t, 5, DaysRemaining(g, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, DaysRemaining(g, time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)), "partial days round up")
	assert.Equal(t, 0, DaysRemaining(g, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.Less(t, DaysRemaining(g, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), 0)
}
