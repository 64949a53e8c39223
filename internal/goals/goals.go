// Package goals computes progress figures for savings and expense-reduction
// goals and applies progress contributions.
package goals

import (
	"math"
	"time"

	"controlly/internal/core"
)

type Progress struct {
	// Percentage is current/target*100 and is not capped at 100.
	Percentage float64    `json:"percentage"`
	Remaining  core.Money `json:"remaining"`
}

// Overshoot describes what a contribution would do relative to the target.
type Overshoot struct {
	Exceeds         bool       `json:"exceeds"`
	MaxAllowed      core.Money `json:"maxAllowed"`
	AlreadyComplete bool       `json:"alreadyComplete"`
}

func Compute(g core.Goal) Progress {
	p := Progress{Remaining: g.TargetAmount.Sub(g.CurrentAmount)}
	if p.Remaining.Cents < 0 {
		p.Remaining = core.Money{}
	}
	if g.TargetAmount.Cents > 0 {
		p.Percentage = float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
	}
	return p
}

// AddProgress returns g with amount added. Non-positive amounts are a
// validation error and g is returned unchanged. The target is not a cap.
func AddProgress(g core.Goal, amount core.Money) (core.Goal, error) {
	if err := amount.Validate(); err != nil {
		return g, core.Invalid("amount", err)
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Completed = true
	}
	return g, nil
}

// CheckOvershoot reports whether adding amount would pass the target.
func CheckOvershoot(g core.Goal, amount core.Money) Overshoot {
	room := g.TargetAmount.Sub(g.CurrentAmount)
	if room.Cents <= 0 {
		return Overshoot{Exceeds: amount.Cents > 0, AlreadyComplete: true}
	}
	return Overshoot{Exceeds: amount.Cents > room.Cents, MaxAllowed: room}
}

// DaysRemaining counts days from now to the start of the target date,
// rounding up. Past targets give zero or a negative count.
func DaysRemaining(g core.Goal, now time.Time) int {
	d := g.TargetDate.Sub(now.UTC())
	return int(math.Ceil(d.Hours() / 24))
}
