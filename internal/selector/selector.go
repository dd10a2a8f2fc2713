// Package selector picks one AdMob account per request according to an app's
// switching rule. Selection is pure over its inputs plus an injected clock
// and random source; misconfiguration always degrades to the first active
// account (or nil when none exist), never an error.
package selector

import (
	"math/rand"
	"time"

	"admob-switch/internal/models"
)

// Selector chooses accounts. The zero value is not usable; construct via New.
type Selector struct {
	now  func() time.Time
	intn func(n int) int
}

// Option customizes a Selector, mainly for deterministic tests.
type Option func(*Selector)

// WithClock replaces the wall-clock source used by the rotation strategy.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithRand replaces the random source. intn must return a uniform value in
// [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Selector) { s.intn = intn }
}

func New(opts ...Option) *Selector {
	s := &Selector{now: time.Now, intn: rand.Intn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the account the app instance should use, or nil when no
// active account exists. rule may be nil, in which case the first active
// account wins. List order of accounts is significant: weighted draws and
// tie-breaks are positional.
func (s *Selector) Select(accounts []models.AdmobAccount, rule *models.SwitchingRule) *models.AdmobAccount {
	active := activeOnly(accounts)
	if len(active) == 0 {
		return nil
	}
	if rule == nil {
		return &active[0]
	}

	switch rule.Strategy {
	case models.StrategyWeightedRandom:
		return s.weightedRandom(active)
	case models.StrategyRotation:
		return s.rotation(active, rule.RotationInterval)
	case models.StrategyPriority:
		return priority(active)
	case models.StrategyABTesting:
		return s.abTesting(active)
	default:
		return &active[0]
	}
}

func activeOnly(accounts []models.AdmobAccount) []models.AdmobAccount {
	out := make([]models.AdmobAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// weightedRandom draws a uniform integer in [1, totalWeight] and walks the
// list accumulating weights. Zero total weight falls back to the first
// account.
func (s *Selector) weightedRandom(active []models.AdmobAccount) *models.AdmobAccount {
	total := 0
	for _, a := range active {
		total += a.Weight
	}
	if total <= 0 {
		return &active[0]
	}

	draw := s.intn(total) + 1
	cum := 0
	for i := range active {
		cum += active[i].Weight
		if draw <= cum {
			return &active[i]
		}
	}
	return &active[0]
}

// rotation maps a coarse time bucket onto a list index, so every caller
// within the same bucket gets the same account without coordination.
func (s *Selector) rotation(active []models.AdmobAccount, interval string) *models.AdmobAccount {
	idx := timeBucket(s.now(), interval) % len(active)
	return &active[idx]
}

func timeBucket(now time.Time, interval string) int {
	switch interval {
	case models.IntervalHourly:
		return now.Year()*1_000_000 + int(now.Month())*10_000 + now.Day()*100 + now.Hour()
	case models.IntervalWeekly:
		y, w := now.ISOWeek()
		return y*100 + w
	case models.IntervalMonthly:
		return now.Year()*100 + int(now.Month())
	default: // daily, and any unknown interval
		return now.Year()*10_000 + int(now.Month())*100 + now.Day()
	}
}

// priority returns the account with the maximum priority value, first
// encountered winning ties.
func priority(active []models.AdmobAccount) *models.AdmobAccount {
	best := 0
	for i := 1; i < len(active); i++ {
		if active[i].Priority > active[best].Priority {
			best = i
		}
	}
	return &active[best]
}

// abTesting splits traffic uniformly across the active set.
func (s *Selector) abTesting(active []models.AdmobAccount) *models.AdmobAccount {
	if len(active) == 1 {
		return &active[0]
	}
	return &active[s.intn(len(active))]
}
