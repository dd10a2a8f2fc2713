package selector

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admob-switch/internal/models"
)

func account(id string, status string, priority, weight int) models.AdmobAccount {
	return models.AdmobAccount{ID: id, AccountName: id, Status: status, Priority: priority, Weight: weight}
}

func rule(strategy, interval string) *models.SwitchingRule {
	return &models.SwitchingRule{Strategy: strategy, RotationInterval: interval}
}

func TestSelect_NoActiveAccounts(t *testing.T) {
	s := New()

	assert.Nil(t, s.Select(nil, nil))
	assert.Nil(t, s.Select([]models.AdmobAccount{
		account("a", models.AccountStatusPaused, 1, 50),
		account("b", models.AccountStatusDisabled, 1, 50),
	}, rule(models.StrategyWeightedRandom, "")))
}

func TestSelect_Defaults(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("paused", models.AccountStatusPaused, 9, 100),
		account("first", models.AccountStatusActive, 1, 10),
		account("second", models.AccountStatusActive, 2, 90),
	}

	tests := []struct {
		name string
		rule *models.SwitchingRule
	}{
		{"no rule", nil},
		{"unrecognized strategy", rule("round_robin", "")},
		{"empty strategy", rule("", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().Select(accounts, tt.rule)
			require.NotNil(t, got)
			assert.Equal(t, "first", got.ID, "expected first active account in input order")
		})
	}
}

func TestWeightedRandom_ZeroWeightFallback(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 0),
		account("b", models.AccountStatusActive, 2, 0),
	}
	s := New()

	for i := 0; i < 50; i++ {
		got := s.Select(accounts, rule(models.StrategyWeightedRandom, ""))
		require.NotNil(t, got)
		assert.Equal(t, "a", got.ID)
	}
}

func TestWeightedRandom_BucketBoundaries(t *testing.T) {
	// Weights 70/30: draws 1..70 pick a, 71..100 pick b.
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 70),
		account("b", models.AccountStatusActive, 2, 30),
	}

	tests := []struct {
		draw int // value returned by intn, draw = intn+1
		want string
	}{
		{0, "a"},   // draw 1
		{69, "a"},  // draw 70, boundary
		{70, "b"},  // draw 71
		{99, "b"},  // draw 100
	}

	for _, tt := range tests {
		s := New(WithRand(func(n int) int {
			require.Equal(t, 100, n)
			return tt.draw
		}))
		got := s.Select(accounts, rule(models.StrategyWeightedRandom, ""))
		require.NotNil(t, got)
		assert.Equal(t, tt.want, got.ID, "intn=%d", tt.draw)
	}
}

func TestWeightedRandom_Distribution(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 70),
		account("b", models.AccountStatusActive, 2, 30),
	}
	rng := rand.New(rand.NewSource(1))
	s := New(WithRand(rng.Intn))
	r := rule(models.StrategyWeightedRandom, "")

	const draws = 1000
	picks := map[string]int{}
	for i := 0; i < draws; i++ {
		got := s.Select(accounts, r)
		require.NotNil(t, got)
		picks[got.ID]++
	}

	share := float64(picks["a"]) / draws
	assert.InDelta(t, 0.70, share, 0.05, "account a picked %d/%d", picks["a"], draws)
}

func TestRotation_Deterministic(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 50),
		account("b", models.AccountStatusActive, 2, 50),
		account("c", models.AccountStatusActive, 3, 50),
	}
	at := time.Date(2025, time.March, 14, 15, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return at }))
	r := rule(models.StrategyRotation, models.IntervalDaily)

	first := s.Select(accounts, r)
	second := s.Select(accounts, r)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "same bucket must yield same account")

	// Within the same day the bucket is stable regardless of hour.
	later := New(WithClock(func() time.Time { return at.Add(8 * time.Hour) }))
	got := later.Select(accounts, r)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
}

func TestRotation_AdvancesAcrossBuckets(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 50),
		account("b", models.AccountStatusActive, 2, 50),
	}
	at := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

	// Consecutive daily buckets differ by one, so two accounts alternate.
	day1 := New(WithClock(func() time.Time { return at })).
		Select(accounts, rule(models.StrategyRotation, models.IntervalDaily))
	day2 := New(WithClock(func() time.Time { return at.AddDate(0, 0, 1) })).
		Select(accounts, rule(models.StrategyRotation, models.IntervalDaily))
	require.NotNil(t, day1)
	require.NotNil(t, day2)
	assert.NotEqual(t, day1.ID, day2.ID)
}

func TestRotation_SingleAccount(t *testing.T) {
	accounts := []models.AdmobAccount{account("only", models.AccountStatusActive, 1, 50)}

	for _, interval := range []string{
		models.IntervalHourly, models.IntervalDaily, models.IntervalWeekly, models.IntervalMonthly, "fortnightly",
	} {
		s := New(WithClock(func() time.Time {
			return time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
		}))
		got := s.Select(accounts, rule(models.StrategyRotation, interval))
		require.NotNil(t, got, "interval %q", interval)
		assert.Equal(t, "only", got.ID)
	}
}

func TestTimeBucket(t *testing.T) {
	at := time.Date(2025, time.March, 14, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 2025031415, timeBucket(at, models.IntervalHourly))
	assert.Equal(t, 20250314, timeBucket(at, models.IntervalDaily))
	assert.Equal(t, 202511, timeBucket(at, models.IntervalWeekly)) // ISO week 11
	assert.Equal(t, 202503, timeBucket(at, models.IntervalMonthly))
	assert.Equal(t, 20250314, timeBucket(at, "unknown"), "unknown interval uses daily bucket")
}

func TestPriority_HighestWinsFirstEncounteredOnTie(t *testing.T) {
	accounts := []models.AdmobAccount{
		account("p3", models.AccountStatusActive, 3, 50),
		account("p1", models.AccountStatusActive, 1, 50),
		account("p5-first", models.AccountStatusActive, 5, 50),
		account("p5-second", models.AccountStatusActive, 5, 50),
	}

	got := New().Select(accounts, rule(models.StrategyPriority, ""))
	require.NotNil(t, got)
	assert.Equal(t, "p5-first", got.ID)
}

func TestABTesting(t *testing.T) {
	t.Run("single account short-circuits", func(t *testing.T) {
		s := New(WithRand(func(int) int {
			t.Fatal("random source must not be consulted for a single account")
			return 0
		}))
		got := s.Select(
			[]models.AdmobAccount{account("only", models.AccountStatusActive, 1, 50)},
			rule(models.StrategyABTesting, ""),
		)
		require.NotNil(t, got)
		assert.Equal(t, "only", got.ID)
	})

	t.Run("uniform index over active set", func(t *testing.T) {
		accounts := []models.AdmobAccount{
			account("a", models.AccountStatusActive, 1, 50),
			account("b", models.AccountStatusActive, 2, 50),
			account("c", models.AccountStatusActive, 3, 50),
		}
		s := New(WithRand(func(n int) int {
			require.Equal(t, 3, n)
			return 2
		}))
		got := s.Select(accounts, rule(models.StrategyABTesting, ""))
		require.NotNil(t, got)
		assert.Equal(t, "c", got.ID)
	})
}

func BenchmarkSelect_WeightedRandom(b *testing.B) {
	accounts := []models.AdmobAccount{
		account("a", models.AccountStatusActive, 1, 70),
		account("b", models.AccountStatusActive, 2, 20),
		account("c", models.AccountStatusActive, 3, 10),
	}
	r := rule(models.StrategyWeightedRandom, "")
	s := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Select(accounts, r)
	}
}
