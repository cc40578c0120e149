package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func goalResult(t *testing.T) model.Result {
	t.Helper()
	res, err := projection.Run(model.Params{
		InitialBalance:      15000,
		MonthlyContribution: 1100,
		AnnualGrowthRate:    0.105,
		AnnualYieldRate:     0.069,
		TargetIncome:        1320,
		BenchmarkRate:       0.1365,
	})
	require.NoError(t, err)
	return res
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	res := goalResult(t)

	id, err := s.SaveRun(res)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	got, err := s.LoadRun(id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, model.ModeGoal, got.Mode)
	assert.Equal(t, res.Params, got.Params)
	assert.Equal(t, 85, got.Months)
	assert.True(t, got.ReachedTarget)
	assert.Equal(t, "229673.69", got.FinalBalance.String())
	assert.Equal(t, "108500", got.Contributed.String())
	assert.Equal(t, res.Series, got.Series)

	rebuilt := got.Result()
	assert.InDelta(t, res.Final.Balance, rebuilt.Final.Balance, 0.005)
	assert.InDelta(t, res.Benchmark, rebuilt.Benchmark, 0.005)
	assert.Equal(t, res.Series.Len(), rebuilt.Series.Len())
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	res := goalResult(t)

	first, err := s.SaveRun(res)
	require.NoError(t, err)
	second, err := s.SaveRun(projection.Horizon(res.Params.WithDuration(10, 0)))
	require.NoError(t, err)

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, model.ModeHorizon, runs[0].Mode)
	assert.Equal(t, first, runs[1].ID)
	assert.Zero(t, runs[0].Series.Len(), "ListRuns does not load samples")

	limited, err := s.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second, limited[0].ID)

	n, err := s.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeleteRunCascadesSamples(t *testing.T) {
	s := openTestStore(t)
	id, err := s.SaveRun(goalResult(t))
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(id))

	_, err = s.LoadRun(id)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(id), ErrRunNotFound)

	var samples int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM run_samples").Scan(&samples))
	assert.Zero(t, samples)
}

func TestResolveID(t *testing.T) {
	s := openTestStore(t)
	id, err := s.SaveRun(goalResult(t))
	require.NoError(t, err)

	got, err := s.ResolveID(id.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = s.ResolveID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.ResolveID("zzzz")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.ResolveID(" ")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestPathHonorsXDGCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "snowball", "history.db"), Path())
}

func TestSaveRunRejectsNonFiniteResult(t *testing.T) {
	s := openTestStore(t)

	// growth below -100% a year has no real monthly root
	res, err := projection.Run(model.Params{
		InitialBalance:      15000,
		MonthlyContribution: 1000,
		AnnualGrowthRate:    -2,
		AnnualYieldRate:     0.069,
		DurationMonths:      12,
	})
	require.NoError(t, err)
	require.False(t, res.Finite())

	id, err := s.SaveRun(res)
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.Equal(t, uuid.Nil, id)

	n, err := s.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}
