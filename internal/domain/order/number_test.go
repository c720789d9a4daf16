package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/backend/internal/domain/shared"
)

type fixedCounter struct {
	mu    sync.Mutex
	count map[string]int64
	err   error
}

func (c *fixedCounter) CountOrdersByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.count[prefix], nil
}

type memSequence struct {
	mu     sync.Mutex
	values map[string]int64
}

func (s *memSequence) NextValue(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]int64)
	}
	s.values[key]++
	return s.values[key], nil
}

// countingLocker records how often the critical section was entered.
type countingLocker struct {
	sync.Mutex
	locks int
}

func (l *countingLocker) Lock() {
	l.Mutex.Lock()
	l.locks++
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var day = time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)

func TestFormatNumber(t *testing.T) {
	n, err := FormatNumber(day, 7)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260314-0007", n)

	n, err = FormatNumber(day, MaxDailySequence)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260314-9999", n)

	_, err = FormatNumber(day, MaxDailySequence+1)
	assert.ErrorIs(t, err, shared.ErrCapacityExceeded)

	_, err = FormatNumber(day, 0)
	assert.Equal(t, shared.CodeInvalidInput, shared.CodeOf(err))
}

func TestNumberPrefix_UsesUTCDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	local := time.Date(2026, 3, 15, 7, 0, 0, 0, tokyo) // 2026-03-14 22:00 UTC
	assert.Equal(t, "ORD-20260314", NumberPrefix(local))
}

func TestParseNumber(t *testing.T) {
	date, seq, err := ParseNumber("ORD-20260314-0042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), date)

	for _, bad := range []string{"", "ORD-2026031-0042", "XRD-20260314-0042", "ORD-20261314-0042", "ORD-20260314-00A2", "ORD-20260314-0000", "ORD_20260314_0042"} {
		_, _, err := ParseNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestCountingNumberGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("continues after stored orders", func(t *testing.T) {
		counter := &fixedCounter{count: map[string]int64{"ORD-20260314": 41}}
		g := NewCountingNumberGenerator(counter, nil, fixedClock(day))
		n, err := g.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260314-0042", n)
	})

	t.Run("does not reissue numbers that are not stored yet", func(t *testing.T) {
		counter := &fixedCounter{count: map[string]int64{}}
		g := NewCountingNumberGenerator(counter, nil, fixedClock(day))
		a, err := g.Next(ctx)
		require.NoError(t, err)
		b, err := g.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260314-0001", a)
		assert.Equal(t, "ORD-20260314-0002", b)
	})

	t.Run("new day restarts the sequence", func(t *testing.T) {
		now := day
		counter := &fixedCounter{count: map[string]int64{}}
		g := NewCountingNumberGenerator(counter, nil, func() time.Time { return now })
		_, err := g.Next(ctx)
		require.NoError(t, err)
		now = day.Add(time.Hour)
		n, err := g.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260315-0001", n)
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		counter := &fixedCounter{count: map[string]int64{"ORD-20260314": MaxDailySequence}}
		g := NewCountingNumberGenerator(counter, nil, fixedClock(day))
		_, err := g.Next(ctx)
		assert.ErrorIs(t, err, shared.ErrCapacityExceeded)
	})

	t.Run("counter errors are wrapped", func(t *testing.T) {
		boom := errors.New("db down")
		g := NewCountingNumberGenerator(&fixedCounter{err: boom}, nil, fixedClock(day))
		_, err := g.Next(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("uses the injected lock", func(t *testing.T) {
		lock := &countingLocker{}
		g := NewCountingNumberGenerator(&fixedCounter{count: map[string]int64{}}, lock, fixedClock(day))
		for range 3 {
			_, err := g.Next(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, lock.locks)
	})

	t.Run("concurrent callers get distinct consecutive numbers", func(t *testing.T) {
		const n = 64
		g := NewCountingNumberGenerator(&fixedCounter{count: map[string]int64{}}, nil, fixedClock(day))
		results := make([]string, n)
		var eg errgroup.Group
		for i := range n {
			eg.Go(func() error {
				num, err := g.Next(ctx)
				results[i] = num
				return err
			})
		}
		require.NoError(t, eg.Wait())

		seen := make(map[int]bool, n)
		for _, num := range results {
			_, seq, err := ParseNumber(num)
			require.NoError(t, err)
			assert.False(t, seen[seq], "duplicate %s", num)
			seen[seq] = true
		}
		for seq := 1; seq <= n; seq++ {
			assert.True(t, seen[seq], "missing sequence %d", seq)
		}
	})
}

func TestSequenceNumberGenerator(t *testing.T) {
	ctx := context.Background()
	store := &memSequence{}
	g := NewSequenceNumberGenerator(store, fixedClock(day))

	a, err := g.Next(ctx)
	require.NoError(t, err)
	b, err := g.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260314-0001", a)
	assert.Equal(t, "ORD-20260314-0002", b)

	store.values["ORD-20260314"] = MaxDailySequence
	_, err = g.Next(ctx)
	assert.ErrorIs(t, err, shared.ErrCapacityExceeded)
}
