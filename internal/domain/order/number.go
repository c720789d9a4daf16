package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

const (
	numberPrefix      = "ORD"
	numberDateLayout  = "20060102"
	MaxDailySequence  = 9999
	orderNumberLength = len("ORD-YYYYMMDD-NNNN")
)

// Clock returns the current time. Generators read the UTC date from it.
type Clock func() time.Time

// NumberGenerator issues unique, date-scoped order numbers.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// OrderCounter counts stored orders whose number starts with prefix.
type OrderCounter interface {
	CountOrdersByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}

// SequenceStore atomically increments and returns the counter stored under key.
// The first call for a key returns 1.
type SequenceStore interface {
	NextValue(ctx context.Context, key string) (int64, error)
}

// NumberPrefix returns "ORD-YYYYMMDD" for the UTC date of t.
func NumberPrefix(t time.Time) string {
	return numberPrefix + "-" + t.UTC().Format(numberDateLayout)
}

// FormatNumber renders the order number for sequence seq on the UTC date of t.
func FormatNumber(t time.Time, seq int64) (string, error) {
	if seq < 1 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "order sequence must start at 1")
	}
	if seq > MaxDailySequence {
		return "", shared.NewDomainError(shared.CodeCapacityExceeded,
			fmt.Sprintf("daily order capacity of %d exhausted for %s", MaxDailySequence, t.UTC().Format(time.DateOnly)))
	}
	return fmt.Sprintf("%s-%04d", NumberPrefix(t), seq), nil
}

// ParseNumber splits an order number into its UTC date and sequence.
func ParseNumber(s string) (time.Time, int, error) {
	invalid := shared.NewDomainError(shared.CodeInvalidInput, "invalid order number "+s)
	if len(s) != orderNumberLength || !strings.HasPrefix(s, numberPrefix+"-") {
		return time.Time{}, 0, invalid
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, 0, invalid
	}
	date, err := time.ParseInLocation(numberDateLayout, parts[1], time.UTC)
	if err != nil {
		return time.Time{}, 0, invalid
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return time.Time{}, 0, invalid
	}
	return date, seq, nil
}

// CountingNumberGenerator derives the next sequence from the number of stored
// orders for the day. The count and format step runs under mu, which must be
// shared by every generator of the process. It is only correct while a
// single process issues numbers.
type CountingNumberGenerator struct {
	mu      sync.Locker
	counter OrderCounter
	now     Clock

	// highest sequence handed out per prefix; covers numbers that are
	// issued but not yet stored
	issued map[string]int64
}

// NewCountingNumberGenerator creates a generator. A nil lock or clock get a
// fresh mutex and time.Now.
func NewCountingNumberGenerator(counter OrderCounter, mu sync.Locker, now Clock) *CountingNumberGenerator {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	if now == nil {
		now = time.Now
	}
	return &CountingNumberGenerator{
		mu:      mu,
		counter: counter,
		now:     now,
		issued:  make(map[string]int64),
	}
}

func (g *CountingNumberGenerator) Next(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	prefix := NumberPrefix(now)
	count, err := g.counter.CountOrdersByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("count orders for %s: %w", prefix, err)
	}
	seq := max(count, g.issued[prefix]) + 1
	number, err := FormatNumber(now, seq)
	if err != nil {
		return "", err
	}
	if _, ok := g.issued[prefix]; !ok {
		clear(g.issued)
	}
	g.issued[prefix] = seq
	return number, nil
}

// SequenceNumberGenerator takes the next sequence from an atomic store,
// which keeps numbers unique across processes.
type SequenceNumberGenerator struct {
	store SequenceStore
	now   Clock
}

func NewSequenceNumberGenerator(store SequenceStore, now Clock) *SequenceNumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &SequenceNumberGenerator{store: store, now: now}
}

func (g *SequenceNumberGenerator) Next(ctx context.Context) (string, error) {
	now := g.now()
	prefix := NumberPrefix(now)
	seq, err := g.store.NextValue(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("next sequence for %s: %w", prefix, err)
	}
	return FormatNumber(now, seq)
}
