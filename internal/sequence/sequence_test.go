package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func (m *memCounter) Next(_ context.Context, prefix, bucket string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]int64{}
	}
	m.values[prefix+"|"+bucket]++
	return m.values[prefix+"|"+bucket], nil
}

func TestFiscalYearLabel(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 4, 1, 0, 0, 0, 0, IST), "FY2526"},
		{time.Date(2026, 3, 31, 23, 59, 0, 0, IST), "FY2526"},
		{time.Date(2026, 4, 1, 0, 0, 0, 0, IST), "FY2627"},
		{time.Date(2025, 1, 15, 10, 0, 0, 0, IST), "FY2425"},
		{time.Date(2099, 6, 1, 0, 0, 0, 0, IST), "FY9900"},
		// 2026-03-31 20:00 UTC is already April 1 in IST
		{time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC), "FY2627"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FiscalYearLabel(tt.at), tt.at.String())
	}
}

func TestBucketUsesIST(t *testing.T) {
	at := time.Date(2025, 10, 17, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "251018", Bucket(Daily, at))
	assert.Equal(t, "FY2526", Bucket(FiscalYear, at))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "UORN-251018-0007", Format("UORN", "251018", Daily, 7))
	assert.Equal(t, "TAX-FY2526-00042", Format("TAX", "FY2526", FiscalYear, 42))
	assert.Equal(t, "INV-251018-12345", Format("INV", "251018", Daily, 12345))
}

func TestGenerator_DailyReset(t *testing.T) {
	g := NewGenerator(&memCounter{})
	ctx := context.Background()
	day1 := time.Date(2025, 10, 18, 9, 0, 0, 0, IST)
	day2 := day1.Add(24 * time.Hour)

	first, err := g.Next(ctx, "UORN", day1)
	require.NoError(t, err)
	second, err := g.Next(ctx, "uorn", day1)
	require.NoError(t, err)
	nextDay, err := g.Next(ctx, "UORN", day2)
	require.NoError(t, err)

	assert.Equal(t, "UORN-251018-0001", first)
	assert.Equal(t, "UORN-251018-0002", second)
	assert.Equal(t, "UORN-251019-0001", nextDay)
}

func TestGenerator_TaxInvoiceSpansFiscalYear(t *testing.T) {
	g := NewGenerator(&memCounter{})
	ctx := context.Background()

	a, err := g.Next(ctx, "TAX", time.Date(2025, 5, 1, 0, 0, 0, 0, IST))
	require.NoError(t, err)
	b, err := g.Next(ctx, "TAX", time.Date(2026, 2, 1, 0, 0, 0, 0, IST))
	require.NoError(t, err)
	c, err := g.Next(ctx, "TAX", time.Date(2026, 4, 1, 0, 0, 0, 0, IST))
	require.NoError(t, err)

	assert.Equal(t, "TAX-FY2526-00001", a)
	assert.Equal(t, "TAX-FY2526-00002", b)
	assert.Equal(t, "TAX-FY2627-00001", c)
}

func TestGenerator_UniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator(&memCounter{})
	at := time.Date(2025, 10, 18, 9, 0, 0, 0, IST)

	const n = 50
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := g.Next(context.Background(), "INV", at)
			if err == nil {
				results <- s
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for s := range results {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, n)
}

func TestGenerator_EmptyPrefix(t *testing.T) {
	_, err := NewGenerator(&memCounter{}).Next(context.Background(), "  ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}
