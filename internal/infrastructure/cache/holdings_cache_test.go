package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

type countingRegistry struct {
	calls    int
	holdings []model.MutualFundHolding
	err      error
}

func (r *countingRegistry) LookupHoldings(_ context.Context, _ string, _ []string) ([]model.MutualFundHolding, error) {
	r.calls++
	return r.holdings, r.err
}

type lookupCounter struct{ hits, misses int }

func (c *lookupCounter) RecordCacheLookup(_ string, hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleHoldings(t *testing.T) []model.MutualFundHolding {
	t.Helper()
	acq := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	h1, err := model.NewMutualFundHolding("MF123456", "HDFC Top 100 Fund", valueobject.FundTypeEquity,
		decimal.RequireFromString("250.75"), decimal.NewFromInt(100), acq)
	require.NoError(t, err)
	h2, err := model.NewMutualFundHolding("MF789012", "SBI Bluechip Fund", valueobject.FundTypeDebt,
		decimal.NewFromInt(300), decimal.RequireFromString("120.5"), acq.AddDate(0, 0, -180))
	require.NoError(t, err)
	return []model.MutualFundHolding{h1, h2}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHoldingsCache_ReadThrough(t *testing.T) {
	mr, client := setup(t)
	next := &countingRegistry{holdings: sampleHoldings(t)}
	counter := &lookupCounter{}
	c := NewHoldingsCache(next, client, time.Minute, counter, discard())
	ctx := context.Background()
	folios := []string{"MF123456", "MF789012"}

	first, err := c.LookupHoldings(ctx, "ABCDE1234F", folios)
	require.NoError(t, err)
	second, err := c.LookupHoldings(ctx, "ABCDE1234F", folios)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 1, counter.misses)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].FolioID(), second[i].FolioID())
		assert.Equal(t, first[i].FundName(), second[i].FundName())
		assert.True(t, first[i].FundType().Equal(second[i].FundType()))
		assert.True(t, first[i].CurrentValue().Equal(second[i].CurrentValue()))
		assert.True(t, first[i].AcquisitionDate().Equal(second[i].AcquisitionDate()))
	}

	ttl := mr.TTL(holdingsKey("ABCDE1234F", folios))
	assert.Equal(t, time.Minute, ttl)
}

func TestHoldingsCache_KeyIgnoresFolioOrder(t *testing.T) {
	assert.Equal(t, holdingsKey("P", []string{"A", "B"}), holdingsKey("P", []string{"B", "A"}))
	assert.Equal(t, holdingsKey("P", []string{"A", "B"}), holdingsKey("P", []string{"B", "A", "B"}))
	assert.NotEqual(t, holdingsKey("P", []string{"A"}), holdingsKey("P", []string{"A", "B"}))
	assert.NotEqual(t, holdingsKey("P", []string{"A"}), holdingsKey("Q", []string{"A"}))
	assert.Equal(t, holdingsKey("P", nil), holdingsKey("P", []string{}))

	folios := []string{"B", "A"}
	_ = holdingsKey("P", folios)
	assert.Equal(t, []string{"B", "A"}, folios, "caller's slice is not reordered")
}

func TestHoldingsCache_ReorderedFoliosShareEntry(t *testing.T) {
	_, client := setup(t)
	sample := sampleHoldings(t)
	next := &countingRegistry{holdings: []model.MutualFundHolding{sample[1], sample[0]}}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())
	ctx := context.Background()

	miss, err := c.LookupHoldings(ctx, "ABCDE1234F", []string{"MF789012", "MF123456"})
	require.NoError(t, err)
	hit, err := c.LookupHoldings(ctx, "ABCDE1234F", []string{"MF123456", "MF789012"})
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	require.Len(t, miss, 2)
	require.Len(t, hit, 2)
	for i, want := range []string{"MF123456", "MF789012"} {
		assert.Equal(t, want, miss[i].FolioID())
		assert.Equal(t, want, hit[i].FolioID())
	}
	assert.Equal(t, "MF789012", next.holdings[0].FolioID(), "registry result is not reordered in place")
}

func TestHoldingsCache_Expiry(t *testing.T) {
	mr, client := setup(t)
	next := &countingRegistry{holdings: sampleHoldings(t)}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())
	ctx := context.Background()

	_, err := c.LookupHoldings(ctx, "ABCDE1234F", nil)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = c.LookupHoldings(ctx, "ABCDE1234F", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestHoldingsCache_Invalidate(t *testing.T) {
	_, client := setup(t)
	next := &countingRegistry{holdings: sampleHoldings(t)}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())
	ctx := context.Background()

	_, err := c.LookupHoldings(ctx, "ABCDE1234F", nil)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "ABCDE1234F", nil))
	_, err = c.LookupHoldings(ctx, "ABCDE1234F", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestHoldingsCache_RegistryErrorNotCached(t *testing.T) {
	mr, client := setup(t)
	next := &countingRegistry{err: errors.New("registry down")}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())

	_, err := c.LookupHoldings(context.Background(), "ABCDE1234F", nil)
	assert.EqualError(t, err, "registry down")
	assert.Empty(t, mr.Keys())
}

func TestHoldingsCache_CorruptEntryIsRefetched(t *testing.T) {
	mr, client := setup(t)
	next := &countingRegistry{holdings: sampleHoldings(t)}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())
	require.NoError(t, mr.Set(holdingsKey("ABCDE1234F", nil), "{not json"))

	holdings, err := c.LookupHoldings(context.Background(), "ABCDE1234F", nil)
	require.NoError(t, err)
	assert.Len(t, holdings, 2)
	assert.Equal(t, 1, next.calls)
}

func TestHoldingsCache_RedisDownDegrades(t *testing.T) {
	mr, client := setup(t)
	next := &countingRegistry{holdings: sampleHoldings(t)}
	c := NewHoldingsCache(next, client, time.Minute, nil, discard())
	mr.Close()

	holdings, err := c.LookupHoldings(context.Background(), "ABCDE1234F", nil)
	require.NoError(t, err)
	assert.Len(t, holdings, 2)
	assert.Equal(t, 1, next.calls)
}
