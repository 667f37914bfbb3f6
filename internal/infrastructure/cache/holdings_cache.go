// Package cache provides a Redis read-through cache in front of the mutual
// fund holdings registry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/port"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

const keyPrefix = "lending:holdings:"

// LookupRecorder counts cache hits and misses.
type LookupRecorder interface {
	RecordCacheLookup(cache string, hit bool)
}

// HoldingsCache wraps a HoldingsRegistry with a Redis read-through cache.
// Entries are keyed on the set of folios, so holdings come back ordered by
// folio ID whatever the request order. Redis failures degrade to a direct
// registry lookup.
// It implements port.HoldingsRegistry.
type HoldingsCache struct {
	next    port.HoldingsRegistry
	client  redis.Cmdable
	ttl     time.Duration
	metrics LookupRecorder
	logger  *slog.Logger
}

// NewHoldingsCache creates a new cache. metrics may be nil.
func NewHoldingsCache(next port.HoldingsRegistry, client redis.Cmdable, ttl time.Duration, metrics LookupRecorder, logger *slog.Logger) *HoldingsCache {
	return &HoldingsCache{
		next:    next,
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

type cachedHolding struct {
	FolioID         string    `json:"folio_id"`
	FundName        string    `json:"fund_name"`
	FundType        string    `json:"fund_type"`
	NAVPerUnit      string    `json:"nav_per_unit"`
	UnitsHeld       string    `json:"units_held"`
	AcquisitionDate time.Time `json:"acquisition_date"`
}

func (c *HoldingsCache) LookupHoldings(ctx context.Context, pan string, folios []string) ([]model.MutualFundHolding, error) {
	key := holdingsKey(pan, folios)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		holdings, decErr := decodeHoldings(raw)
		if decErr == nil {
			c.record(true)
			return holdings, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt holdings cache entry", "key", key, "error", decErr)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "holdings cache read failed", "error", err)
	}
	c.record(false)

	holdings, err := c.next.LookupHoldings(ctx, pan, folios)
	if err != nil {
		return nil, err
	}
	holdings = slices.Clone(holdings)
	slices.SortStableFunc(holdings, func(a, b model.MutualFundHolding) int {
		return strings.Compare(a.FolioID(), b.FolioID())
	})

	payload, err := encodeHoldings(holdings)
	if err != nil {
		return nil, fmt.Errorf("holdings cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "holdings cache write failed", "error", err)
	}
	return holdings, nil
}

// Invalidate drops the cached entry for pan and folios.
func (c *HoldingsCache) Invalidate(ctx context.Context, pan string, folios []string) error {
	if err := c.client.Del(ctx, holdingsKey(pan, folios)).Err(); err != nil {
		return fmt.Errorf("holdings cache: invalidate: %w", err)
	}
	return nil
}

func (c *HoldingsCache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup("holdings", hit)
	}
}

// holdingsKey hashes the sorted, de-duplicated folio list.
func holdingsKey(pan string, folios []string) string {
	set := slices.Clone(folios)
	slices.Sort(set)
	set = slices.Compact(set)
	sum := sha256.Sum256([]byte(strings.Join(set, "\x00")))
	return keyPrefix + pan + ":" + hex.EncodeToString(sum[:8])
}

func encodeHoldings(holdings []model.MutualFundHolding) ([]byte, error) {
	out := make([]cachedHolding, len(holdings))
	for i, h := range holdings {
		out[i] = cachedHolding{
			FolioID:         h.FolioID(),
			FundName:        h.FundName(),
			FundType:        h.FundType().String(),
			NAVPerUnit:      h.NAVPerUnit().String(),
			UnitsHeld:       h.UnitsHeld().String(),
			AcquisitionDate: h.AcquisitionDate(),
		}
	}
	return json.Marshal(out)
}

func decodeHoldings(raw []byte) ([]model.MutualFundHolding, error) {
	var in []cachedHolding
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	out := make([]model.MutualFundHolding, 0, len(in))
	for _, c := range in {
		ft, err := valueobject.NewFundType(c.FundType)
		if err != nil {
			return nil, err
		}
		nav, err := decimal.NewFromString(c.NAVPerUnit)
		if err != nil {
			return nil, err
		}
		units, err := decimal.NewFromString(c.UnitsHeld)
		if err != nil {
			return nil, err
		}
		h, err := model.NewMutualFundHolding(c.FolioID, c.FundName, ft, nav, units, c.AcquisitionDate)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
