package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// DefaultFolios are looked up when the applicant names no folios.
var DefaultFolios = []string{"MF123456", "MF789012", "MF345678"}

var (
	simulatedFundTypes = []valueobject.FundType{
		valueobject.FundTypeEquity,
		valueobject.FundTypeDebt,
		valueobject.FundTypeHybrid,
		valueobject.FundTypeIndex,
		valueobject.FundTypeLiquid,
	}
	simulatedFundNames = []string{
		"HDFC Top 100 Fund",
		"SBI Bluechip Fund",
		"Axis Long Term Equity Fund",
		"ICICI Prudential Liquid Fund",
		"Kotak Standard Multicap Fund",
	}
)

// SimulatedFundRegistry is a development adapter that fabricates one holding
// per folio. The i-th folio gets the i-th fund type and name (cycling), a NAV
// of 250+50i, 100+20i units and an acquisition date 180·(i+1) days back.
// It implements port.HoldingsRegistry.
type SimulatedFundRegistry struct {
	now func() time.Time
}

// NewSimulatedFundRegistry creates a registry; now defaults to time.Now.
func NewSimulatedFundRegistry(now func() time.Time) *SimulatedFundRegistry {
	if now == nil {
		now = time.Now
	}
	return &SimulatedFundRegistry{now: now}
}

func (r *SimulatedFundRegistry) LookupHoldings(_ context.Context, pan string, folios []string) ([]model.MutualFundHolding, error) {
	if pan == "" {
		return nil, fmt.Errorf("fund registry: PAN is required")
	}
	if len(folios) == 0 {
		folios = DefaultFolios
	}

	asOf := r.now().UTC()
	holdings := make([]model.MutualFundHolding, 0, len(folios))
	for i, folio := range folios {
		h, err := model.NewMutualFundHolding(
			folio,
			simulatedFundNames[i%len(simulatedFundNames)],
			simulatedFundTypes[i%len(simulatedFundTypes)],
			decimal.NewFromInt(int64(250+50*i)),
			decimal.NewFromInt(int64(100+20*i)),
			asOf.AddDate(0, 0, -180*(i+1)),
		)
		if err != nil {
			return nil, fmt.Errorf("fund registry: folio %s: %w", folio, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}
