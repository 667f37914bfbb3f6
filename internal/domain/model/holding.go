package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// MutualFundHolding is a read-only snapshot of one folio as reported by the
// fund registry.
type MutualFundHolding struct {
	folioID         string
	fundName        string
	fundType        valueobject.FundType
	navPerUnit      decimal.Decimal
	unitsHeld       decimal.Decimal
	acquisitionDate time.Time
}

// NewMutualFundHolding validates and creates a holding.
func NewMutualFundHolding(
	folioID, fundName string,
	fundType valueobject.FundType,
	navPerUnit, unitsHeld decimal.Decimal,
	acquisitionDate time.Time,
) (MutualFundHolding, error) {
	if folioID == "" {
		return MutualFundHolding{}, errors.New("folio ID is required")
	}
	if fundType.IsZero() {
		return MutualFundHolding{}, errors.New("fund type is required")
	}
	if navPerUnit.LessThanOrEqual(decimal.Zero) {
		return MutualFundHolding{}, errors.New("NAV per unit must be positive")
	}
	if unitsHeld.LessThanOrEqual(decimal.Zero) {
		return MutualFundHolding{}, errors.New("units held must be positive")
	}
	return MutualFundHolding{
		folioID:         folioID,
		fundName:        fundName,
		fundType:        fundType,
		navPerUnit:      navPerUnit,
		unitsHeld:       unitsHeld,
		acquisitionDate: acquisitionDate,
	}, nil
}

func (h MutualFundHolding) FolioID() string                { return h.folioID }
func (h MutualFundHolding) FundName() string               { return h.fundName }
func (h MutualFundHolding) FundType() valueobject.FundType { return h.fundType }
func (h MutualFundHolding) NAVPerUnit() decimal.Decimal    { return h.navPerUnit }
func (h MutualFundHolding) UnitsHeld() decimal.Decimal     { return h.unitsHeld }
func (h MutualFundHolding) AcquisitionDate() time.Time     { return h.acquisitionDate }

// CurrentValue is NAV × units.
func (h MutualFundHolding) CurrentValue() decimal.Decimal {
	return h.navPerUnit.Mul(h.unitsHeld)
}
