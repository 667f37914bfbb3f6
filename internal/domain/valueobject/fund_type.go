package valueobject

import (
	"fmt"
	"strings"
)

// FundType classifies a mutual-fund scheme.
type FundType struct {
	value string
}

const (
	fundTypeEquity = "equity"
	fundTypeDebt   = "debt"
	fundTypeHybrid = "hybrid"
	fundTypeIndex  = "index"
	fundTypeLiquid = "liquid"
)

var (
	FundTypeEquity = FundType{value: fundTypeEquity}
	FundTypeDebt   = FundType{value: fundTypeDebt}
	FundTypeHybrid = FundType{value: fundTypeHybrid}
	FundTypeIndex  = FundType{value: fundTypeIndex}
	FundTypeLiquid = FundType{value: fundTypeLiquid}
)

var validFundTypes = map[string]FundType{
	fundTypeEquity: FundTypeEquity,
	fundTypeDebt:   FundTypeDebt,
	fundTypeHybrid: FundTypeHybrid,
	fundTypeIndex:  FundTypeIndex,
	fundTypeLiquid: FundTypeLiquid,
}

// NewFundType parses a fund type case-insensitively ("Equity" and "equity"
// are the same type).
func NewFundType(s string) (FundType, error) {
	v, ok := validFundTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return FundType{}, fmt.Errorf("invalid fund type: %q", s)
	}
	return v, nil
}

// IsEquity reports whether the fund counts towards equity concentration.
func (f FundType) IsEquity() bool { return strings.Contains(f.value, fundTypeEquity) }

// String returns the canonical lower-case form.
func (f FundType) String() string { return f.value }

// IsZero returns true if the type has not been initialised.
func (f FundType) IsZero() bool { return f.value == "" }

// Equal returns true when both types carry the same value.
func (f FundType) Equal(other FundType) bool { return f.value == other.value }
