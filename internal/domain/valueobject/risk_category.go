package valueobject

import "fmt"

// RiskCategory is the ordinal bucket derived from a composite risk score.
// "high" is elevated but still approvable; "very_high" is the worst tier.
type RiskCategory struct {
	value    string
	severity int
}

const (
	riskLow      = "low"
	riskMedium   = "medium"
	riskHigh     = "high"
	riskVeryHigh = "very_high"
)

var (
	RiskLow      = RiskCategory{value: riskLow, severity: 0}
	RiskMedium   = RiskCategory{value: riskMedium, severity: 1}
	RiskHigh     = RiskCategory{value: riskHigh, severity: 2}
	RiskVeryHigh = RiskCategory{value: riskVeryHigh, severity: 3}
)

var validRiskCategories = map[string]RiskCategory{
	riskLow:      RiskLow,
	riskMedium:   RiskMedium,
	riskHigh:     RiskHigh,
	riskVeryHigh: RiskVeryHigh,
}

// NewRiskCategory creates a RiskCategory from its string form.
func NewRiskCategory(s string) (RiskCategory, error) {
	v, ok := validRiskCategories[s]
	if !ok {
		return RiskCategory{}, fmt.Errorf("invalid risk category: %q", s)
	}
	return v, nil
}

// RiskCategories returns all categories ordered from least to most severe.
func RiskCategories() []RiskCategory {
	return []RiskCategory{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}
}

// Severity orders categories: low=0 through very_high=3.
func (r RiskCategory) Severity() int { return r.severity }

// String returns the string representation of the category.
func (r RiskCategory) String() string { return r.value }

// IsZero returns true if the category has not been initialised.
func (r RiskCategory) IsZero() bool { return r.value == "" }

// Equal returns true when both categories carry the same value.
func (r RiskCategory) Equal(other RiskCategory) bool { return r.value == other.value }

// MarshalText encodes the category as its string form.
func (r RiskCategory) MarshalText() ([]byte, error) { return []byte(r.value), nil }

// UnmarshalText decodes a category from its string form.
func (r *RiskCategory) UnmarshalText(b []byte) error {
	v, err := NewRiskCategory(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
