package valueobject

import (
	"fmt"
	"strings"
)

// EmploymentType is the closed set of employment categories an applicant can
// declare. Unknown values are rejected at construction rather than mapped to a
// catch-all bucket.
type EmploymentType struct {
	value string
}

const (
	employmentSalaried                 = "salaried"
	employmentSelfEmployed             = "self-employed"
	employmentBusinessOwner            = "business-owner"
	employmentUnemployed               = "unemployed"
	employmentOther                    = "other"
	employmentSelfEmployedProfessional = "self-employed-professional"
	employmentSelfEmployedBusiness     = "self-employed-business"
	employmentRetired                  = "retired"
)

var (
	EmploymentSalaried                 = EmploymentType{value: employmentSalaried}
	EmploymentSelfEmployed             = EmploymentType{value: employmentSelfEmployed}
	EmploymentBusinessOwner            = EmploymentType{value: employmentBusinessOwner}
	EmploymentUnemployed               = EmploymentType{value: employmentUnemployed}
	EmploymentOther                    = EmploymentType{value: employmentOther}
	EmploymentSelfEmployedProfessional = EmploymentType{value: employmentSelfEmployedProfessional}
	EmploymentSelfEmployedBusiness     = EmploymentType{value: employmentSelfEmployedBusiness}
	EmploymentRetired                  = EmploymentType{value: employmentRetired}
)

var validEmploymentTypes = map[string]EmploymentType{
	employmentSalaried:                 EmploymentSalaried,
	employmentSelfEmployed:             EmploymentSelfEmployed,
	employmentBusinessOwner:            EmploymentBusinessOwner,
	employmentUnemployed:               EmploymentUnemployed,
	employmentOther:                    EmploymentOther,
	employmentSelfEmployedProfessional: EmploymentSelfEmployedProfessional,
	employmentSelfEmployedBusiness:     EmploymentSelfEmployedBusiness,
	employmentRetired:                  EmploymentRetired,
}

// NewEmploymentType parses a raw employment type. Matching is case-insensitive
// and ignores surrounding whitespace.
func NewEmploymentType(s string) (EmploymentType, error) {
	v, ok := validEmploymentTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return EmploymentType{}, fmt.Errorf("invalid employment type: %q", s)
	}
	return v, nil
}

// EmploymentTypes returns every supported employment type in declaration order.
func EmploymentTypes() []EmploymentType {
	return []EmploymentType{
		EmploymentSalaried,
		EmploymentSelfEmployed,
		EmploymentBusinessOwner,
		EmploymentUnemployed,
		EmploymentOther,
		EmploymentSelfEmployedProfessional,
		EmploymentSelfEmployedBusiness,
		EmploymentRetired,
	}
}

// String returns the canonical lower-case form.
func (e EmploymentType) String() string { return e.value }

// IsZero returns true if the type has not been initialised.
func (e EmploymentType) IsZero() bool { return e.value == "" }

// Equal returns true when both types carry the same value.
func (e EmploymentType) Equal(other EmploymentType) bool { return e.value == other.value }
