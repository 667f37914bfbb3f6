package valueobject

import "fmt"

// LoanType is the mutual-fund-backed loan product an applicant chooses.
type LoanType struct {
	value string
}

const (
	loanTypeShortTerm  = "short_term_mf"
	loanTypeMediumTerm = "medium_term_mf"
	loanTypeLongTerm   = "long_term_mf"
)

var (
	LoanTypeShortTerm  = LoanType{value: loanTypeShortTerm}
	LoanTypeMediumTerm = LoanType{value: loanTypeMediumTerm}
	LoanTypeLongTerm   = LoanType{value: loanTypeLongTerm}
)

var validLoanTypes = map[string]LoanType{
	loanTypeShortTerm:  LoanTypeShortTerm,
	loanTypeMediumTerm: LoanTypeMediumTerm,
	loanTypeLongTerm:   LoanTypeLongTerm,
}

// NewLoanType parses a loan type. An empty string selects the short-term
// product; any other unknown value is an error.
func NewLoanType(s string) (LoanType, error) {
	if s == "" {
		return LoanTypeShortTerm, nil
	}
	v, ok := validLoanTypes[s]
	if !ok {
		return LoanType{}, fmt.Errorf("invalid loan type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the loan type.
func (t LoanType) String() string { return t.value }

// IsZero returns true if the loan type has not been initialised.
func (t LoanType) IsZero() bool { return t.value == "" }

// Equal returns true when both loan types carry the same value.
func (t LoanType) Equal(other LoanType) bool { return t.value == other.value }
