package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

func TestEstimateCreditScore(t *testing.T) {
	tests := []struct {
		name     string
		income   int64
		emp      valueobject.EmploymentType
		existing bool
		amount   int64
		tenure   int
		want     int
	}{
		{"strong salaried applicant", 1_200_000, valueobject.EmploymentSalaried, false, 200_000, 24, 900},
		{"unemployed with existing loans", 200_000, valueobject.EmploymentUnemployed, true, 900_000, 6, 450},
		{"clamped at 900", 2_000_000, valueobject.EmploymentSalaried, false, 100_000, 60, 900},
		{"ratio exactly 1.0 is not above 1.0", 500_000, valueobject.EmploymentOther, false, 500_000, 12, 660},
		{"ratio exactly 0.3 carries no penalty", 1_000_000, valueobject.EmploymentOther, false, 300_000, 36, 810},
		{"self-employed long tenure", 700_000, valueobject.EmploymentSelfEmployed, false, 100_000, 48, 860},
		{"business owner with existing loans", 300_000, valueobject.EmploymentBusinessOwner, true, 120_000, 11, 670},
		{"retired has no employment adjustment", 1_000_000, valueobject.EmploymentRetired, false, 100_000, 24, 800},
		{"income bracket lower bound is inclusive", 1_500_000, valueobject.EmploymentOther, false, 100_000, 6, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.EstimateCreditScore(service.CreditProfile{
				AnnualIncome:     decimal.NewFromInt(tt.income),
				EmploymentType:   tt.emp,
				HasExistingLoans: tt.existing,
				LoanAmount:       decimal.NewFromInt(tt.amount),
				TenureMonths:     tt.tenure,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateCreditScore_AlwaysWithinBounds(t *testing.T) {
	incomes := []int64{1, 150_000, 300_000, 699_999, 1_000_000, 5_000_000}
	amounts := []int64{1, 50_000, 350_000, 1_000_000, 10_000_000}
	tenures := []int{1, 12, 24, 36, 48, 120}

	for _, income := range incomes {
		for _, amount := range amounts {
			for _, tenure := range tenures {
				for _, emp := range valueobject.EmploymentTypes() {
					for _, existing := range []bool{false, true} {
						score := service.EstimateCreditScore(service.CreditProfile{
							AnnualIncome:     decimal.NewFromInt(income),
							EmploymentType:   emp,
							HasExistingLoans: existing,
							LoanAmount:       decimal.NewFromInt(amount),
							TenureMonths:     tenure,
						})
						assert.GreaterOrEqual(t, score, 300)
						assert.LessOrEqual(t, score, 900)
					}
				}
			}
		}
	}
}
