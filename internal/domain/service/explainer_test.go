package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikhilpunky/manaja2/internal/domain/model"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

func TestExplainer_RejectionReasonsOrder(t *testing.T) {
	e := NewExplainer(DefaultPolicy().Texts, DefaultPolicy().Triggers)
	rs := RiskScore{
		Category: valueobject.RiskVeryHigh,
		Factors: model.RiskFactors{
			NormalizedCreditScore: dec("10"),
			IncomeAdequacy:        dec("20"),
			LoanToValue:           dec("120"),
			EmploymentStability:   dec("30"),
		},
	}

	assert.Equal(t, []string{
		"Poor credit history",
		"Insufficient income for requested loan amount",
		"Requested loan amount too high relative to portfolio value",
		"Insufficient employment stability",
	}, e.RejectionReasons(rs))
	assert.Nil(t, e.ApprovalConditions(rs))
}

func TestExplainer_RejectionWithNoWeakFactor(t *testing.T) {
	e := NewExplainer(DefaultPolicy().Texts, DefaultPolicy().Triggers)
	rs := RiskScore{
		Category: valueobject.RiskVeryHigh,
		Factors: model.RiskFactors{
			NormalizedCreditScore: dec("50"),
			IncomeAdequacy:        dec("60"),
			LoanToValue:           dec("75"),
			EmploymentStability:   dec("50"),
		},
	}

	reasons := e.RejectionReasons(rs)
	assert.NotNil(t, reasons)
	assert.Empty(t, reasons)
}

func TestExplainer_ApprovalConditions(t *testing.T) {
	e := NewExplainer(DefaultPolicy().Texts, DefaultPolicy().Triggers)
	tests := []struct {
		name     string
		category valueobject.RiskCategory
		ltv      string
		want     []string
	}{
		{"low never has conditions", valueobject.RiskLow, "79", nil},
		{"medium with modest LTV", valueobject.RiskMedium, "60", nil},
		{"medium with high LTV", valueobject.RiskMedium, "60.01", []string{
			"Additional mutual fund units to be pledged as collateral",
		}},
		{"high with modest LTV", valueobject.RiskHigh, "40", []string{
			"6-month bank statements required for verification",
			"Additional guarantor may be required",
		}},
		{"high with high LTV", valueobject.RiskHigh, "66", []string{
			"Additional mutual fund units to be pledged as collateral",
			"6-month bank statements required for verification",
			"Additional guarantor may be required",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := RiskScore{
				Approved: true,
				Category: tt.category,
				Factors:  model.RiskFactors{LoanToValue: dec(tt.ltv)},
			}
			assert.Equal(t, tt.want, e.ApprovalConditions(rs))
			assert.Nil(t, e.RejectionReasons(rs))
		})
	}
}

func TestExplainer_TriggersComeFromPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.Triggers.WeakSubScore = dec("60")
	p.Triggers.RejectionLTV = dec("50")
	p.Triggers.CollateralConditionLTV = dec("70")
	e := NewExplainer(p.Texts, p.Triggers)

	rejected := RiskScore{
		Category: valueobject.RiskVeryHigh,
		Factors: model.RiskFactors{
			NormalizedCreditScore: dec("55"),
			IncomeAdequacy:        dec("60"),
			LoanToValue:           dec("55"),
			EmploymentStability:   dec("90"),
		},
	}
	assert.Equal(t, []string{
		"Poor credit history",
		"Requested loan amount too high relative to portfolio value",
	}, e.RejectionReasons(rejected))

	approved := RiskScore{
		Approved: true,
		Category: valueobject.RiskMedium,
		Factors:  model.RiskFactors{LoanToValue: dec("66")},
	}
	assert.Nil(t, e.ApprovalConditions(approved), "LTV 66 is under the raised collateral trigger")
}
