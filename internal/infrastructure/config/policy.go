package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nikhilpunky/manaja2/internal/domain/service"
	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// policyFile mirrors service.Policy as a sparse YAML document. Every field is
// optional; anything left out keeps its default.
type policyFile struct {
	Weights struct {
		CreditScore         *string `yaml:"credit_score"`
		IncomeAdequacy      *string `yaml:"income_adequacy"`
		LoanToValue         *string `yaml:"loan_to_value"`
		EmploymentStability *string `yaml:"employment_stability"`
		RepaymentHistory    *string `yaml:"repayment_history"`
	} `yaml:"weights"`
	Penalties struct {
		ExistingLoans     *string `yaml:"existing_loans"`
		LowIncomeAdequacy *string `yaml:"low_income_adequacy"`
		HighLoanToValue   *string `yaml:"high_loan_to_value"`
		PoorCreditHistory *string `yaml:"poor_credit_history"`
	} `yaml:"penalties"`
	Triggers struct {
		WeakSubScore           *string `yaml:"weak_sub_score"`
		PenaltyLTV             *string `yaml:"penalty_ltv"`
		RejectionLTV           *string `yaml:"rejection_ltv"`
		CollateralConditionLTV *string `yaml:"collateral_condition_ltv"`
	} `yaml:"triggers"`
	Thresholds struct {
		Low    *string `yaml:"low"`
		Medium *string `yaml:"medium"`
		High   *string `yaml:"high"`
	} `yaml:"thresholds"`
	Pricing map[string]struct {
		LTVCap          *string `yaml:"ltv_cap"`
		InterestRate    *string `yaml:"interest_rate"`
		MaxTenureMonths *int    `yaml:"max_tenure_months"`
	} `yaml:"pricing"`
	Texts struct {
		PoorCredit           *string `yaml:"poor_credit"`
		InsufficientIncome   *string `yaml:"insufficient_income"`
		ExcessiveLoanToValue *string `yaml:"excessive_loan_to_value"`
		UnstableEmployment   *string `yaml:"unstable_employment"`
		AdditionalCollateral *string `yaml:"additional_collateral"`
		BankStatements       *string `yaml:"bank_statements"`
		Guarantor            *string `yaml:"guarantor"`
	} `yaml:"texts"`
}

// LoadPolicy returns the default underwriting policy, overridden by the YAML
// file at path when path is not empty. The result is validated.
func LoadPolicy(path string) (service.Policy, error) {
	if path == "" {
		return service.DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Policy{}, fmt.Errorf("config: read risk policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy applies a YAML policy document on top of the default policy.
// Unknown keys are rejected.
func ParsePolicy(data []byte) (service.Policy, error) {
	var f policyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return service.Policy{}, fmt.Errorf("config: parse risk policy: %w", err)
	}

	p := service.DefaultPolicy()
	o := overrider{}

	o.dec(&p.Weights.CreditScore, f.Weights.CreditScore, "weights.credit_score")
	o.dec(&p.Weights.IncomeAdequacy, f.Weights.IncomeAdequacy, "weights.income_adequacy")
	o.dec(&p.Weights.LoanToValue, f.Weights.LoanToValue, "weights.loan_to_value")
	o.dec(&p.Weights.EmploymentStability, f.Weights.EmploymentStability, "weights.employment_stability")
	o.dec(&p.Weights.RepaymentHistory, f.Weights.RepaymentHistory, "weights.repayment_history")

	o.dec(&p.Penalties.ExistingLoans, f.Penalties.ExistingLoans, "penalties.existing_loans")
	o.dec(&p.Penalties.LowIncomeAdequacy, f.Penalties.LowIncomeAdequacy, "penalties.low_income_adequacy")
	o.dec(&p.Penalties.HighLoanToValue, f.Penalties.HighLoanToValue, "penalties.high_loan_to_value")
	o.dec(&p.Penalties.PoorCreditHistory, f.Penalties.PoorCreditHistory, "penalties.poor_credit_history")

	o.dec(&p.Triggers.WeakSubScore, f.Triggers.WeakSubScore, "triggers.weak_sub_score")
	o.dec(&p.Triggers.PenaltyLTV, f.Triggers.PenaltyLTV, "triggers.penalty_ltv")
	o.dec(&p.Triggers.RejectionLTV, f.Triggers.RejectionLTV, "triggers.rejection_ltv")
	o.dec(&p.Triggers.CollateralConditionLTV, f.Triggers.CollateralConditionLTV, "triggers.collateral_condition_ltv")

	o.dec(&p.Thresholds.Low, f.Thresholds.Low, "thresholds.low")
	o.dec(&p.Thresholds.Medium, f.Thresholds.Medium, "thresholds.medium")
	o.dec(&p.Thresholds.High, f.Thresholds.High, "thresholds.high")

	for name, tf := range f.Pricing {
		cat, err := valueobject.NewRiskCategory(name)
		if err != nil {
			o.errs = append(o.errs, fmt.Errorf("pricing.%s: %w", name, err))
			continue
		}
		terms := p.Pricing[cat]
		o.dec(&terms.LTVCap, tf.LTVCap, "pricing."+name+".ltv_cap")
		o.dec(&terms.InterestRate, tf.InterestRate, "pricing."+name+".interest_rate")
		if tf.MaxTenureMonths != nil {
			terms.MaxTenureMonths = *tf.MaxTenureMonths
		}
		p.Pricing[cat] = terms
	}

	o.str(&p.Texts.PoorCredit, f.Texts.PoorCredit)
	o.str(&p.Texts.InsufficientIncome, f.Texts.InsufficientIncome)
	o.str(&p.Texts.ExcessiveLoanToValue, f.Texts.ExcessiveLoanToValue)
	o.str(&p.Texts.UnstableEmployment, f.Texts.UnstableEmployment)
	o.str(&p.Texts.AdditionalCollateral, f.Texts.AdditionalCollateral)
	o.str(&p.Texts.BankStatements, f.Texts.BankStatements)
	o.str(&p.Texts.Guarantor, f.Texts.Guarantor)

	if err := errors.Join(o.errs...); err != nil {
		return service.Policy{}, fmt.Errorf("config: risk policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return service.Policy{}, fmt.Errorf("config: risk policy: %w", err)
	}
	return p, nil
}

type overrider struct {
	errs []error
}

func (o *overrider) dec(dst *decimal.Decimal, src *string, field string) {
	if src == nil {
		return
	}
	d, err := decimal.NewFromString(*src)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s: %q is not a number", field, *src))
		return
	}
	*dst = d
}

func (o *overrider) str(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
