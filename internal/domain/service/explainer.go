package service

import "github.com/nikhilpunky/manaja2/internal/domain/valueobject"

// Explainer turns a risk score into display text.
type Explainer struct {
	texts    ReasonTexts
	triggers Triggers
}

// NewExplainer returns an explainer that names factors past triggers using
// texts.
func NewExplainer(texts ReasonTexts, triggers Triggers) Explainer {
	return Explainer{texts: texts, triggers: triggers}
}

// RejectionReasons lists, in fixed order, every weak factor behind a
// declined score. A declined score whose individual factors all pass yields
// an empty, non-nil list. Approved scores yield nil.
func (e Explainer) RejectionReasons(rs RiskScore) []string {
	if rs.Approved {
		return nil
	}
	f, t := rs.Factors, e.triggers
	reasons := []string{}
	if f.NormalizedCreditScore.LessThan(t.WeakSubScore) {
		reasons = append(reasons, e.texts.PoorCredit)
	}
	if f.IncomeAdequacy.LessThan(t.WeakSubScore) {
		reasons = append(reasons, e.texts.InsufficientIncome)
	}
	if f.LoanToValue.GreaterThan(t.RejectionLTV) {
		reasons = append(reasons, e.texts.ExcessiveLoanToValue)
	}
	if f.EmploymentStability.LessThan(t.WeakSubScore) {
		reasons = append(reasons, e.texts.UnstableEmployment)
	}
	return reasons
}

// ApprovalConditions lists the conditions attached to approvals in the
// medium and high categories. Other outcomes yield nil.
func (e Explainer) ApprovalConditions(rs RiskScore) []string {
	if !rs.Approved {
		return nil
	}
	if !rs.Category.Equal(valueobject.RiskMedium) && !rs.Category.Equal(valueobject.RiskHigh) {
		return nil
	}

	var conditions []string
	if rs.Factors.LoanToValue.GreaterThan(e.triggers.CollateralConditionLTV) {
		conditions = append(conditions, e.texts.AdditionalCollateral)
	}
	if rs.Category.Equal(valueobject.RiskHigh) {
		conditions = append(conditions, e.texts.BankStatements, e.texts.Guarantor)
	}
	return conditions
}
