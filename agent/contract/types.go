package contract

import (
	statex "github.com/arpitverma/loanflow/agent/state"
)

// Outcome is the underwriting decision for one evaluation pass.
type Outcome string

const (
	OutcomeApprove      Outcome = "approve"
	OutcomeCounterOffer Outcome = "counter_offer"
	OutcomeReject       Outcome = "reject"
)

const (
	ReasonLowCreditScore = "Low credit score"
	ReasonEMITooHigh     = "EMI too high compared to income"
)

// Decision is the pure output of the eligibility engine. For a fixed
// (record, score) input it is fully deterministic.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	CreditScore int     `json:"credit_score"`
	EMI         float64 `json:"emi"`
	MaxEligible int64   `json:"max_eligible"`

	// SuggestedAmount is set only for counter-offers.
	SuggestedAmount float64 `json:"suggested_amount,omitempty"`
	// Reason is set only for rejections.
	Reason string `json:"reason,omitempty"`
}

// FieldPatch carries the fields one extraction pass wants to populate. Nil
// slots are untouched; applying a patch never overwrites a populated field.
type FieldPatch struct {
	Name          *string            `json:"name,omitempty"`
	LoanAmount    *int64             `json:"loan_amount,omitempty"`
	Purpose       *statex.Purpose    `json:"purpose,omitempty"`
	Employment    *statex.Employment `json:"employment,omitempty"`
	MonthlyIncome *int64             `json:"monthly_income,omitempty"`
	City          *string            `json:"city,omitempty"`
	PANNumber     *string            `json:"pan_number,omitempty"`
	AadhaarNumber *string            `json:"aadhaar_number,omitempty"`
	PhoneNumber   *string            `json:"phone_number,omitempty"`
	Email         *string            `json:"email,omitempty"`
}

func (p FieldPatch) Empty() bool {
	return p.Name == nil &&
		p.LoanAmount == nil &&
		p.Purpose == nil &&
		p.Employment == nil &&
		p.MonthlyIncome == nil &&
		p.City == nil &&
		p.PANNumber == nil &&
		p.AadhaarNumber == nil &&
		p.PhoneNumber == nil &&
		p.Email == nil
}
