// Package underwrite holds the eligibility decision rules and the EMI
// amortization arithmetic that gate loan approval.
package underwrite

import (
	"errors"
	"fmt"
	"math"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
)

const (
	// AnnualInterestRate and TenureYears are the fixed terms every personal
	// loan is quoted at.
	AnnualInterestRate = 10.5
	TenureYears        = 3

	// Decision thresholds, evaluated in priority order.
	approveScoreFloor = 750
	counterScoreFloor = 700

	// An applicant may borrow at most one year of income, and the EMI may
	// consume at most half of a month's income.
	eligibleIncomeMonths = 12
	emiIncomeShareCap    = 0.5

	// Counter-offers are discounted by this conservative buffer.
	counterOfferBuffer = 1.2

	// maxPrincipal bounds the amortization input to sane currency
	// magnitudes so the rate exponentiation cannot overflow.
	maxPrincipal = int64(1_000_000_000_000)
)

var (
	ErrInvalidPrincipal = errors.New("principal out of range")
	ErrInvalidRate      = errors.New("interest rate must be positive")
	ErrInvalidTenure    = errors.New("tenure must be positive")
)

// EMI computes the fixed monthly installment for a principal amortized at
// the given annual percentage rate over the given number of years:
//
//	emi = P*r*(1+r)^n / ((1+r)^n - 1), r = rate/12/100, n = years*12
func EMI(principal int64, annualRatePercent float64, years int) (float64, error) {
	if principal <= 0 || principal > maxPrincipal {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPrincipal, principal)
	}
	if annualRatePercent <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, annualRatePercent)
	}
	if years <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTenure, years)
	}

	monthlyRate := annualRatePercent / 12 / 100
	months := float64(years * 12)
	growth := math.Pow(1+monthlyRate, months)
	return float64(principal) * monthlyRate * growth / (growth - 1), nil
}

// Evaluate applies the underwriting decision rules to a record and a credit
// score. It is a pure function: same inputs, same decision and EMI.
//
// It fails fast when the prerequisite fields are missing rather than
// computing with defaulted zeros; the stage controller never reaches
// underwriting with an incomplete record, so hitting this is a defect.
func Evaluate(rec *statex.ApplicantRecord, score int) (contractx.Decision, error) {
	if rec == nil || rec.LoanAmount == nil {
		return contractx.Decision{}, fmt.Errorf("%w: %s", contractx.ErrMissingField, statex.FieldLoanAmount)
	}
	if rec.MonthlyIncome == nil {
		return contractx.Decision{}, fmt.Errorf("%w: %s", contractx.ErrMissingField, statex.FieldMonthlyIncome)
	}

	loanAmount := *rec.LoanAmount
	monthlyIncome := *rec.MonthlyIncome

	emi, err := EMI(loanAmount, AnnualInterestRate, TenureYears)
	if err != nil {
		return contractx.Decision{}, err
	}

	maxEligible := monthlyIncome * eligibleIncomeMonths
	emiCap := float64(monthlyIncome) * emiIncomeShareCap

	decision := contractx.Decision{
		CreditScore: score,
		EMI:         emi,
		MaxEligible: maxEligible,
	}

	switch {
	case score >= approveScoreFloor && loanAmount <= maxEligible && emi <= emiCap:
		decision.Outcome = contractx.OutcomeApprove
	case score >= counterScoreFloor && emi > emiCap:
		decision.Outcome = contractx.OutcomeCounterOffer
		decision.SuggestedAmount = emiCap * eligibleIncomeMonths / counterOfferBuffer
	default:
		decision.Outcome = contractx.OutcomeReject
		if score < counterScoreFloor {
			decision.Reason = contractx.ReasonLowCreditScore
		} else {
			decision.Reason = contractx.ReasonEMITooHigh
		}
	}

	return decision, nil
}

// Offer builds the immutable loan offer for an approved decision.
func Offer(loanAmount int64, decision contractx.Decision) *statex.LoanOffer {
	return &statex.LoanOffer{
		Amount:       loanAmount,
		InterestRate: AnnualInterestRate,
		TenureYears:  TenureYears,
		EMI:          decision.EMI,
		CreditScore:  decision.CreditScore,
	}
}
