package stages

import (
	"fmt"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
	"github.com/arpitverma/loanflow/pkg/currency"
)

func approvalMessage(offer *statex.LoanOffer) string {
	return fmt.Sprintf(
		"Congratulations! Your loan has been approved!\n\n"+
			"Credit Score: %d\n"+
			"Approved Amount: INR %s\n"+
			"Interest Rate: %.1f%%\n"+
			"Tenure: %d years\n"+
			"Monthly EMI: INR %s\n\n"+
			"Generating your sanction letter now...",
		offer.CreditScore,
		currency.Amount(offer.Amount),
		offer.InterestRate,
		offer.TenureYears,
		currency.Money(offer.EMI),
	)
}

func counterOfferMessage(decision contractx.Decision) string {
	return fmt.Sprintf(
		"Based on your income, we can approve a lower amount. "+
			"Your credit score is %d. Would you like to consider INR %s instead? "+
			"Start a new application to apply for the revised amount.",
		decision.CreditScore,
		currency.Money(decision.SuggestedAmount),
	)
}

func rejectionMessage(decision contractx.Decision) string {
	return fmt.Sprintf(
		"Unfortunately, we cannot approve your loan at this time. Credit Score: %d. Reason: %s.",
		decision.CreditScore,
		decision.Reason,
	)
}
