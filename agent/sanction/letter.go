// Package sanction renders the loan sanction letter handed to an approved
// applicant.
package sanction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
	"github.com/arpitverma/loanflow/pkg/currency"
)

const DefaultLenderName = "Crestline Capital Finance Ltd."

// terms is the fixed block printed on every sanction letter.
var terms = []string{
	"1. This sanction is valid for 30 days from the date of issue.",
	"2. Final disbursement subject to documentation verification.",
	"3. Interest rates are subject to change as per market conditions.",
	"4. Prepayment charges may apply as per policy.",
	"5. Late payment fees will be charged for delayed EMI payments.",
}

// Renderer produces the PDF sanction letter. It implements
// contract.DocumentAssembler.
type Renderer struct {
	lenderName string
}

var _ contractx.DocumentAssembler = (*Renderer)(nil)

func NewRenderer(lenderName string) *Renderer {
	name := strings.TrimSpace(lenderName)
	if name == "" {
		name = DefaultLenderName
	}
	return &Renderer{lenderName: name}
}

func (r *Renderer) Assemble(
	_ context.Context,
	rec *statex.ApplicantRecord,
	offer *statex.LoanOffer,
) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("applicant record is nil")
	}
	if offer == nil {
		return nil, errors.New("loan offer is nil")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(r.lenderName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "LOAN SANCTION LETTER", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Customer Details:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Name: "+valueOr(rec.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, "PAN: "+valueOr(rec.PANNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Phone: "+valueOr(rec.PhoneNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Email: "+valueOr(rec.Email), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Loan Details:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Sanctioned Amount: INR "+currency.Amount(offer.Amount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Interest Rate: %.1f%% p.a.", offer.InterestRate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Loan Tenure: %d years", offer.TenureYears), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Monthly EMI: INR "+currency.Money(offer.EMI), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Credit Score: %d", offer.CreditScore), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Terms & Conditions:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, term := range terms {
		pdf.MultiCell(0, 6, term, "", "L", false)
	}

	pdf.Ln(15)
	pdf.CellFormat(0, 10, "Authorized Signatory", "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, r.lenderName, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render sanction letter: %w", err)
	}
	return buf.Bytes(), nil
}

func valueOr(p *string) string {
	if p == nil {
		return "N/A"
	}
	return *p
}
