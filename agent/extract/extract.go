// Package extract parses free-text turns into structured applicant fields.
//
// The heuristics are deliberately keyword- and shape-based, never NLU. Every
// one of them is a silent no-op on mismatch, and none of them can overwrite a
// field that is already populated. Some matching quirks are intentional and
// preserved: keyword guards are substring tests, the city fallback accepts
// any short digit-free turn, and a 10-character turn during KYC is tried as a
// PAN before it is tried as a phone number.
package extract

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
)

const (
	minLoanAmount    = 10_000  // exclusive
	minMonthlyIncome = 10_000  // inclusive
	maxMonthlyIncome = 500_000 // inclusive
)

// nameBlockKeywords disqualify a turn from being read as a full name.
var nameBlockKeywords = []string{"loan", "amount", "purpose", "income", "salary", "self"}

// purposeKeywords are checked in order; the first substring match wins.
var purposeKeywords = []struct {
	keyword string
	purpose statex.Purpose
}{
	{"holiday", statex.PurposeHoliday},
	{"travel", statex.PurposeHoliday},
	{"marriage", statex.PurposeMarriage},
	{"wedding", statex.PurposeMarriage},
	{"medical", statex.PurposeMedical},
	{"treatment", statex.PurposeMedical},
	{"home", statex.PurposeHomeRenovation},
	{"renovation", statex.PurposeHomeRenovation},
	{"education", statex.PurposeEducation},
}

var knownCities = []string{
	"mumbai", "delhi", "bangalore", "chennai",
	"kolkata", "hyderabad", "pune", "ahmedabad",
}

// Extract runs every heuristic against one turn and returns the fields it
// would populate. It reads the record only to skip fields that are already
// set; Apply enforces the no-overwrite invariant a second time.
func Extract(text string, rec *statex.ApplicantRecord, stage statex.Stage) contractx.FieldPatch {
	lower := strings.ToLower(text)
	tokens := strings.Fields(text)

	var p contractx.FieldPatch

	if rec.Name == nil && len(tokens) >= 2 && !containsAny(lower, nameBlockKeywords) {
		name := titleCase(text)
		p.Name = &name
	}

	if rec.LoanAmount == nil && hasCurrencyMarker(text, lower) {
		if amount, ok := firstAmountOver(tokens, minLoanAmount); ok {
			p.LoanAmount = &amount
		}
	}

	if rec.Purpose == nil {
		for _, pk := range purposeKeywords {
			if strings.Contains(lower, pk.keyword) {
				purpose := pk.purpose
				p.Purpose = &purpose
				break
			}
		}
	}

	if rec.Employment == nil {
		switch {
		case strings.Contains(lower, "salaried"):
			emp := statex.EmploymentSalaried
			p.Employment = &emp
		case strings.Contains(lower, "self"):
			emp := statex.EmploymentSelfEmployed
			p.Employment = &emp
		}
	}

	if rec.MonthlyIncome == nil {
		if income, ok := monthlyIncome(tokens); ok {
			p.MonthlyIncome = &income
		}
	}

	if rec.City == nil && len(tokens) <= 3 {
		if city, ok := cityGuess(text, lower); ok {
			p.City = &city
		}
	}

	// Identity documents are only read while the verification stage is
	// active; the same shapes show up in ordinary sales answers.
	if stage == statex.StageKYC {
		stripped := strings.ReplaceAll(text, " ", "")
		if rec.PANNumber == nil && len(stripped) == 10 && isAlnum(stripped) {
			pan := strings.ToUpper(stripped)
			p.PANNumber = &pan
		}
		if rec.AadhaarNumber == nil && len(stripped) == 12 && isDigits(stripped) {
			aadhaar := stripped
			p.AadhaarNumber = &aadhaar
		}
		if rec.PhoneNumber == nil && len(stripped) == 10 && isDigits(stripped) {
			phone := stripped
			p.PhoneNumber = &phone
		}
	}

	if rec.Email == nil && strings.Contains(text, "@") && strings.Contains(text, ".") {
		email := text
		p.Email = &email
	}

	return p
}

// Apply sets every patched field that is still unset and reports which ones
// were written, in record order.
func Apply(rec *statex.ApplicantRecord, p contractx.FieldPatch) []statex.Field {
	var set []statex.Field
	if p.Name != nil && rec.SetName(*p.Name) {
		set = append(set, statex.FieldName)
	}
	if p.LoanAmount != nil && rec.SetLoanAmount(*p.LoanAmount) {
		set = append(set, statex.FieldLoanAmount)
	}
	if p.Purpose != nil && rec.SetPurpose(*p.Purpose) {
		set = append(set, statex.FieldPurpose)
	}
	if p.Employment != nil && rec.SetEmployment(*p.Employment) {
		set = append(set, statex.FieldEmployment)
	}
	if p.MonthlyIncome != nil && rec.SetMonthlyIncome(*p.MonthlyIncome) {
		set = append(set, statex.FieldMonthlyIncome)
	}
	if p.City != nil && rec.SetCity(*p.City) {
		set = append(set, statex.FieldCity)
	}
	if p.PANNumber != nil && rec.SetPANNumber(*p.PANNumber) {
		set = append(set, statex.FieldPANNumber)
	}
	if p.AadhaarNumber != nil && rec.SetAadhaarNumber(*p.AadhaarNumber) {
		set = append(set, statex.FieldAadhaarNumber)
	}
	if p.PhoneNumber != nil && rec.SetPhoneNumber(*p.PhoneNumber) {
		set = append(set, statex.FieldPhoneNumber)
	}
	if p.Email != nil && rec.SetEmail(*p.Email) {
		set = append(set, statex.FieldEmail)
	}
	return set
}

func hasCurrencyMarker(text, lower string) bool {
	return strings.Contains(text, "₹") ||
		strings.Contains(lower, "rs") ||
		strings.Contains(lower, "inr")
}

// firstAmountOver returns the first comma-stripped numeric token strictly
// greater than the floor.
func firstAmountOver(tokens []string, floor int64) (int64, bool) {
	for _, tok := range tokens {
		v, ok := numericToken(tok)
		if ok && v > floor {
			return v, true
		}
	}
	return 0, false
}

// monthlyIncome scans all tokens; a qualifying value needs either an income
// word immediately before it or an income word anywhere in the turn. The
// last qualifying token wins.
func monthlyIncome(tokens []string) (int64, bool) {
	hasIncomeWord := false
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "income", "salary", "monthly":
			hasIncomeWord = true
		}
	}

	var income int64
	found := false
	for i, tok := range tokens {
		v, ok := numericToken(tok)
		if !ok || v < minMonthlyIncome || v > maxMonthlyIncome {
			continue
		}
		if i > 0 && isIncomeQualifier(tokens[i-1]) {
			income, found = v, true
			continue
		}
		if hasIncomeWord {
			income, found = v, true
		}
	}
	return income, found
}

func isIncomeQualifier(tok string) bool {
	switch strings.ToLower(tok) {
	case "income", "salary", "earning", "monthly":
		return true
	}
	return false
}

// cityGuess matches the known-city list first and otherwise accepts any
// short digit-free turn as a fallback guess. Either way the original turn is
// stored, title-cased.
func cityGuess(text, lower string) (string, bool) {
	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			return titleCase(text), true
		}
	}
	if utf8.RuneCountInString(text) > 2 && !containsDigit(text) {
		return titleCase(text), true
	}
	return "", false
}

func numericToken(tok string) (int64, bool) {
	clean := strings.ReplaceAll(tok, ",", "")
	if clean == "" || !isDigits(clean) {
		return 0, false
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return s != ""
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
