package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
)

func TestExtractName(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("rahul sharma", rec, statex.StageSales)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Rahul Sharma", *p.Name)
}

func TestExtractNameBlockedByStageKeywords(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	for _, turn := range []string{
		"I need a loan",
		"my salary is high",
		"I am self employed",
	} {
		p := Extract(turn, rec, statex.StageSales)
		assert.Nil(t, p.Name, "turn %q should not read as a name", turn)
	}
}

func TestExtractNameRequiresTwoTokens(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("Rahul", rec, statex.StageSales)
	assert.Nil(t, p.Name)
}

func TestExtractLoanAmount(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("I need rs 2,50,000 please", rec, statex.StageSales)
	require.NotNil(t, p.LoanAmount)
	assert.Equal(t, int64(250_000), *p.LoanAmount)
}

func TestExtractLoanAmountNeedsCurrencyMarker(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("give me 250000", rec, statex.StageSales)
	assert.Nil(t, p.LoanAmount)
}

func TestExtractLoanAmountIgnoresSmallNumbers(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("rs 5000 is enough", rec, statex.StageSales)
	assert.Nil(t, p.LoanAmount)
}

func TestExtractPurposeFirstMatchWins(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("a loan for my wedding", rec, statex.StageSales)
	require.NotNil(t, p.Purpose)
	assert.Equal(t, statex.PurposeMarriage, *p.Purpose)

	// "travel" precedes "wedding" in the keyword order.
	p = Extract("wedding travel plans", rec, statex.StageSales)
	require.NotNil(t, p.Purpose)
	assert.Equal(t, statex.PurposeHoliday, *p.Purpose)
}

func TestExtractEmployment(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("I am salaried", rec, statex.StageSales)
	require.NotNil(t, p.Employment)
	assert.Equal(t, statex.EmploymentSalaried, *p.Employment)

	p = Extract("self employed", rec, statex.StageSales)
	require.NotNil(t, p.Employment)
	assert.Equal(t, statex.EmploymentSelfEmployed, *p.Employment)
}

func TestExtractMonthlyIncome(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	// Scenario: plain statement with income words in the turn.
	p := Extract("My monthly income is 45000", rec, statex.StageSales)
	require.NotNil(t, p.MonthlyIncome)
	assert.Equal(t, int64(45_000), *p.MonthlyIncome)
}

func TestExtractMonthlyIncomeQualifierToken(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("earning 60,000 these days", rec, statex.StageSales)
	require.NotNil(t, p.MonthlyIncome)
	assert.Equal(t, int64(60_000), *p.MonthlyIncome)
}

func TestExtractMonthlyIncomeRange(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	assert.Nil(t, Extract("salary 600000", rec, statex.StageSales).MonthlyIncome)
	assert.Nil(t, Extract("salary 9000", rec, statex.StageSales).MonthlyIncome)
	assert.Nil(t, Extract("just 45000", rec, statex.StageSales).MonthlyIncome)
}

func TestExtractCityKnownList(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("pune", rec, statex.StageSales)
	require.NotNil(t, p.City)
	assert.Equal(t, "Pune", *p.City)
}

func TestExtractCityFallbackGuess(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("nagpur", rec, statex.StageSales)
	require.NotNil(t, p.City)
	assert.Equal(t, "Nagpur", *p.City)
}

func TestExtractCityRejectsDigitsAndLongTurns(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	assert.Nil(t, Extract("sector 12", rec, statex.StageSales).City)
	assert.Nil(t, Extract("I live in the city of Pune somewhere", rec, statex.StageSales).City)
	assert.Nil(t, Extract("ok", rec, statex.StageSales).City)
}

func TestExtractPANOnlyDuringKYC(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	assert.Nil(t, Extract("abcde1234f", rec, statex.StageSales).PANNumber)

	p := Extract("abcde1234f", rec, statex.StageKYC)
	require.NotNil(t, p.PANNumber)
	assert.Equal(t, "ABCDE1234F", *p.PANNumber)
}

func TestExtractPANScenario(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("ABCDE12345", rec, statex.StageKYC)
	require.NotNil(t, p.PANNumber)
	assert.Equal(t, "ABCDE12345", *p.PANNumber)
}

func TestExtractAadhaarStripsSpaces(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("1234 5678 9012", rec, statex.StageKYC)
	require.NotNil(t, p.AadhaarNumber)
	assert.Equal(t, "123456789012", *p.AadhaarNumber)
}

// A 10-digit turn is tried as a PAN before it is tried as a phone number.
// That ordering is intentional and must hold: only once the PAN slot is
// filled does a 10-digit turn land in phone_number.
func TestExtractTenDigitsPANBeforePhone(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("9876543210", rec, statex.StageKYC)
	require.NotNil(t, p.PANNumber)
	require.NotNil(t, p.PhoneNumber)
	fields := Apply(rec, p)
	assert.Equal(t, []statex.Field{statex.FieldPANNumber, statex.FieldPhoneNumber}, fields)

	rec = &statex.ApplicantRecord{}
	pan := "ABCDE1234F"
	rec.PANNumber = &pan

	p = Extract("9876543210", rec, statex.StageKYC)
	assert.Nil(t, p.PANNumber)
	require.NotNil(t, p.PhoneNumber)
	assert.Equal(t, "9876543210", *p.PhoneNumber)
}

func TestExtractEmail(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("rahul@example.com", rec, statex.StageKYC)
	require.NotNil(t, p.Email)
	assert.Equal(t, "rahul@example.com", *p.Email)

	assert.Nil(t, Extract("rahul at example", rec, statex.StageKYC).Email)
}

func TestExtractNeverOverwrites(t *testing.T) {
	rec := &statex.ApplicantRecord{}
	require.True(t, rec.SetName("Rahul Sharma"))
	require.True(t, rec.SetLoanAmount(200_000))

	p := Extract("Priya Patel wants rs 999999", rec, statex.StageSales)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.LoanAmount)

	// Apply refuses a forged patch as well.
	forgedName := "Priya Patel"
	forgedAmount := int64(999_999)
	set := Apply(rec, contractx.FieldPatch{Name: &forgedName, LoanAmount: &forgedAmount})
	assert.Empty(t, set)
	assert.Equal(t, "Rahul Sharma", *rec.Name)
	assert.Equal(t, int64(200_000), *rec.LoanAmount)
}

func TestExtractEmptyPatch(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	// Too short for a name or the city fallback, no keywords, no shapes.
	p := Extract("ok", rec, statex.StageSales)
	assert.True(t, p.Empty())

	p = Extract("My monthly income is 45000", rec, statex.StageSales)
	assert.False(t, p.Empty())
}

func TestApplyReportsFieldsSet(t *testing.T) {
	rec := &statex.ApplicantRecord{}

	p := Extract("My monthly income is 45000", rec, statex.StageSales)
	set := Apply(rec, p)
	assert.Equal(t, []statex.Field{statex.FieldMonthlyIncome}, set)
	require.NotNil(t, rec.MonthlyIncome)
	assert.Equal(t, int64(45_000), *rec.MonthlyIncome)

	// Idempotent: a second pass over the same turn is a no-op.
	p = Extract("My monthly income is 45000", rec, statex.StageSales)
	assert.Empty(t, Apply(rec, p))
}
