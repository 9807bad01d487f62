package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	"github.com/arpitverma/loanflow/agent/prompt"
	statex "github.com/arpitverma/loanflow/agent/state"
)

type fixedScorer struct {
	score int
	err   error
	calls int
}

func (s *fixedScorer) Lookup(_ context.Context, _ string) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

type stubAssembler struct {
	out   []byte
	err   error
	calls int
}

func (a *stubAssembler) Assemble(
	_ context.Context, _ *statex.ApplicantRecord, _ *statex.LoanOffer,
) ([]byte, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.out, nil
}

func newTestController(t *testing.T, scorer contractx.ScoreProvider, assembler contractx.DocumentAssembler) *Controller {
	t.Helper()
	c, err := NewController(prompt.MustLoad(), scorer, assembler)
	require.NoError(t, err)
	return c
}

func session(stage statex.Stage, rec statex.ApplicantRecord) *statex.SessionState {
	st := statex.NewSessionState("s-1", "walk-in", "chat", time.Now())
	st.Stage = stage
	st.Record = rec
	return st
}

func salesRecord(loanAmount, income int64) statex.ApplicantRecord {
	rec := statex.ApplicantRecord{}
	rec.SetName("Rahul Sharma")
	rec.SetLoanAmount(loanAmount)
	rec.SetPurpose(statex.PurposeHoliday)
	rec.SetEmployment(statex.EmploymentSalaried)
	rec.SetMonthlyIncome(income)
	rec.SetCity("Pune")
	return rec
}

func fullRecord(loanAmount, income int64) statex.ApplicantRecord {
	rec := salesRecord(loanAmount, income)
	rec.SetPANNumber("ABCDE1234F")
	rec.SetAadhaarNumber("123412341234")
	rec.SetPhoneNumber("9876543210")
	rec.SetEmail("rahul@example.com")
	return rec
}

func without(rec statex.ApplicantRecord, f statex.Field) statex.ApplicantRecord {
	switch f {
	case statex.FieldName:
		rec.Name = nil
	case statex.FieldLoanAmount:
		rec.LoanAmount = nil
	case statex.FieldPurpose:
		rec.Purpose = nil
	case statex.FieldEmployment:
		rec.Employment = nil
	case statex.FieldMonthlyIncome:
		rec.MonthlyIncome = nil
	case statex.FieldCity:
		rec.City = nil
	case statex.FieldPANNumber:
		rec.PANNumber = nil
	case statex.FieldAadhaarNumber:
		rec.AadhaarNumber = nil
	case statex.FieldPhoneNumber:
		rec.PhoneNumber = nil
	case statex.FieldEmail:
		rec.Email = nil
	}
	return rec
}

func TestNewControllerRequiresDeps(t *testing.T) {
	prompts := prompt.MustLoad()

	_, err := NewController(prompts, nil, &stubAssembler{})
	assert.Error(t, err)

	_, err = NewController(prompts, &fixedScorer{}, nil)
	assert.Error(t, err)
}

func TestHandleNilSession(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})

	_, err := c.Handle(context.Background(), nil, "hi", time.Now())
	assert.ErrorIs(t, err, contractx.ErrValidation)
}

func TestInitialGreeting(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})
	sess := session(statex.StageInitial, statex.ApplicantRecord{})

	res, err := c.Handle(context.Background(), sess, "hmm", time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.prompts.Greeting, res.Message)
	assert.Equal(t, statex.StageInitial, sess.Stage)
}

func TestInitialDecline(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})
	sess := session(statex.StageInitial, statex.ApplicantRecord{})

	res, err := c.Handle(context.Background(), sess, "not now", time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.prompts.Decline, res.Message)
	assert.Equal(t, statex.StageInitial, sess.Stage)
}

// A loan intent moves the session into Sales and the same turn is answered
// with the first Sales prompt.
func TestInitialLoanIntentEntersSales(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})

	for _, turn := range []string{"I need a loan", "planning a vacation", "yes"} {
		sess := session(statex.StageInitial, statex.ApplicantRecord{})

		res, err := c.Handle(context.Background(), sess, turn, time.Now())
		require.NoError(t, err)
		assert.Equal(t, statex.StageSales, sess.Stage, "turn %q", turn)

		want, _ := c.prompts.Sales.Question(statex.FieldName)
		assert.Equal(t, want, res.Message)
	}
}

// With exactly one checklist field missing, the prompt is always that field's
// designated question.
func TestSalesPromptsFirstMissingField(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})

	for _, f := range statex.SalesChecklist {
		sess := session(statex.StageSales, without(salesRecord(200_000, 50_000), f))

		res, err := c.Handle(context.Background(), sess, "anything", time.Now())
		require.NoError(t, err)
		assert.Equal(t, statex.StageSales, sess.Stage)
		assert.Equal(t, c.salesQuestion(sess, f), res.Message, "field %s", f)
	}
}

func TestSalesLoanAmountQuestionUsesName(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})

	rec := statex.ApplicantRecord{}
	rec.SetName("Rahul Sharma")
	sess := session(statex.StageSales, rec)

	res, err := c.Handle(context.Background(), sess, "anything", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Thanks Rahul Sharma. How much loan amount are you looking for?", res.Message)
}

func TestSalesHandoffToKYC(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})
	sess := session(statex.StageSales, salesRecord(200_000, 50_000))

	res, err := c.Handle(context.Background(), sess, "pune", time.Now())
	require.NoError(t, err)
	assert.Equal(t, statex.StageKYC, sess.Stage)
	assert.Equal(t, c.prompts.Sales.Handoff, res.Message)
}

func TestKYCPromptsFirstMissingField(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})

	for _, f := range statex.KYCChecklist {
		sess := session(statex.StageKYC, without(fullRecord(200_000, 50_000), f))

		res, err := c.Handle(context.Background(), sess, "anything", time.Now())
		require.NoError(t, err)
		assert.Equal(t, statex.StageKYC, sess.Stage)

		want, _ := c.prompts.KYC.Question(f)
		assert.Equal(t, want, res.Message, "field %s", f)
	}
}

func TestKYCHandoffToUnderwriting(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})
	sess := session(statex.StageKYC, fullRecord(200_000, 50_000))

	res, err := c.Handle(context.Background(), sess, "rahul@example.com", time.Now())
	require.NoError(t, err)
	assert.Equal(t, statex.StageUnderwriting, sess.Stage)
	assert.Equal(t, c.prompts.KYC.Handoff, res.Message)
}

func TestUnderwritingApprove(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 780}, &stubAssembler{})
	sess := session(statex.StageUnderwriting, fullRecord(200_000, 50_000))

	res, err := c.Handle(context.Background(), sess, "ok", time.Now())
	require.NoError(t, err)

	assert.Equal(t, statex.StageApproved, sess.Stage)
	require.NotNil(t, sess.Offer)
	assert.Equal(t, int64(200_000), sess.Offer.Amount)
	assert.Equal(t, 780, sess.Offer.CreditScore)
	assert.Contains(t, res.Message, "Congratulations")
	assert.Contains(t, res.Message, "INR 200,000")

	// The bureau result is cached under the applicant's PAN.
	score, ok := sess.CachedScore("ABCDE1234F")
	require.True(t, ok)
	assert.Equal(t, 780, score)
}

func TestUnderwritingCounterOfferStays(t *testing.T) {
	scorer := &fixedScorer{score: 710}
	c := newTestController(t, scorer, &stubAssembler{})
	sess := session(statex.StageUnderwriting, fullRecord(500_000, 20_000))

	res, err := c.Handle(context.Background(), sess, "ok", time.Now())
	require.NoError(t, err)

	assert.Equal(t, statex.StageUnderwriting, sess.Stage)
	assert.Nil(t, sess.Offer)
	assert.Equal(t, int64(500_000), *sess.Record.LoanAmount)
	assert.Contains(t, res.Message, "INR 100,000.00")

	// A later turn re-evaluates with the cached score: one bureau call total.
	_, err = c.Handle(context.Background(), sess, "hmm", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
}

func TestUnderwritingReject(t *testing.T) {
	c := newTestController(t, &fixedScorer{score: 620}, &stubAssembler{})
	sess := session(statex.StageUnderwriting, fullRecord(200_000, 50_000))

	res, err := c.Handle(context.Background(), sess, "ok", time.Now())
	require.NoError(t, err)

	assert.Equal(t, statex.StageRejected, sess.Stage)
	assert.Nil(t, sess.Offer)
	assert.Contains(t, res.Message, contractx.ReasonLowCreditScore)

	// Rejected is terminal: later turns get the fallback line.
	res, err = c.Handle(context.Background(), sess, "please?", time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.prompts.Fallback, res.Message)
	assert.Equal(t, statex.StageRejected, sess.Stage)
}

func TestUnderwritingScoreLookupError(t *testing.T) {
	c := newTestController(t, &fixedScorer{err: errors.New("bureau down")}, &stubAssembler{})
	sess := session(statex.StageUnderwriting, fullRecord(200_000, 50_000))

	_, err := c.Handle(context.Background(), sess, "ok", time.Now())
	assert.ErrorIs(t, err, contractx.ErrScoreLookup)
	assert.Equal(t, statex.StageUnderwriting, sess.Stage)
}

func TestApprovedRendersLetter(t *testing.T) {
	assembler := &stubAssembler{out: []byte("%PDF-fake")}
	c := newTestController(t, &fixedScorer{score: 780}, assembler)

	sess := session(statex.StageApproved, fullRecord(200_000, 50_000))
	sess.Offer = &statex.LoanOffer{Amount: 200_000}

	res, err := c.Handle(context.Background(), sess, "thanks", time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.prompts.LetterReady, res.Message)
	assert.Equal(t, assembler.out, res.Artifact)

	// Every turn in the approved stage re-renders.
	_, err = c.Handle(context.Background(), sess, "again", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, assembler.calls)
}

func TestApprovedRenderFailureKeepsOffer(t *testing.T) {
	assembler := &stubAssembler{err: errors.New("render blew up")}
	c := newTestController(t, &fixedScorer{score: 780}, assembler)

	sess := session(statex.StageApproved, fullRecord(200_000, 50_000))
	sess.Offer = &statex.LoanOffer{Amount: 200_000}

	_, err := c.Handle(context.Background(), sess, "thanks", time.Now())
	assert.ErrorIs(t, err, contractx.ErrDocumentRender)
	assert.Equal(t, statex.StageApproved, sess.Stage)
	assert.NotNil(t, sess.Offer)
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		text string
		want intent
	}{
		{"I need a loan", intentLoan},
		{"can I borrow some money", intentLoan},
		{"planning a holiday trip", intentLoan},
		{"my wedding is next month", intentLoan},
		{"hospital bills piling up", intentLoan},
		{"yes", intentAffirmative},
		{"sure, proceed", intentAffirmative},
		{"not now", intentNegative},
		{"maybe later", intentNegative},
		{"hmm", intentGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyIntent(tc.text), "text %q", tc.text)
	}
}
