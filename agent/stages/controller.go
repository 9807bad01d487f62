// Package stages implements the workflow state machine: given the active
// stage and an (already extracted) session, each handler either prompts for
// the next missing field, advances the stage, or runs the underwriting
// decision.
package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	"github.com/arpitverma/loanflow/agent/prompt"
	statex "github.com/arpitverma/loanflow/agent/state"
	"github.com/arpitverma/loanflow/agent/underwrite"
)

// Result is one agent reply, plus the sanction artifact when the approved
// stage rendered one this turn.
type Result struct {
	Message  string
	Artifact []byte
}

// Controller dispatches a turn to the active stage's handler. Field
// extraction has already mutated the record by the time Handle runs.
type Controller struct {
	prompts   prompt.Catalog
	scorer    contractx.ScoreProvider
	assembler contractx.DocumentAssembler
}

func NewController(
	prompts prompt.Catalog,
	scorer contractx.ScoreProvider,
	assembler contractx.DocumentAssembler,
) (*Controller, error) {
	if scorer == nil {
		return nil, errors.New("score provider is required")
	}
	if assembler == nil {
		return nil, errors.New("document assembler is required")
	}
	return &Controller{prompts: prompts, scorer: scorer, assembler: assembler}, nil
}

func (c *Controller) Handle(
	ctx context.Context,
	sess *statex.SessionState,
	text string,
	now time.Time,
) (Result, error) {
	if sess == nil {
		return Result{}, fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}

	switch sess.Stage {
	case statex.StageInitial:
		return c.handleInitial(ctx, sess, text, now)
	case statex.StageSales:
		return c.handleSales(sess), nil
	case statex.StageKYC:
		return c.handleKYC(sess), nil
	case statex.StageUnderwriting:
		return c.handleUnderwriting(ctx, sess, now)
	case statex.StageApproved:
		return c.handleApproved(ctx, sess)
	case statex.StageRejected:
		return Result{Message: c.prompts.Fallback}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", statex.ErrUnknownStage, sess.Stage)
	}
}

// handleInitial classifies the opening turn. A loan intent (explicit or
// affirmative) moves the session into Sales and lets the same turn answer
// the first Sales prompt.
func (c *Controller) handleInitial(
	_ context.Context,
	sess *statex.SessionState,
	text string,
	_ time.Time,
) (Result, error) {
	switch classifyIntent(text) {
	case intentLoan, intentAffirmative:
		sess.Stage = statex.StageSales
		return c.handleSales(sess), nil
	case intentNegative:
		return Result{Message: c.prompts.Decline}, nil
	default:
		return Result{Message: c.prompts.Greeting}, nil
	}
}

// handleSales walks the Sales checklist in order and prompts for the first
// missing field; a complete checklist hands the session to KYC with no
// further processing of the turn.
func (c *Controller) handleSales(sess *statex.SessionState) Result {
	missing, ok := sess.Record.FirstMissing(statex.SalesChecklist)
	if !ok {
		sess.Stage = statex.StageKYC
		return Result{Message: c.prompts.Sales.Handoff}
	}
	return Result{Message: c.salesQuestion(sess, missing)}
}

func (c *Controller) salesQuestion(sess *statex.SessionState, field statex.Field) string {
	q, _ := c.prompts.Sales.Question(field)
	if strings.Contains(q, "%s") {
		return fmt.Sprintf(q, sess.Record.NameOr("there"))
	}
	return q
}

func (c *Controller) handleKYC(sess *statex.SessionState) Result {
	missing, ok := sess.Record.FirstMissing(statex.KYCChecklist)
	if !ok {
		sess.Stage = statex.StageUnderwriting
		return Result{Message: c.prompts.KYC.Handoff}
	}
	q, _ := c.prompts.KYC.Question(missing)
	return Result{Message: q}
}

// handleUnderwriting runs the eligibility engine on every turn spent in this
// stage, against the session-cached credit score.
func (c *Controller) handleUnderwriting(
	ctx context.Context,
	sess *statex.SessionState,
	_ time.Time,
) (Result, error) {
	score, err := c.creditScore(ctx, sess)
	if err != nil {
		return Result{}, err
	}

	decision, err := underwrite.Evaluate(&sess.Record, score)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("session_id", sess.SessionID).
		Str("outcome", string(decision.Outcome)).
		Int("credit_score", decision.CreditScore).
		Float64("emi", decision.EMI).
		Msg("underwriting decision")

	switch decision.Outcome {
	case contractx.OutcomeApprove:
		sess.Offer = underwrite.Offer(*sess.Record.LoanAmount, decision)
		sess.Stage = statex.StageApproved
		return Result{Message: approvalMessage(sess.Offer)}, nil
	case contractx.OutcomeCounterOffer:
		// The record is not mutated with the suggested amount; the
		// session stays in Underwriting.
		return Result{Message: counterOfferMessage(decision)}, nil
	default:
		sess.Stage = statex.StageRejected
		return Result{Message: rejectionMessage(decision)}, nil
	}
}

func (c *Controller) creditScore(ctx context.Context, sess *statex.SessionState) (int, error) {
	key := underwrite.ScoreKey(&sess.Record)
	if score, ok := sess.CachedScore(key); ok {
		return score, nil
	}

	score, err := c.scorer.Lookup(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", contractx.ErrScoreLookup, err)
	}
	sess.CacheScore(key, score)
	return score, nil
}

// handleApproved re-renders the sanction letter on every turn. Rendering
// failure is recoverable: the session keeps its offer and stays approved.
func (c *Controller) handleApproved(ctx context.Context, sess *statex.SessionState) (Result, error) {
	artifact, err := c.assembler.Assemble(ctx, &sess.Record, sess.Offer)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", contractx.ErrDocumentRender, err)
	}
	return Result{Message: c.prompts.LetterReady, Artifact: artifact}, nil
}
