package contract

import (
	"context"

	statex "github.com/arpitverma/loanflow/agent/state"
)

// ScoreProvider looks up an applicant's credit score by PAN. The production
// implementation is a bureau stand-in; tests inject deterministic scores.
// Callers cache results per session, so providers can stay stateless.
type ScoreProvider interface {
	Lookup(ctx context.Context, pan string) (int, error)
}

// DocumentAssembler renders a sanction artifact from a terminal approved
// record. The artifact is opaque to the caller; a failure is recoverable and
// leaves the session approved.
type DocumentAssembler interface {
	Assemble(ctx context.Context, rec *statex.ApplicantRecord, offer *statex.LoanOffer) ([]byte, error)
}
