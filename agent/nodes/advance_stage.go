package flownode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	"github.com/arpitverma/loanflow/agent/stages"
	statex "github.com/arpitverma/loanflow/agent/state"
)

// AdvanceStage records the user turn, hands it to the active stage's
// handler, and records the agent reply. The agent turn carries the stage
// that produced it, which may already be the post-transition stage.
func AdvanceStage(
	ctx context.Context,
	in *GraphState,
	controller *stages.Controller,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	from := in.Session.Stage
	in.Session.AppendTurn(statex.RoleUser, in.Text, in.Now)

	result, err := controller.Handle(ctx, in.Session, in.Text, in.Now)
	if err != nil {
		return nil, err
	}

	in.Session.AppendTurn(statex.RoleAgent, result.Message, in.Now)
	in.Result = result

	if in.Session.Stage != from {
		log.Info().
			Str("session_id", in.SessionID).
			Str("from", string(from)).
			Str("to", string(in.Session.Stage)).
			Msg("stage transition")
	}

	return in, nil
}
