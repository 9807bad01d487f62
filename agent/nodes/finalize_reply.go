package flownode

import (
	"fmt"
	"strings"

	contractx "github.com/arpitverma/loanflow/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Result.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: stage handler returned empty message", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:    reply,
		Stage:    in.Session.Stage,
		Artifact: in.Result.Artifact,
	}, nil
}
