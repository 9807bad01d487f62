package flownode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	"github.com/arpitverma/loanflow/agent/extract"
)

// ExtractFields runs the extraction heuristics over the turn and applies the
// resulting patch to the applicant record. Extraction happens before stage
// evaluation, so a turn can both supply a field and advance the checklist.
func ExtractFields(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	patch := extract.Extract(in.Text, &in.Session.Record, in.Session.Stage)
	if patch.Empty() {
		return in, nil
	}
	in.FieldsSet = extract.Apply(&in.Session.Record, patch)

	if len(in.FieldsSet) > 0 {
		fields := make([]string, 0, len(in.FieldsSet))
		for _, f := range in.FieldsSet {
			fields = append(fields, string(f))
		}
		log.Debug().
			Str("session_id", in.SessionID).
			Strs("fields", fields).
			Msg("extracted applicant fields")
	}

	return in, nil
}
