// Package flownode holds the per-turn pipeline nodes wired together by the
// orchestrator graph.
package flownode

import (
	"errors"
	"strings"
	"time"

	"github.com/arpitverma/loanflow/agent/stages"
	statex "github.com/arpitverma/loanflow/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply    string
	Stage    statex.Stage
	Artifact []byte
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session   *statex.SessionState
	FieldsSet []statex.Field
	Result    stages.Result
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
