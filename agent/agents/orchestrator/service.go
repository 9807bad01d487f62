// Package orchestrator is the session-facing entry point: it compiles the
// per-turn pipeline and guarantees that turns for one session are processed
// strictly one at a time.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	flownode "github.com/arpitverma/loanflow/agent/nodes"
	"github.com/arpitverma/loanflow/agent/prompt"
	"github.com/arpitverma/loanflow/agent/stages"
	statex "github.com/arpitverma/loanflow/agent/state"
)

var (
	ErrInvalidMessage = flownode.ErrInvalidMessage
	ErrInvalidSession = flownode.ErrInvalidSession
)

type Config struct {
	ApplicantID string
	ChannelType string
}

// TurnReply is the outcome of one processed turn.
type TurnReply struct {
	Message  string
	Stage    statex.Stage
	Artifact []byte
}

type Orchestrator struct {
	store      statex.Store
	assembler  contractx.DocumentAssembler
	controller *stages.Controller

	graphRunner compose.Runnable[flownode.GraphInput, flownode.GraphOutput]

	applicantID string
	channelType string

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	store statex.Store,
	scorer contractx.ScoreProvider,
	assembler contractx.DocumentAssembler,
	prompts prompt.Catalog,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if scorer == nil {
		return nil, errors.New("score provider is required")
	}
	if assembler == nil {
		return nil, errors.New("document assembler is required")
	}

	controller, err := stages.NewController(prompts, scorer, assembler)
	if err != nil {
		return nil, err
	}

	applicantID := strings.TrimSpace(cfg.ApplicantID)
	if applicantID == "" {
		applicantID = "walk-in"
	}
	channelType := strings.TrimSpace(cfg.ChannelType)
	if channelType == "" {
		channelType = "chat"
	}

	o := &Orchestrator{
		store:       store,
		assembler:   assembler,
		controller:  controller,
		applicantID: applicantID,
		channelType: channelType,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage processes one user turn. Turns for the same session are
// serialized; distinct sessions run in parallel.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (TurnReply, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	out, err := o.graphRunner.Invoke(ctx, flownode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return TurnReply{}, err
	}
	return TurnReply{Message: out.Reply, Stage: out.Stage, Artifact: out.Artifact}, nil
}

// Reset starts a new application: record, offer, score cache, and
// conversation history are all cleared. The session identity is kept; an
// unknown session is a no-op.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return nil
		}
		return err
	}

	st.Reset(o.now())
	return o.store.Save(ctx, st)
}

// History returns the ordered conversation log for a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]statex.Turn, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return append([]statex.Turn(nil), st.History...), nil
}

// Artifact renders the sanction letter for an approved session on demand.
func (o *Orchestrator) Artifact(ctx context.Context, sessionID string) ([]byte, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Stage != statex.StageApproved || st.Offer == nil {
		return nil, contractx.ErrNotApproved
	}
	return o.assembler.Assemble(ctx, &st.Record, st.Offer)
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}
