package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	flownode "github.com/arpitverma/loanflow/agent/nodes"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[flownode.GraphInput, flownode.GraphOutput], error) {
	graph := compose.NewGraph[flownode.GraphInput, flownode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in flownode.GraphInput) (*flownode.GraphState, error) {
			return flownode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_state",
		compose.InvokableLambda(func(ctx context.Context, in *flownode.GraphState) (*flownode.GraphState, error) {
			return flownode.LoadOrCreateState(ctx, in, o.store, o.applicantID, o.channelType)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_state: %w", err)
	}

	if err := graph.AddLambdaNode("extract_fields",
		compose.InvokableLambda(func(ctx context.Context, in *flownode.GraphState) (*flownode.GraphState, error) {
			return flownode.ExtractFields(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_fields: %w", err)
	}

	if err := graph.AddLambdaNode("advance_stage",
		compose.InvokableLambda(func(ctx context.Context, in *flownode.GraphState) (*flownode.GraphState, error) {
			return flownode.AdvanceStage(ctx, in, o.controller)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node advance_stage: %w", err)
	}

	if err := graph.AddLambdaNode("validate_and_save_state",
		compose.InvokableLambda(func(ctx context.Context, in *flownode.GraphState) (*flownode.GraphState, error) {
			return flownode.ValidateAndSaveState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_and_save_state: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *flownode.GraphState) (flownode.GraphOutput, error) {
			return flownode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_state"},
		{"load_or_create_state", "extract_fields"},
		{"extract_fields", "advance_stage"},
		{"advance_stage", "validate_and_save_state"},
		{"validate_and_save_state", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
