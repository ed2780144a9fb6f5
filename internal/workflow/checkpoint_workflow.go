package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/sagikazarmark/workstate/internal/types"
)

// CheckpointedPipelineWorkflow runs p.Steps sequential steps, each hydrating
// the previous checkpoint and persisting a new one. A step that fails is
// retried by Temporal and resumes from the last persisted checkpoint, so the
// pipeline never replays completed work.
func CheckpointedPipelineWorkflow(ctx workflow.Context, p types.PipelineParams) (types.PipelineResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Hour,
		HeartbeatTimeout:    1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	scratchSubdir := p.ScratchSubdir
	if scratchSubdir == "" {
		scratchSubdir = workflow.GetInfo(ctx).WorkflowExecution.ID
	}

	var result types.PipelineResult
	for step := 1; step <= p.Steps; step++ {
		sp := types.StepParams{
			StateURI:      p.StateURI,
			Step:          step,
			ScratchSubdir: scratchSubdir,
		}
		var sr types.StepResult
		if err := workflow.ExecuteActivity(ctx, "Activities.RunStep", sp).Get(ctx, &sr); err != nil {
			cleanup(ctx, p, scratchSubdir)
			return types.PipelineResult{}, err
		}
		result.CheckpointURIs = append(result.CheckpointURIs, sr.CheckpointURI)
		result.Processed = sr.Processed
	}

	cleanup(ctx, p, scratchSubdir)
	return result, nil
}

func cleanup(ctx workflow.Context, p types.PipelineParams, scratchSubdir string) {
	if p.KeepScratch {
		return
	}
	cp := types.CleanupParams{ScratchSubdir: scratchSubdir}
	// Best effort; scratch leftovers are not worth failing the run over.
	_ = workflow.ExecuteActivity(ctx, "Activities.CleanupScratch", cp).Get(ctx, nil)
}
