package activities

import (
	"context"
	"encoding/json"
	"testing"

	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap"

	"github.com/sagikazarmark/workstate"
	"github.com/sagikazarmark/workstate/internal/types"
)

func newTestActivities(t *testing.T) (*Activities, *workstate.Factory) {
	t.Helper()
	factory := workstate.NewFactory()
	t.Cleanup(func() { factory.Close() })
	acts := New(Config{ScratchDir: t.TempDir()}, factory, zap.NewNop())
	return acts, factory
}

func TestRunStepFreshRun(t *testing.T) {
	acts, _ := newTestActivities(t)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts.RunStep)

	val, err := env.ExecuteActivity(acts.RunStep, types.StepParams{
		StateURI:      "memory://bucket/run-1",
		Step:          1,
		ScratchSubdir: "run-1",
	})
	if err != nil {
		t.Fatalf("RunStep err: %v", err)
	}
	var res types.StepResult
	if err := val.Get(&res); err != nil {
		t.Fatal(err)
	}
	if res.CheckpointURI != "memory://bucket/run-1/step-001.json" {
		t.Errorf("checkpoint uri got %q", res.CheckpointURI)
	}
	if res.Processed == 0 {
		t.Error("expected some processed records")
	}
}

func TestRunStepResumesFromCheckpoint(t *testing.T) {
	acts, factory := newTestActivities(t)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts.RunStep)

	var first types.StepResult
	val, err := env.ExecuteActivity(acts.RunStep, types.StepParams{
		StateURI: "memory://bucket/run-2", Step: 1, ScratchSubdir: "run-2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := val.Get(&first); err != nil {
		t.Fatal(err)
	}

	var second types.StepResult
	val, err = env.ExecuteActivity(acts.RunStep, types.StepParams{
		StateURI: "memory://bucket/run-2", Step: 2, ScratchSubdir: "run-2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := val.Get(&second); err != nil {
		t.Fatal(err)
	}
	if second.Processed <= first.Processed {
		t.Fatalf("processed must accumulate: first %d, second %d", first.Processed, second.Processed)
	}

	// The persisted checkpoint reflects the second step.
	loader := workstate.NewLoader(factory)
	lr, err := loader.Load(context.Background(), second.CheckpointURI, workstate.ToBuffer())
	if err != nil {
		t.Fatal(err)
	}
	var cp checkpoint
	if err := json.Unmarshal(lr.Bytes, &cp); err != nil {
		t.Fatal(err)
	}
	if cp.Step != 2 {
		t.Errorf("checkpoint step got %d", cp.Step)
	}
	if cp.Processed != second.Processed {
		t.Errorf("checkpoint processed got %d want %d", cp.Processed, second.Processed)
	}
}

func TestRunStepMissingPredecessor(t *testing.T) {
	acts, _ := newTestActivities(t)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts.RunStep)

	_, err := env.ExecuteActivity(acts.RunStep, types.StepParams{
		StateURI: "memory://bucket/run-3", Step: 5, ScratchSubdir: "run-3",
	})
	if err == nil {
		t.Fatal("expected error for a missing predecessor checkpoint")
	}
}

func TestCleanupScratchRejectsRoot(t *testing.T) {
	acts, _ := newTestActivities(t)

	for _, sub := range []string{"", ".", "/", ".."} {
		if err := acts.CleanupScratch(context.Background(), types.CleanupParams{ScratchSubdir: sub}); err == nil {
			t.Errorf("CleanupScratch(%q) must refuse", sub)
		}
	}
}

func TestCleanupScratchIdempotent(t *testing.T) {
	acts, _ := newTestActivities(t)
	if err := acts.CleanupScratch(context.Background(), types.CleanupParams{ScratchSubdir: "gone"}); err != nil {
		t.Fatalf("cleanup of an absent subdir: %v", err)
	}
}
