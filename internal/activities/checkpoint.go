package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/sagikazarmark/workstate"
	wsmetrics "github.com/sagikazarmark/workstate/internal/metrics"
	"github.com/sagikazarmark/workstate/internal/types"
)

// checkpoint is the state carried between steps. Opaque to the store; only
// the activities interpret it.
type checkpoint struct {
	Step      int       `json:"step"`
	Processed uint64    `json:"processed"`
	UpdatedAt time.Time `json:"updated_at"`
}

func checkpointURI(stateURI string, step int) string {
	return fmt.Sprintf("%s/step-%03d.json", stateURI, step)
}

// RunStep hydrates the previous step's checkpoint, does this step's work in a
// scratch subdir, and persists the new checkpoint. Step 1 starts from an
// empty checkpoint; for any later step a missing predecessor is an error.
func (a *Activities) RunStep(ctx context.Context, p types.StepParams) (types.StepResult, error) {
	var cp checkpoint

	if p.Step > 0 {
		prev := checkpointURI(p.StateURI, p.Step-1)
		res, err := a.loader.Load(ctx, prev, workstate.ToBuffer())
		switch {
		case err == nil:
			if err := json.Unmarshal(res.Bytes, &cp); err != nil {
				return types.StepResult{}, fmt.Errorf("decode checkpoint %s: %w", prev, err)
			}
			wsmetrics.Loads.Inc()
			wsmetrics.BytesLoaded.Add(float64(res.Size))
		case errors.Is(err, workstate.ErrNotFound) && p.Step == 1:
			// First step of a fresh run.
		default:
			return types.StepResult{}, err
		}
	}

	scratch := filepath.Join(a.cfg.ScratchDir, p.ScratchSubdir, uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return types.StepResult{}, err
	}
	defer os.RemoveAll(scratch)

	processed, err := a.doStepWork(ctx, scratch, p.Step)
	if err != nil {
		return types.StepResult{}, err
	}

	cp.Step = p.Step
	cp.Processed += processed
	cp.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cp)
	if err != nil {
		return types.StepResult{}, err
	}

	uri := checkpointURI(p.StateURI, p.Step)
	pr, err := a.persister.Persist(ctx, uri, workstate.FromBytes(data))
	if err != nil {
		return types.StepResult{}, err
	}
	wsmetrics.Persists.Inc()
	wsmetrics.BytesPersisted.Add(float64(pr.Size))

	a.logger.Info("checkpoint persisted",
		zap.Int("step", p.Step),
		zap.String("uri", uri),
		zap.Uint64("processed", cp.Processed),
	)

	return types.StepResult{CheckpointURI: uri, Processed: cp.Processed}, nil
}

// doStepWork stands in for the real per-step computation: it stages output in
// the scratch dir and heartbeats while doing so.
func (a *Activities) doStepWork(ctx context.Context, scratch string, step int) (uint64, error) {
	out := filepath.Join(scratch, fmt.Sprintf("step-%03d.out", step))
	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var processed uint64
	lastHB := time.Now()
	for i := 0; i < 1000; i++ {
		if _, err := fmt.Fprintf(f, "step=%d record=%d\n", step, i); err != nil {
			return 0, err
		}
		processed++
		if processed%500 == 0 || time.Since(lastHB) > 10*time.Second {
			activity.RecordHeartbeat(ctx, processed)
			lastHB = time.Now()
		}
	}
	return processed, f.Sync()
}
