package types

// PipelineParams is the input for the checkpointed pipeline workflow.
type PipelineParams struct {
	// StateURI is the store URL prefix checkpoints are written under,
	// e.g. s3://bucket/runs/42 or memory://bucket/runs/42.
	StateURI string `json:"state_uri"`
	// Steps is the number of pipeline steps to execute.
	Steps int `json:"steps"`
	// Optional relative subdirectory under the scratch root where this
	// workflow's activities stage temp files. If empty, activities pick one.
	ScratchSubdir string `json:"scratch_subdir"`
	// If true, the workflow skips cleaning up the scratch subdir after
	// completion/failure.
	KeepScratch bool `json:"keep_scratch"`
}

// StepParams is the input for a single pipeline step activity.
type StepParams struct {
	StateURI      string `json:"state_uri"`
	Step          int    `json:"step"`
	ScratchSubdir string `json:"scratch_subdir"`
}

// StepResult reports the checkpoint a step wrote.
type StepResult struct {
	CheckpointURI string `json:"checkpoint_uri"`
	Processed     uint64 `json:"processed"`
}

// PipelineResult is the workflow output.
type PipelineResult struct {
	CheckpointURIs []string `json:"checkpoint_uris"`
	Processed      uint64   `json:"processed"`
}

// CleanupParams instructs the cleanup activity which subdir to remove.
type CleanupParams struct {
	ScratchSubdir string `json:"scratch_subdir"`
}
