package scheduler

import (
	"errors"
	"fmt"
)

// ErrJobIDParseFailed indicates the submission output did not contain
// a recognizable job ID.
var ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")

// ErrNoParallelEnv indicates no matching parallel environment exists
// on the cluster.
var ErrNoParallelEnv = errors.New("no suitable parallel environment found")

// UnknownKindError reports an unsupported scheduler name.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("job scheduler %q not implemented, use SGE or SLURM", e.Name)
}

// SubmissionError wraps a failed submission command with its output.
type SubmissionError struct {
	Kind    Kind
	JobName string
	Output  string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s submission of job %s failed: %v\n%s", e.Kind, e.JobName, e.Err, e.Output)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
