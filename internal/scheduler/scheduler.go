// Package scheduler builds and submits batch jobs to HPC job
// schedulers. SGE and SLURM are supported.
package scheduler

import "strings"

// Kind identifies a job scheduler.
type Kind string

const (
	SGE   Kind = "sge"
	SLURM Kind = "slurm"
)

// ParseKind normalizes a scheduler name from the config file.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "sge":
		return SGE, nil
	case "slurm":
		return SLURM, nil
	default:
		return "", &UnknownKindError{Name: name}
	}
}

// Request describes one batch submission. Env is exported to the job
// through the scheduler's environment forwarding (-V / --export=ALL).
type Request struct {
	JobName       string
	Queue         string
	QOS           string // SLURM only
	Stdout        string
	Stderr        string
	RuntimeSec    float64
	MailAddress   string
	Mail          string // event mask: any of n, b, e, a
	SlotArgs      []string
	VMemPerSlotMB int // 0 disables the memory request
	HStackMB      int // 0 disables the stack size request, SGE only
	Script        string
	Env           map[string]string
}

// Backend translates a Request into a scheduler-specific command line.
type Backend interface {
	Kind() Kind

	// Bin is the submission binary name.
	Bin() string

	// SubmitArgs builds the full argument list for Bin.
	SubmitArgs(req *Request) []string

	// SingleSlotArgs places one standalone MPI job.
	SingleSlotArgs(slots int) []string

	// PoolSlotArgs places a pooled job of totalSlots processes with
	// perHost slots per node.
	PoolSlotArgs(totalSlots, perHost int) []string

	// InitSlotArgs places a single-core initialization job.
	InitSlotArgs() []string

	// ParseJobID extracts the job ID from the submission output.
	ParseJobID(output string) (string, error)
}

// New returns the backend for the given scheduler kind.
func New(kind Kind) (Backend, error) {
	switch kind {
	case SGE:
		return NewSGE(), nil
	case SLURM:
		return NewSLURM(""), nil
	default:
		return nil, &UnknownKindError{Name: string(kind)}
	}
}
