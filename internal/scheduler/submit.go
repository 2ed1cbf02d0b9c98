package scheduler

import (
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// Submitter runs submissions against one backend.
type Submitter struct {
	Backend Backend
	Runner  CommandRunner
	Verbose bool
	DryRun  bool // print the command without executing it
}

// Submit sends the request to the scheduler and returns the job ID.
// In dry-run mode the command is only validated and printed.
func (s *Submitter) Submit(req *Request) (string, error) {
	args := s.Backend.SubmitArgs(req)
	if s.Verbose || s.DryRun {
		utils.PrintMessage("%s %s", s.Backend.Bin(), strings.Join(args, " "))
	}
	if s.DryRun {
		return "", nil
	}

	output, err := s.Runner.Run(s.Backend.Bin(), args, req.Env)
	if err != nil {
		return "", &SubmissionError{
			Kind:    s.Backend.Kind(),
			JobName: req.JobName,
			Output:  output,
			Err:     err,
		}
	}
	return s.Backend.ParseJobID(output)
}
