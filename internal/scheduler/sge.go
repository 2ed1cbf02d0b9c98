package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// SGEBackend submits jobs through qsub. MPI placement uses the
// openmpi-fillup parallel environment for standalone jobs and the
// openmpi-<n>perhost environments for pooled jobs.
type SGEBackend struct {
	jobIDRe   *regexp.Regexp
	perHostRe *regexp.Regexp
}

// NewSGE returns an SGE backend.
func NewSGE() *SGEBackend {
	return &SGEBackend{
		jobIDRe:   regexp.MustCompile(`Your job (\d+)`),
		perHostRe: regexp.MustCompile(`openmpi-(\d+)perhost`),
	}
}

func (s *SGEBackend) Kind() Kind  { return SGE }
func (s *SGEBackend) Bin() string { return "qsub" }

func (s *SGEBackend) SubmitArgs(req *Request) []string {
	args := []string{
		"-cwd",
		"-q", req.Queue,
		"-o", req.Stdout,
		"-e", req.Stderr,
		"-l", "h_rt=" + utils.FormatHMS(req.RuntimeSec),
	}
	args = append(args, req.SlotArgs...)
	args = append(args,
		"-M", req.MailAddress,
		"-m", req.Mail,
		"-N", req.JobName,
		"-V",
	)
	if req.HStackMB > 0 {
		args = append(args, "-l", fmt.Sprintf("h_stack=%dM", req.HStackMB))
	}
	if req.VMemPerSlotMB > 0 {
		args = append(args, "-l", fmt.Sprintf("h_vmem=%dM", req.VMemPerSlotMB))
	}
	return append(args, req.Script)
}

func (s *SGEBackend) SingleSlotArgs(slots int) []string {
	return []string{"-pe", "openmpi-fillup", strconv.Itoa(slots)}
}

func (s *SGEBackend) PoolSlotArgs(totalSlots, perHost int) []string {
	return []string{"-pe", fmt.Sprintf("openmpi-%dperhost", perHost), strconv.Itoa(perHost)}
}

func (s *SGEBackend) InitSlotArgs() []string { return nil }

func (s *SGEBackend) ParseJobID(output string) (string, error) {
	m := s.jobIDRe.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, output)
	}
	return m[1], nil
}

// SmallestPerHost queries the cluster's parallel environments and
// returns the smallest per-host slot count that still fits minSlots.
// Used to shrink pooled test runs onto a single node.
func (s *SGEBackend) SmallestPerHost(runner CommandRunner, minSlots int) (int, error) {
	output, err := runner.Run("qconf", []string{"-spl"}, nil)
	if err != nil {
		return 0, fmt.Errorf("listing parallel environments: %w", err)
	}
	best := 0
	for _, line := range strings.Split(output, "\n") {
		m := s.perHostRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < minSlots {
			continue
		}
		if best == 0 || n < best {
			best = n
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%w: need at least %d slots per host", ErrNoParallelEnv, minSlots)
	}
	return best, nil
}
