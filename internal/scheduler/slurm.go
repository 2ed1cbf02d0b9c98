package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// SLURMBackend submits jobs through sbatch. SLURM does not allow
// oversubscription, so standalone jobs request whole nodes and pooled
// jobs pack slots per node.
type SLURMBackend struct {
	sbatchBin string
	jobIDRe   *regexp.Regexp
}

// NewSLURM returns a SLURM backend. An empty bin means sbatch from
// PATH.
func NewSLURM(bin string) *SLURMBackend {
	if bin == "" {
		bin = "sbatch"
	}
	return &SLURMBackend{
		sbatchBin: bin,
		jobIDRe:   regexp.MustCompile(`Submitted batch job (\d+)`),
	}
}

func (s *SLURMBackend) Kind() Kind  { return SLURM }
func (s *SLURMBackend) Bin() string { return s.sbatchBin }

func (s *SLURMBackend) SubmitArgs(req *Request) []string {
	args := []string{
		"-p", req.Queue,
		"-o", req.Stdout,
		"-e", req.Stderr,
		"--time=" + utils.FormatHMS(req.RuntimeSec),
	}
	args = append(args, req.SlotArgs...)
	args = append(args,
		"--mail-user="+req.MailAddress,
		"--mail-type="+MailEvents(req.Mail),
		"-J", req.JobName,
		"--export=ALL",
	)
	if req.QOS != "" {
		args = append(args, "--qos="+req.QOS)
	}
	if req.VMemPerSlotMB > 0 {
		args = append(args, fmt.Sprintf("--mem-per-cpu=%dM", req.VMemPerSlotMB))
	}
	return append(args, req.Script)
}

func (s *SLURMBackend) SingleSlotArgs(slots int) []string {
	return []string{"-N", strconv.Itoa(slots)}
}

func (s *SLURMBackend) PoolSlotArgs(totalSlots, perHost int) []string {
	nodes := int(math.Ceil(float64(totalSlots) / float64(perHost)))
	return []string{fmt.Sprintf("--ntasks-per-node=%d", perHost), "-N", strconv.Itoa(nodes)}
}

func (s *SLURMBackend) InitSlotArgs() []string {
	return []string{"-N", "1", "-n", "1"}
}

func (s *SLURMBackend) ParseJobID(output string) (string, error) {
	m := s.jobIDRe.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, output)
	}
	return m[1], nil
}

// MailEvents translates the portable mail mask into SLURM mail types.
func MailEvents(mask string) string {
	var events []string
	for _, me := range []struct {
		flag  string
		event string
	}{
		{"n", "NONE"},
		{"b", "BEGIN"},
		{"e", "END"},
		{"a", "FAIL"},
	} {
		if strings.Contains(mask, me.flag) {
			events = append(events, me.event)
		}
	}
	return strings.Join(events, ",")
}
