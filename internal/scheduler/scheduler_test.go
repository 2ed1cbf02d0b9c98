package scheduler

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRequest() *Request {
	return &Request{
		JobName:     "pool_a_b",
		Queue:       "std.q",
		Stdout:      "logs/pool_a_b.out",
		Stderr:      "logs/pool_a_b.err",
		RuntimeSec:  3661,
		MailAddress: "user@example.com",
		Mail:        "ea",
		SlotArgs:    []string{"-pe", "openmpi-16perhost", "16"},
		Script:      "run_wrf.job",
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"sge": SGE, "SGE": SGE, "slurm": SLURM} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", name, got, err)
		}
	}

	_, err := ParseKind("pbs")
	var uke *UnknownKindError
	if !errors.As(err, &uke) {
		t.Fatalf("want UnknownKindError, got %v", err)
	}
	if uke.Name != "pbs" {
		t.Errorf("error name = %q", uke.Name)
	}
}

func TestSGESubmitArgs(t *testing.T) {
	req := sampleRequest()
	got := NewSGE().SubmitArgs(req)
	want := []string{
		"-cwd",
		"-q", "std.q",
		"-o", "logs/pool_a_b.out",
		"-e", "logs/pool_a_b.err",
		"-l", "h_rt=001:01:01",
		"-pe", "openmpi-16perhost", "16",
		"-M", "user@example.com",
		"-m", "ea",
		"-N", "pool_a_b",
		"-V",
		"run_wrf.job",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SubmitArgs =\n%v\nwant\n%v", got, want)
	}
}

func TestSGESubmitArgsWithResources(t *testing.T) {
	req := sampleRequest()
	req.HStackMB = 128
	req.VMemPerSlotMB = 1500
	got := NewSGE().SubmitArgs(req)

	assertContainsSeq(t, got, "-l", "h_stack=128M")
	assertContainsSeq(t, got, "-l", "h_vmem=1500M")
	if got[len(got)-1] != "run_wrf.job" {
		t.Errorf("script must stay last, args = %v", got)
	}
}

func TestSLURMSubmitArgs(t *testing.T) {
	req := sampleRequest()
	req.QOS = "normal"
	req.VMemPerSlotMB = 1500
	req.SlotArgs = []string{"--ntasks-per-node=16", "-N", "3"}
	got := NewSLURM("").SubmitArgs(req)
	want := []string{
		"-p", "std.q",
		"-o", "logs/pool_a_b.out",
		"-e", "logs/pool_a_b.err",
		"--time=001:01:01",
		"--ntasks-per-node=16", "-N", "3",
		"--mail-user=user@example.com",
		"--mail-type=END,FAIL",
		"-J", "pool_a_b",
		"--export=ALL",
		"--qos=normal",
		"--mem-per-cpu=1500M",
		"run_wrf.job",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SubmitArgs =\n%v\nwant\n%v", got, want)
	}
}

func assertContainsSeq(t *testing.T, args []string, seq ...string) {
	t.Helper()
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j, s := range seq {
			if args[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	t.Errorf("args %v missing sequence %v", args, seq)
}

func TestSlotArgs(t *testing.T) {
	sge := NewSGE()
	if got := sge.SingleSlotArgs(8); !reflect.DeepEqual(got, []string{"-pe", "openmpi-fillup", "8"}) {
		t.Errorf("SGE SingleSlotArgs = %v", got)
	}
	if got := sge.PoolSlotArgs(40, 16); !reflect.DeepEqual(got, []string{"-pe", "openmpi-16perhost", "16"}) {
		t.Errorf("SGE PoolSlotArgs = %v", got)
	}
	if got := sge.InitSlotArgs(); got != nil {
		t.Errorf("SGE InitSlotArgs = %v; want nil", got)
	}

	slurm := NewSLURM("")
	if got := slurm.PoolSlotArgs(40, 16); !reflect.DeepEqual(got, []string{"--ntasks-per-node=16", "-N", "3"}) {
		t.Errorf("SLURM PoolSlotArgs = %v", got)
	}
	if got := slurm.InitSlotArgs(); !reflect.DeepEqual(got, []string{"-N", "1", "-n", "1"}) {
		t.Errorf("SLURM InitSlotArgs = %v", got)
	}
}

func TestParseJobID(t *testing.T) {
	id, err := NewSGE().ParseJobID("Your job 1234567 (\"pool_a\") has been submitted")
	if err != nil || id != "1234567" {
		t.Errorf("SGE ParseJobID = %q, %v", id, err)
	}
	id, err = NewSLURM("").ParseJobID("Submitted batch job 42")
	if err != nil || id != "42" {
		t.Errorf("SLURM ParseJobID = %q, %v", id, err)
	}
	if _, err := NewSGE().ParseJobID("qsub: error"); !errors.Is(err, ErrJobIDParseFailed) {
		t.Errorf("want ErrJobIDParseFailed, got %v", err)
	}
}

func TestMailEvents(t *testing.T) {
	cases := []struct{ mask, want string }{
		{"ea", "END,FAIL"},
		{"bea", "BEGIN,END,FAIL"},
		{"n", "NONE"},
		{"", ""},
	}
	for _, c := range cases {
		if got := MailEvents(c.mask); got != c.want {
			t.Errorf("MailEvents(%q) = %q; want %q", c.mask, got, c.want)
		}
	}
}
