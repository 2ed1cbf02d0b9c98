package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "000:00:00"},
		{59, "000:00:59"},
		{3661, "001:01:01"},
		{3661.9, "001:01:01"}, // fractional seconds truncated
		{360000, "100:00:00"},
	}
	for _, c := range cases {
		if got := FormatHMS(c.seconds); got != c.want {
			t.Errorf("FormatHMS(%v) = %q; want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatMB(t *testing.T) {
	if got := FormatMB(1250); got != "1250.0M" {
		t.Errorf("FormatMB(1250) = %q", got)
	}
	if got := FormatMB(850.25); got != "850.2M" {
		t.Errorf("FormatMB(850.25) = %q", got)
	}
}

func TestRoundMB(t *testing.T) {
	if got := RoundMB(127.5); got != 128 {
		t.Errorf("RoundMB(127.5) = %d", got)
	}
	if got := RoundMB(127.4); got != 127 {
		t.Errorf("RoundMB(127.4) = %d", got)
	}
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := TailLines(path, 2); got != "c\nd" {
		t.Errorf("TailLines = %q", got)
	}
	if got := TailLines(path, 10); got != "a\nb\nc\nd" {
		t.Errorf("short file TailLines = %q", got)
	}
	if got := TailLines(filepath.Join(t.TempDir(), "missing"), 2); got != "" {
		t.Errorf("missing file TailLines = %q", got)
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(file) || FileExists(dir) {
		t.Error("FileExists misclassifies")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Error("DirExists misclassifies")
	}
}
