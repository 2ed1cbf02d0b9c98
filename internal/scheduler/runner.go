package scheduler

import (
	"fmt"
	"os"
	"os/exec"
)

// CommandRunner executes external commands. Abstracted so submission
// logic can be tested without a scheduler installation.
type CommandRunner interface {
	// Run executes name with args, exporting extraEnv on top of the
	// current environment, and returns the combined output.
	Run(name string, args []string, extraEnv map[string]string) (string, error)

	// Start launches the command detached, without waiting for it.
	Start(name string, args []string, extraEnv map[string]string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args []string, extraEnv map[string]string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = environWith(extraEnv)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (ExecRunner) Start(name string, args []string, extraEnv map[string]string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = environWith(extraEnv)
	return cmd.Start()
}

func environWith(extraEnv map[string]string) []string {
	env := os.Environ()
	for k, v := range extraEnv {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
