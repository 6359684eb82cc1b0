package launcher

import (
	"fmt"
	"os/exec"

	"github.com/qbatch/qbatch/internal/utils"
)

// Local runs job bodies directly in the current shell instead of
// submitting them to a scheduler. It keeps the PBS header and MPI
// composition behavior so scripts written through it stay valid, which
// makes it a drop-in stand-in for dry runs and tests on machines
// without a scheduler.
type Local struct {
	*PBS

	// StopAtFirstFailure aborts the body at the first failing line.
	StopAtFirstFailure bool

	launched int
	statuses map[string]int
}

// NewLocal returns a launcher that executes job bodies immediately.
func NewLocal(profileFile string) (*Local, error) {
	pbs, err := NewPBS("local", 1, 1, 1, profileFile)
	if err != nil {
		return nil, err
	}
	return &Local{PBS: pbs, statuses: make(map[string]int)}, nil
}

// Launch writes the job file for the record, then runs each body line
// with bash. The returned id is synthetic and only meaningful to this
// launcher. Blocking and dependencies do not apply to local execution.
func (l *Local) Launch(jobName string, body []string, blocking bool, dependency string) (string, error) {
	scriptPath := fmt.Sprintf("%s.%s", jobName, l.Extension())
	if err := l.WriteJobFile(scriptPath, jobName, body, dependency); err != nil {
		return "", err
	}
	failures := 0
	for _, line := range body {
		utils.PrintCommand(line)
		cmd := exec.Command("bash", "-c", line)
		out, err := cmd.CombinedOutput()
		if len(out) > 0 {
			utils.PrintMessage("%s", out)
		}
		if err != nil {
			failures++
			utils.PrintError("command failed: %s", line)
			if l.StopAtFirstFailure {
				break
			}
		}
	}
	l.launched++
	id := fmt.Sprintf("local.%d", l.launched)
	l.statuses[id] = failures
	return id, nil
}

// Submit is not meaningful for local execution; the body never reaches
// a scheduler.
func (l *Local) Submit(scriptPath string, blocking bool) (string, error) {
	return "", fmt.Errorf("local launcher runs bodies directly: %w", ErrSchedulerNotFound)
}

// Job reports every locally launched job as finished, with the number
// of failed body lines as its exit status.
func (l *Local) Job(id string) (*Job, error) {
	failures, ok := l.statuses[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown local job %s", ErrJobIDParseFailed, id)
	}
	return &Job{ID: id, State: StateFinished, ExitStatus: failures}, nil
}

// Delete is a no-op for local jobs, which finish before Launch returns.
func (l *Local) Delete(id string) (string, error) {
	return "", nil
}
