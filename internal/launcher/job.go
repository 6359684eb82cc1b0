package launcher

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qbatch/qbatch/internal/utils"
)

// JobState is the normalized lifecycle state of a batch job. Every
// scheduler's native state codes collapse into this set.
type JobState string

const (
	StateQueued   JobState = "queued"
	StateRunning  JobState = "running"
	StateHeld     JobState = "held"
	StateFinished JobState = "finished"
	StateUnknown  JobState = "unknown"
)

// Job is a snapshot of a scheduled job's status. Refresh re-queries the
// scheduler and updates the snapshot in place.
type Job struct {
	ID    string
	Name  string
	State JobState

	// Queue, Workdir, and the resource fields are filled from the
	// scheduler's status query when available.
	Queue        string
	Workdir      string
	Model        string
	Nodes        int
	CpusPerNode  int
	WalltimeMax  int
	WalltimeUsed int

	// ExitStatus is only meaningful once State is finished.
	ExitStatus int

	gw gateway
}

// gateway is the per-scheduler status backend a Job refreshes through.
type gateway interface {
	queryStatus(id string) (string, error)
	parseStatus(raw string, job *Job)
	deleteJob(id string) (string, error)
}

// Refresh re-queries the scheduler for this job's status. A job the
// scheduler no longer knows about becomes an empty StateUnknown record,
// not an error: completed jobs age out of scheduler history.
func (j *Job) Refresh() error {
	if j.gw == nil {
		return ErrNoActiveLauncher
	}
	raw, err := j.gw.queryStatus(j.ID)
	if isUnknownJobOutput(raw) {
		j.resetToUnknown()
		return nil
	}
	if err != nil {
		return fmt.Errorf("query status of job %s: %w", j.ID, err)
	}
	j.gw.parseStatus(raw, j)
	return nil
}

// resetToUnknown clears everything but the id, matching what the
// scheduler knows about the job: nothing.
func (j *Job) resetToUnknown() {
	*j = Job{ID: j.ID, State: StateUnknown, gw: j.gw}
}

// Delete removes the job from the scheduler and returns the scheduler's
// output.
func (j *Job) Delete() (string, error) {
	if j.gw == nil {
		return "", ErrNoActiveLauncher
	}
	return j.gw.deleteJob(j.ID)
}

// Active reports whether the job still occupies scheduler capacity.
func (j *Job) Active() bool {
	switch j.State {
	case StateQueued, StateRunning, StateHeld:
		return true
	}
	return false
}

// TailFileUntilFinished polls the job and prints any new lines appended
// to path, until the job leaves the active states. The file not
// existing yet is normal while the job is queued.
func (j *Job) TailFileUntilFinished(path string, interval time.Duration) error {
	var offset int64
	for {
		if err := j.Refresh(); err != nil {
			return err
		}
		if data, err := os.ReadFile(path); err == nil && int64(len(data)) > offset {
			fmt.Print(string(data[offset:]))
			offset = int64(len(data))
		}
		if !j.Active() {
			return nil
		}
		time.Sleep(interval)
	}
}

// unknownJobMarkers are the scheduler error strings that mean "this id
// is not (or no longer) known".
var unknownJobMarkers = []string{
	"Unknown Job Id",           // PBS qstat
	"Invalid job id specified", // SLURM scontrol
	"is not found",             // LSF bjobs
}

func isUnknownJobOutput(raw string) bool {
	for _, m := range unknownJobMarkers {
		if strings.Contains(raw, m) {
			return true
		}
	}
	return false
}

// parseQstatAttributes turns "qstat -xf" output into a key/value map.
// Attribute lines look like "    key = value". Long values wrap onto
// continuation lines that begin with a tab; continuations are appended
// verbatim to the previous key's value with only the leading tab
// stripped, since PBS wraps mid-token.
func parseQstatAttributes(raw string) map[string]string {
	attrs := make(map[string]string)
	lastKey := ""
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "\t") {
			if lastKey != "" {
				attrs[lastKey] += strings.TrimPrefix(line, "\t")
			}
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.Contains(key, " ") {
			continue
		}
		attrs[key] = strings.TrimSpace(value)
		lastKey = key
	}
	return attrs
}

// workdirFromVariableList extracts PBS_O_WORKDIR from the job's
// Variable_List attribute.
func workdirFromVariableList(variableList string) string {
	const marker = "PBS_O_WORKDIR="
	idx := strings.Index(variableList, marker)
	if idx < 0 {
		return ""
	}
	dir := variableList[idx+len(marker):]
	if comma := strings.Index(dir, ","); comma >= 0 {
		dir = dir[:comma]
	}
	return dir
}

// parseSelectSpec reads a PBS chunk request like
// "16:ncpus=40:mpiprocs=40:model=sky_ele" into node count, cores per
// node, and processor model.
func parseSelectSpec(spec string) (nodes, cpusPerNode int, model string) {
	segments := strings.Split(spec, ":")
	nodes = atoiOrZero(segments[0])
	for _, seg := range segments[1:] {
		key, value, found := strings.Cut(seg, "=")
		if !found {
			continue
		}
		switch key {
		case "ncpus":
			cpusPerNode = atoiOrZero(value)
		case "model":
			model = value
		}
	}
	return nodes, cpusPerNode, model
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// walltimeToSeconds converts an "HH:MM:SS" walltime string to seconds.
func walltimeToSeconds(walltime string) int {
	parts := strings.Split(walltime, ":")
	if len(parts) != 3 {
		return 0
	}
	seconds := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}
	return seconds
}

func pbsStateToJobState(code string) JobState {
	switch code {
	case "Q":
		return StateQueued
	case "R", "E":
		return StateRunning
	case "H":
		return StateHeld
	case "F":
		return StateFinished
	default:
		utils.PrintDebug("unrecognized PBS job state %q", code)
		return StateUnknown
	}
}
