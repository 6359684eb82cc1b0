package launcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/qbatch/qbatch/internal/utils"
)

// LSF launches jobs through IBM Spectrum LSF (bsub, bjobs, bkill). It
// targets GPU machines where ranks are laid out with jsrun, one rank
// per GPU.
type LSF struct {
	profile *Profile

	// Project is the accounting project passed as -P.
	Project string
	// NotifyWhenDone adds the -N mail directive.
	NotifyWhenDone bool

	bsubBin  string
	bjobsBin string
	bkillBin string
}

var bsubIDPattern = regexp.MustCompile(`Job <(\d+)> is submitted`)

// NewLSF returns an LSF launcher charging the given project.
func NewLSF(project string, gpusPerNode, cpusPerNode, nodeLimit, timeHours int, profileFile string) (*LSF, error) {
	l := &LSF{
		profile:  NewProfile("", cpusPerNode, nodeLimit, timeHours),
		Project:  project,
		bsubBin:  "bsub",
		bjobsBin: "bjobs",
		bkillBin: "bkill",
	}
	l.profile.GpusPerNode = gpusPerNode
	l.profile.Mpiexec = "jsrun"
	if err := l.profile.SetProfileFile(profileFile); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LSF) Profile() *Profile { return l.profile }
func (l *LSF) Extension() string { return "lsf" }
func (l *LSF) WorkdirEnvVar() string { return "$LS_SUBCWD" }

func (l *LSF) StandardHeader(jobName string) []string {
	prof := l.profile
	return []string{
		prof.hashbangLine(),
		fmt.Sprintf("#BSUB -P %s", l.Project),
		fmt.Sprintf("#BSUB -J %s", jobName),
		fmt.Sprintf("#BSUB -nnodes %d", prof.RequestedNodes()),
		fmt.Sprintf("#BSUB -W %d:00", prof.TimeHours),
	}
}

func (l *LSF) OptionalHeader(dependency string) []string {
	var lines []string
	if l.NotifyWhenDone {
		lines = append(lines, "#BSUB -N")
	}
	if dependency != "" {
		lines = append(lines, fmt.Sprintf(`#BSUB -w ended(%s)`, dependency))
	}
	return lines
}

// CreateMpiCommand lays out one rank per GPU with jsrun.
func (l *LSF) CreateMpiCommand(command, outputRoot string, opts MpiOptions) string {
	prof := l.profile
	ranks := prof.RequestedNodes() * prof.GpusPerNode
	cores := opts.OpenMPThreads
	if cores < 1 {
		cores = 1
	}
	return joinNonEmpty([]string{
		fmt.Sprintf("%s -n %d -a 1 -c %d -g 1", prof.Mpiexec, ranks, cores),
		command,
		prof.redirectOutput(outputRoot + ".out"),
	})
}

func (l *LSF) WriteJobFile(path, jobName string, body []string, dependency string) error {
	return writeJobFile(l, path, jobName, body, dependency)
}

func (l *LSF) Launch(jobName string, body []string, blocking bool, dependency string) (string, error) {
	return launchJob(l, jobName, body, blocking, dependency)
}

// Submit hands a job file to bsub. bsub has no blocking mode, so
// blocking is reported and ignored.
func (l *LSF) Submit(scriptPath string, blocking bool) (string, error) {
	if blocking {
		utils.PrintWarning("bsub does not support blocking submission; continuing without it")
	}
	out, err := runAndEcho(l.bsubBin, scriptPath)
	if err != nil {
		return "", NewSubmissionError("lsf", scriptPath, out, err)
	}
	m := bsubIDPattern.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("%w: bsub output %q", ErrJobIDParseFailed, out)
	}
	return m[1], nil
}

func (l *LSF) Job(id string) (*Job, error) {
	job := &Job{ID: id, gw: l}
	if err := job.Refresh(); err != nil {
		return nil, err
	}
	return job, nil
}

func (l *LSF) Delete(id string) (string, error) {
	return l.deleteJob(id)
}

func (l *LSF) queryStatus(id string) (string, error) {
	return runQuery(l.bjobsBin, "-o", "jobid stat job_name queue exec_cwd exit_code", "-noheader", id)
}

// parseStatus reads the single -noheader line bjobs prints for the
// requested format. Unset columns come back as "-".
func (l *LSF) parseStatus(raw string, job *Job) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 5 {
		return
	}
	job.State = lsfStateToJobState(fields[1])
	job.Name = fields[2]
	job.Queue = fields[3]
	if fields[4] != "-" {
		job.Workdir = fields[4]
	}
	if job.State == StateFinished && len(fields) > 5 && fields[5] != "-" {
		job.ExitStatus = atoiOrZero(fields[5])
	}
}

func (l *LSF) deleteJob(id string) (string, error) {
	return runAndEcho(l.bkillBin, id)
}

func lsfStateToJobState(state string) JobState {
	switch state {
	case "PEND":
		return StateQueued
	case "RUN":
		return StateRunning
	case "PSUSP", "USUSP", "SSUSP":
		return StateHeld
	case "DONE", "EXIT":
		return StateFinished
	default:
		return StateUnknown
	}
}
