package launcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Slurm launches jobs through the SLURM scheduler (sbatch, scontrol,
// scancel).
type Slurm struct {
	profile *Profile

	// Account is the bank account passed as --account.
	Account string
	// ArrayRange submits an array job when set, e.g. "0-9".
	ArrayRange string
	// MailType and MailList control job state notifications.
	MailType string
	MailList string
	// NodeList pins the job to specific hosts when set.
	NodeList string

	sbatchBin   string
	scontrolBin string
	scancelBin  string

	mpt mptProbe
}

var sbatchIDPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// NewSlurm returns a Slurm launcher for the given partition.
func NewSlurm(queue string, cpusPerNode, nodeLimit, timeHours int, profileFile string) (*Slurm, error) {
	s := &Slurm{
		profile:     NewProfile(queue, cpusPerNode, nodeLimit, timeHours),
		sbatchBin:   "sbatch",
		scontrolBin: "scontrol",
		scancelBin:  "scancel",
	}
	if err := s.profile.SetProfileFile(profileFile); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Slurm) Profile() *Profile { return s.profile }
func (s *Slurm) Extension() string { return "slurm" }
func (s *Slurm) WorkdirEnvVar() string { return "$SLURM_SUBMIT_DIR" }

func (s *Slurm) StandardHeader(jobName string) []string {
	prof := s.profile
	lines := []string{
		prof.hashbangLine(),
		fmt.Sprintf("#SBATCH --job-name=%s", jobName),
		fmt.Sprintf("#SBATCH --partition=%s", prof.Queue),
		fmt.Sprintf("#SBATCH --nodes=%d", prof.RequestedNodes()),
		fmt.Sprintf("#SBATCH --ntasks-per-node=%d", prof.RanksPerNode()),
	}
	if prof.GpusPerNode > 0 {
		lines = append(lines, fmt.Sprintf("#SBATCH --gres=gpu:%d", prof.GpusPerNode))
	}
	if prof.Mem != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --mem=%s", prof.Mem))
	}
	if prof.Model != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --constraint=%s", prof.Model))
	}
	lines = append(lines,
		fmt.Sprintf("#SBATCH --time=%d:00:00", prof.TimeHours),
		fmt.Sprintf("#SBATCH --output=qlog_%s", jobName),
		fmt.Sprintf("#SBATCH --error=err_%s", jobName),
		"#SBATCH --no-requeue",
	)
	return lines
}

func (s *Slurm) OptionalHeader(dependency string) []string {
	var lines []string
	if s.Account != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --account=%s", s.Account))
	}
	if s.ArrayRange != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --array=%s", s.ArrayRange))
	}
	if s.MailType != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --mail-type=%s", s.MailType))
		if s.MailList != "" {
			lines = append(lines, fmt.Sprintf("#SBATCH --mail-user=%s", s.MailList))
		}
	}
	if s.NodeList != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --nodelist=%s", s.NodeList))
	}
	if dependency != "" {
		lines = append(lines, fmt.Sprintf("#SBATCH --dependency=afterok:%s", dependency))
	}
	return lines
}

func (s *Slurm) CreateMpiCommand(command, outputRoot string, opts MpiOptions) string {
	return composeMpiCommand(s.profile, s.mpt.usingMPT(s.profile.Mpiexec), command, outputRoot, opts)
}

func (s *Slurm) WriteJobFile(path, jobName string, body []string, dependency string) error {
	return writeJobFile(s, path, jobName, body, dependency)
}

func (s *Slurm) Launch(jobName string, body []string, blocking bool, dependency string) (string, error) {
	return launchJob(s, jobName, body, blocking, dependency)
}

// Submit hands a job file to sbatch and extracts the numeric id from
// its "Submitted batch job N" line.
func (s *Slurm) Submit(scriptPath string, blocking bool) (string, error) {
	args := []string{scriptPath}
	if blocking {
		args = []string{"-W", scriptPath}
	}
	out, err := runAndEcho(s.sbatchBin, args...)
	if err != nil {
		return "", NewSubmissionError("slurm", scriptPath, out, err)
	}
	m := sbatchIDPattern.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("%w: sbatch output %q", ErrJobIDParseFailed, out)
	}
	return m[1], nil
}

func (s *Slurm) Job(id string) (*Job, error) {
	job := &Job{ID: id, gw: s}
	if err := job.Refresh(); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Slurm) Delete(id string) (string, error) {
	return s.deleteJob(id)
}

func (s *Slurm) queryStatus(id string) (string, error) {
	return runQuery(s.scontrolBin, "show", "job", id)
}

// parseStatus reads "scontrol show job" output: whitespace-separated
// key=value tokens. Some values (WorkDir paths) never contain spaces in
// practice; the first occurrence of a key wins.
func (s *Slurm) parseStatus(raw string, job *Job) {
	attrs := make(map[string]string)
	for _, token := range strings.Fields(raw) {
		key, value, found := strings.Cut(token, "=")
		if !found {
			continue
		}
		if _, seen := attrs[key]; !seen {
			attrs[key] = value
		}
	}
	if v, ok := attrs["JobName"]; ok {
		job.Name = v
	}
	if v, ok := attrs["JobState"]; ok {
		job.State = slurmStateToJobState(v)
	}
	if v, ok := attrs["Partition"]; ok {
		job.Queue = v
	}
	if v, ok := attrs["WorkDir"]; ok {
		job.Workdir = v
	}
	job.Nodes = atoiOrZero(attrs["NumNodes"])
	if cpus := atoiOrZero(attrs["NumCPUs"]); cpus > 0 && job.Nodes > 0 {
		job.CpusPerNode = cpus / job.Nodes
	}
	if v, ok := attrs["TimeLimit"]; ok {
		job.WalltimeMax = walltimeToSeconds(v)
	}
	if v, ok := attrs["RunTime"]; ok {
		job.WalltimeUsed = walltimeToSeconds(v)
	}
	if job.State == StateFinished {
		if code, _, found := strings.Cut(attrs["ExitCode"], ":"); found {
			job.ExitStatus = atoiOrZero(code)
		}
	}
}

func (s *Slurm) deleteJob(id string) (string, error) {
	return runAndEcho(s.scancelBin, id)
}

func slurmStateToJobState(state string) JobState {
	switch state {
	case "PENDING":
		return StateQueued
	case "RUNNING", "COMPLETING":
		return StateRunning
	case "SUSPENDED":
		return StateHeld
	case "COMPLETED", "FAILED", "CANCELLED", "TIMEOUT":
		return StateFinished
	default:
		return StateUnknown
	}
}
