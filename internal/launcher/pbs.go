package launcher

import (
	"fmt"
	"strings"
)

// PBS launches jobs through the PBS Pro scheduler (qsub, qstat, qdel).
type PBS struct {
	profile *Profile

	// GroupList is the accounting group passed as -W group_list.
	GroupList string
	// ArrayRange submits an array job when set, e.g. "1-10".
	ArrayRange string
	// MailOptions and MailList control job state notifications.
	MailOptions string
	MailList    string
	// DependencyType is the qsub dependency clause, "afterok" by default.
	DependencyType string

	qsubBin  string
	qstatBin string
	qdelBin  string

	mpt mptProbe
}

// NewPBS returns a PBS launcher for the given queue. profileFile may be
// empty; when set it must exist.
func NewPBS(queue string, cpusPerNode, nodeLimit, timeHours int, profileFile string) (*PBS, error) {
	p := &PBS{
		profile:        NewProfile(queue, cpusPerNode, nodeLimit, timeHours),
		DependencyType: "afterok",
		qsubBin:        "qsub",
		qstatBin:       "qstat",
		qdelBin:        "qdel",
	}
	if err := p.profile.SetProfileFile(profileFile); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PBS) Profile() *Profile { return p.profile }
func (p *PBS) Extension() string { return "pbs" }
func (p *PBS) WorkdirEnvVar() string { return "$PBS_O_WORKDIR" }

// StandardHeader emits the directives every PBS job file carries.
func (p *PBS) StandardHeader(jobName string) []string {
	prof := p.profile
	return []string{
		prof.hashbangLine(),
		fmt.Sprintf("#PBS -N %s", jobName),
		fmt.Sprintf("#PBS -q %s", prof.Queue),
		fmt.Sprintf("#PBS -l select=%s", p.selectSpec()),
		fmt.Sprintf("#PBS -l walltime=%d:00:00", prof.TimeHours),
		fmt.Sprintf("#PBS -o %s_pbs.log", jobName),
		"#PBS -j oe",
		"#PBS -r n",
	}
}

// selectSpec renders the chunk request. Field order matters to PBS:
// ncpus, ngpus, mpiprocs, then mem and model.
func (p *PBS) selectSpec() string {
	prof := p.profile
	var b strings.Builder
	fmt.Fprintf(&b, "%d:ncpus=%d", prof.RequestedNodes(), prof.CpusPerNode)
	if prof.GpusPerNode > 0 {
		fmt.Fprintf(&b, ":ngpus=%d", prof.GpusPerNode)
	}
	fmt.Fprintf(&b, ":mpiprocs=%d", prof.RanksPerNode())
	if prof.Mem != "" {
		fmt.Fprintf(&b, ":mem=%s", prof.Mem)
	}
	if prof.Model != "" {
		fmt.Fprintf(&b, ":model=%s", prof.Model)
	}
	return b.String()
}

// OptionalHeader emits the directives that depend on launcher settings
// or the per-launch dependency.
func (p *PBS) OptionalHeader(dependency string) []string {
	var lines []string
	if p.GroupList != "" {
		lines = append(lines, fmt.Sprintf("#PBS -W group_list=%s", p.GroupList))
	}
	if p.ArrayRange != "" {
		lines = append(lines, fmt.Sprintf("#PBS -J %s", p.ArrayRange))
	}
	if p.MailOptions != "" {
		lines = append(lines, fmt.Sprintf("#PBS -m %s", p.MailOptions))
		if p.MailList != "" {
			lines = append(lines, fmt.Sprintf("#PBS -M %s", p.MailList))
		}
	}
	if dependency != "" {
		lines = append(lines, fmt.Sprintf("#PBS -W depend=%s:%s", p.DependencyType, dependency))
	}
	return lines
}

func (p *PBS) CreateMpiCommand(command, outputRoot string, opts MpiOptions) string {
	return composeMpiCommand(p.profile, p.mpt.usingMPT(p.profile.Mpiexec), command, outputRoot, opts)
}

func (p *PBS) WriteJobFile(path, jobName string, body []string, dependency string) error {
	return writeJobFile(p, path, jobName, body, dependency)
}

func (p *PBS) Launch(jobName string, body []string, blocking bool, dependency string) (string, error) {
	return launchJob(p, jobName, body, blocking, dependency)
}

// Submit hands a job file to qsub and returns the job id. qsub prints
// the id alone on stdout.
func (p *PBS) Submit(scriptPath string, blocking bool) (string, error) {
	args := []string{scriptPath}
	if blocking {
		args = []string{"-Wblock=true", scriptPath}
	}
	out, err := runAndEcho(p.qsubBin, args...)
	if err != nil {
		return "", NewSubmissionError("pbs", scriptPath, out, err)
	}
	return out, nil
}

// Job queries qstat for the given id and returns its status snapshot.
func (p *PBS) Job(id string) (*Job, error) {
	job := &Job{ID: id, gw: p}
	if err := job.Refresh(); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a job with qdel.
func (p *PBS) Delete(id string) (string, error) {
	return p.deleteJob(id)
}

func (p *PBS) queryStatus(id string) (string, error) {
	return runQuery(p.qstatBin, "-xf", id)
}

func (p *PBS) parseStatus(raw string, job *Job) {
	attrs := parseQstatAttributes(raw)
	if v, ok := attrs["Job_Name"]; ok {
		job.Name = v
	}
	if v, ok := attrs["job_state"]; ok {
		job.State = pbsStateToJobState(v)
	}
	if v, ok := attrs["queue"]; ok {
		job.Queue = v
	}
	if v, ok := attrs["Variable_List"]; ok {
		job.Workdir = workdirFromVariableList(v)
	}
	if v, ok := attrs["Resource_List.select"]; ok {
		job.Nodes, job.CpusPerNode, job.Model = parseSelectSpec(v)
	}
	if v, ok := attrs["Resource_List.walltime"]; ok {
		job.WalltimeMax = walltimeToSeconds(v)
	}
	if v, ok := attrs["resources_used.walltime"]; ok {
		job.WalltimeUsed = walltimeToSeconds(v)
	}
	if job.State == StateFinished {
		job.ExitStatus = atoiOrZero(attrs["Exit_status"])
	}
}

func (p *PBS) deleteJob(id string) (string, error) {
	return runAndEcho(p.qdelBin, id)
}
