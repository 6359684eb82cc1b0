// Package launcher generates batch scripts for HPC schedulers (PBS,
// SLURM, LSF), submits them through the scheduler's own CLI tools, and
// parses job status back into typed records.
package launcher

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/qbatch/qbatch/internal/utils"
)

// Type identifies a scheduler family.
type Type string

const (
	TypeUnknown Type = ""
	TypePBS     Type = "PBS"
	TypeSLURM   Type = "SLURM"
	TypeLSF     Type = "LSF"
	TypeLocal   Type = "Local"
)

// Launcher is the capability set every scheduler variant implements:
// header rendering, script writing, submission, MPI command composition,
// and job status queries. Variants are selected at configuration time,
// never by runtime type inspection.
type Launcher interface {
	// Profile returns the mutable resource profile for this launcher.
	Profile() *Profile

	// Extension is the batch-script file extension ("pbs", "slurm", "lsf").
	Extension() string

	// WorkdirEnvVar is the scheduler-set environment variable holding the
	// submission working directory, referenced verbatim in the script's
	// cd line (e.g. "$PBS_O_WORKDIR").
	WorkdirEnvVar() string

	// StandardHeader renders the always-present scheduler directive lines,
	// hashbang first.
	StandardHeader(jobName string) []string

	// OptionalHeader renders directive lines that depend on optional
	// settings and the dependency argument (colon-joined job ids, or "").
	OptionalHeader(dependency string) []string

	// CreateMpiCommand wraps command with the MPI runtime, OpenMP
	// environment, rank placement, and output redirection into
	// "{outputRoot}.out".
	CreateMpiCommand(command, outputRoot string, opts MpiOptions) string

	// WriteJobFile writes the full batch script to path.
	WriteJobFile(path, jobName string, body []string, dependency string) error

	// Launch writes "{jobName}.{ext}" in the current directory and
	// submits it. Returns the scheduler-issued job id (or raw submit
	// output when no id could be extracted).
	Launch(jobName string, body []string, blocking bool, dependency string) (string, error)

	// Submit hands an existing script to the scheduler's submit CLI.
	Submit(scriptPath string, blocking bool) (string, error)

	// Job queries the scheduler for id and returns the parsed record.
	// Ids the scheduler no longer knows about come back as empty
	// StateUnknown records: completed jobs age out of scheduler history.
	Job(id string) (*Job, error)

	// Delete asks the scheduler to remove the job, returning the raw
	// command output.
	Delete(id string) (string, error)
}

// writeJobFile renders the canonical script layout shared by all
// variants: header lines, two blank lines, a cd into the submission
// working directory, an optional source line, one blank line, then the
// body verbatim.
func writeJobFile(l Launcher, path, jobName string, body []string, dependency string) error {
	file, err := os.Create(path)
	if err != nil {
		return NewScriptCreationError(jobName, path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, line := range l.StandardHeader(jobName) {
		fmt.Fprintln(w, line)
	}
	for _, line := range l.OptionalHeader(dependency) {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "cd %s\n", l.WorkdirEnvVar())
	if pf := l.Profile().ProfileFile(); pf != "" {
		fmt.Fprintf(w, "source %s\n", pf)
	}

	fmt.Fprintln(w)

	for _, line := range body {
		fmt.Fprintln(w, line)
	}

	if err := w.Flush(); err != nil {
		return NewScriptCreationError(jobName, path, err)
	}
	return nil
}

// launchJob is the shared write+submit sequence behind every variant's
// Launch method.
func launchJob(l Launcher, jobName string, body []string, blocking bool, dependency string) (string, error) {
	filename := jobName + "." + l.Extension()
	if err := l.WriteJobFile(filename, jobName, body, dependency); err != nil {
		return "", err
	}
	return l.Submit(filename, blocking)
}

// runAndEcho runs an external scheduler command, echoing the command
// line and its raw output so scheduler-side failures can be diagnosed
// directly. The trimmed combined output is returned even on error.
func runAndEcho(name string, args ...string) (string, error) {
	utils.PrintCommand(name + " " + strings.Join(args, " "))
	out, err := exec.Command(name, args...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if trimmed != "" {
		utils.PrintMessage("%s", trimmed)
	}
	return trimmed, err
}

// runQuery runs a status-query command. Queries happen on every polling
// cycle, so their raw output is echoed at debug level only.
func runQuery(name string, args ...string) (string, error) {
	utils.PrintDebug("query: %s %s", name, strings.Join(args, " "))
	out, err := exec.Command(name, args...).CombinedOutput()
	raw := string(out)
	utils.PrintDebug("query output:\n%s", strings.TrimRight(raw, "\n"))
	return raw, err
}
