package launcher

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSchedulerNotFound indicates no scheduler binary was found in PATH
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrProfileFileNotFound indicates the environment file to source does not exist
	ErrProfileFileNotFound = errors.New("profile file not found")

	// ErrJobIDParseFailed indicates parsing a job ID from scheduler output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")

	// ErrUnknownPreset indicates a preset name is not known
	ErrUnknownPreset = errors.New("unknown queue preset")

	// ErrUnknownProcessorType indicates an unrecognized NAS processor selection
	ErrUnknownProcessorType = errors.New("unknown NAS processor selection")

	// ErrNoActiveLauncher indicates no launcher has been configured yet
	ErrNoActiveLauncher = errors.New("no active launcher configured")
)

// SubmissionError represents a failed submission to the scheduler CLI.
// Output carries the raw captured stdout/stderr so operators can see
// exactly what the scheduler said.
type SubmissionError struct {
	Scheduler string // Scheduler name ("PBS", "SLURM", "LSF")
	Script    string // Script path handed to the submit command
	Output    string // Raw scheduler output
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission failed for %s: %v\nOutput: %s",
			e.Scheduler, e.Script, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission failed for %s: %v", e.Scheduler, e.Script, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler, script, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Script:    script,
		Output:    output,
		Err:       err,
	}
}

// ScriptCreationError represents a failure to write a batch script.
type ScriptCreationError struct {
	JobName string
	Path    string
	Err     error
}

func (e *ScriptCreationError) Error() string {
	return fmt.Sprintf("failed to create script for job %s at %s: %v",
		e.JobName, e.Path, e.Err)
}

func (e *ScriptCreationError) Unwrap() error {
	return e.Err
}

// NewScriptCreationError creates a new ScriptCreationError
func NewScriptCreationError(jobName, path string, err error) *ScriptCreationError {
	return &ScriptCreationError{JobName: jobName, Path: path, Err: err}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
