// Package batch runs collections of jobs through a launcher, either
// all at once or throttled so only a bounded number occupy the queue
// at a time.
package batch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
)

// ErrBatchStalled indicates no job changed state within the configured
// stall timeout.
var ErrBatchStalled = errors.New("batch stalled: no job state change within timeout")

// Job is one unit of work in a batch: a name and the script body to
// run under it. ID is filled in once the job has been submitted.
type Job struct {
	Name string
	Body []string
	ID   string
}

// NewJob creates an unsubmitted batch job.
func NewJob(name string, body []string) *Job {
	return &Job{Name: name, Body: body}
}

// Batch submits a list of jobs through a single launcher. All jobs
// share the launcher's resource profile.
type Batch struct {
	Jobs []*Job

	// SeparateDirs runs each job inside a directory named after it, so
	// output files do not collide. The directories must exist; see
	// CreateDirectories.
	SeparateDirs bool

	// PollInterval is how often job states are re-queried while waiting.
	PollInterval time.Duration

	// StallTimeout aborts waiting when no job changes state for this
	// long. Zero disables the check.
	StallTimeout time.Duration

	launcher launcher.Launcher
	runID    string
}

// New creates a batch over the given jobs. Jobs run in separate
// per-job directories by default.
func New(l launcher.Launcher, jobs []*Job) *Batch {
	return &Batch{
		Jobs:         jobs,
		SeparateDirs: true,
		PollInterval: 30 * time.Second,
		launcher:     l,
		runID:        uuid.NewString(),
	}
}

// RunID identifies this batch instance in logs.
func (b *Batch) RunID() string {
	return b.runID
}

// CreateDirectories creates the per-job directories jobs run in when
// SeparateDirs is set. Existing directories are left alone.
func (b *Batch) CreateDirectories() error {
	for _, job := range b.Jobs {
		if err := os.MkdirAll(job.Name, utils.PermDir); err != nil {
			return fmt.Errorf("create directory for job %s: %w", job.Name, err)
		}
	}
	return nil
}

// LaunchAll submits every job without throttling. With wait set it then
// blocks until all jobs have left the queue.
func (b *Batch) LaunchAll(wait bool) error {
	if err := b.launchJobs(b.Jobs); err != nil {
		return err
	}
	if wait {
		return b.WaitForAll()
	}
	return nil
}

// LaunchWithLimit is the courteous version of LaunchAll(true): at most
// maxActive jobs are queued, running, or held at any time. It returns
// once every job has been submitted and finished.
func (b *Batch) LaunchWithLimit(maxActive int) error {
	utils.PrintDebug("batch %s: throttled launch of %d jobs, %d at a time",
		b.runID, len(b.Jobs), maxActive)

	nextToSubmit := 0
	lastChange := time.Now()
	var lastCounts stateCounts
	for {
		counts, err := b.countStates(b.Jobs[:nextToSubmit])
		if err != nil {
			return err
		}
		if active := counts.active(); active < maxActive {
			end := nextToSubmit + maxActive - active
			if end > len(b.Jobs) {
				end = len(b.Jobs)
			}
			if err := b.launchJobs(b.Jobs[nextToSubmit:end]); err != nil {
				return err
			}
			nextToSubmit = end
		}

		counts, err = b.countStates(b.Jobs[:nextToSubmit])
		if err != nil {
			return err
		}
		counts.yetToSubmit = len(b.Jobs) - nextToSubmit
		b.printSummary(counts)

		if nextToSubmit == len(b.Jobs) && counts.active() == 0 {
			return nil
		}

		if counts != lastCounts {
			lastCounts = counts
			lastChange = time.Now()
		} else if b.StallTimeout > 0 && time.Since(lastChange) > b.StallTimeout {
			return fmt.Errorf("%w: %s", ErrBatchStalled, b.StallTimeout)
		}
		time.Sleep(b.PollInterval)
	}
}

// WaitForAll blocks until no submitted job is queued, running, or held,
// printing a state summary on every polling cycle.
func (b *Batch) WaitForAll() error {
	lastChange := time.Now()
	var lastCounts stateCounts
	for {
		counts, err := b.countStates(b.Jobs)
		if err != nil {
			return err
		}
		b.printSummary(counts)
		if counts.active() == 0 {
			return nil
		}

		if counts != lastCounts {
			lastCounts = counts
			lastChange = time.Now()
		} else if b.StallTimeout > 0 && time.Since(lastChange) > b.StallTimeout {
			return fmt.Errorf("%w: %s", ErrBatchStalled, b.StallTimeout)
		}
		time.Sleep(b.PollInterval)
	}
}

// DeleteAll asks the scheduler to remove every submitted job,
// collecting per-job failures rather than stopping at the first one.
func (b *Batch) DeleteAll() error {
	var result *multierror.Error
	for _, job := range b.Jobs {
		if job.ID == "" {
			continue
		}
		if _, err := b.launcher.Delete(job.ID); err != nil {
			result = multierror.Append(result, fmt.Errorf("delete job %s: %w", job.Name, err))
		}
	}
	return result.ErrorOrNil()
}

func (b *Batch) launchJobs(jobs []*Job) error {
	for _, job := range jobs {
		dir := "."
		if b.SeparateDirs {
			dir = job.Name
		}
		err := utils.WithDir(dir, func() error {
			id, err := b.launcher.Launch(job.Name, job.Body, false, "")
			if err != nil {
				return err
			}
			job.ID = id
			return nil
		})
		if err != nil {
			return fmt.Errorf("launch job %s: %w", job.Name, err)
		}
	}
	return nil
}

// stateCounts tallies submitted jobs by lifecycle state. yetToSubmit
// covers jobs the throttle has not reached.
type stateCounts struct {
	queued      int
	running     int
	held        int
	finished    int
	other       int
	yetToSubmit int
}

func (c stateCounts) active() int {
	return c.queued + c.running + c.held
}

func (b *Batch) countStates(jobs []*Job) (stateCounts, error) {
	var counts stateCounts
	for _, job := range jobs {
		if job.ID == "" {
			continue
		}
		record, err := b.launcher.Job(job.ID)
		if err != nil {
			return counts, fmt.Errorf("query job %s: %w", job.Name, err)
		}
		switch record.State {
		case launcher.StateQueued:
			counts.queued++
		case launcher.StateRunning:
			counts.running++
		case launcher.StateHeld:
			counts.held++
		case launcher.StateFinished:
			counts.finished++
		default:
			counts.other++
		}
	}
	return counts, nil
}

func (b *Batch) printSummary(counts stateCounts) {
	utils.PrintMessage("Job states at %s:", time.Now().Format(time.RFC3339))
	utils.PrintMessage("  Queued:        %d", counts.queued)
	utils.PrintMessage("  Running:       %d", counts.running)
	utils.PrintMessage("  Finished:      %d", counts.finished)
	if counts.yetToSubmit > 0 {
		utils.PrintMessage("  Yet to submit: %d", counts.yetToSubmit)
	}
	utils.PrintMessage("  Other:         %d", counts.held+counts.other)
}
