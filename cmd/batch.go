package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/qbatch/qbatch/internal/batch"
	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
)

var (
	batchLimit         int
	batchWait          bool
	batchPollSeconds   int
	batchStallMinutes  int
	batchSharedDir     bool
	batchInit          bool
	batchDeleteOnStall bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Submit a batch of jobs described in a YAML manifest",
	Long: `Submit every job listed in a YAML manifest through the configured
scheduler. Each job runs in its own directory named after the job, so
output files do not collide.

With --limit only that many jobs are allowed to be queued, running, or
held at a time; further jobs are submitted as earlier ones finish.`,
	Example: `  qbatch batch sweep.yaml
  qbatch batch sweep.yaml --limit 20
  qbatch batch sweep.yaml --wait --poll-seconds 60`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchLimit, "limit", "l", 0, "Maximum jobs active at a time (0 = no limit)")
	batchCmd.Flags().BoolVarP(&batchWait, "wait", "w", false, "Block until all jobs finish (implied by --limit)")
	batchCmd.Flags().IntVar(&batchPollSeconds, "poll-seconds", 0, "Seconds between job state checks")
	batchCmd.Flags().IntVar(&batchStallMinutes, "stall-minutes", 0, "Abort waiting if no job changes state for this long (0 = never)")
	batchCmd.Flags().BoolVar(&batchSharedDir, "shared-dir", false, "Run all jobs in the current directory instead of per-job directories")
	batchCmd.Flags().BoolVar(&batchInit, "init", false, "Write a starter manifest to the given path and exit")
	batchCmd.Flags().BoolVar(&batchDeleteOnStall, "delete-on-stall", false, "Delete the remaining jobs if the batch stalls")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchInit {
		return initManifest(args[0])
	}

	jobs, err := batch.LoadManifest(args[0])
	if err != nil {
		return err
	}
	utils.PrintMessage("Loaded %s jobs from %s", utils.StyleNumber(len(jobs)), utils.StylePath(args[0]))

	l, err := buildLauncher()
	if err != nil {
		return err
	}

	b := batch.New(l, jobs)
	b.SeparateDirs = config.Global.SeparateDirs && !batchSharedDir
	poll := batchPollSeconds
	if poll <= 0 {
		poll = config.Global.PollSeconds
	}
	b.PollInterval = time.Duration(poll) * time.Second
	b.StallTimeout = time.Duration(batchStallMinutes) * time.Minute
	utils.PrintDebug("batch run id: %s", b.RunID())

	if b.SeparateDirs {
		if err := b.CreateDirectories(); err != nil {
			return err
		}
	}

	if batchLimit > 0 {
		err = b.LaunchWithLimit(batchLimit)
	} else {
		err = b.LaunchAll(batchWait)
	}
	if errors.Is(err, batch.ErrBatchStalled) && batchDeleteOnStall {
		utils.PrintWarning("batch stalled; deleting the remaining jobs")
		if delErr := b.DeleteAll(); delErr != nil {
			utils.PrintError("some jobs could not be deleted: %v", delErr)
		}
	}
	return err
}

// initManifest writes an example manifest the user can edit, refusing
// to clobber an existing file.
func initManifest(path string) error {
	if utils.FileExists(path) {
		return fmt.Errorf("%s already exists", path)
	}
	jobs := []*batch.Job{
		batch.NewJob("case_001", []string{"./solver case_001.cfg"}),
		batch.NewJob("case_002", []string{"./solver case_002.cfg"}),
	}
	if err := batch.SaveManifest(path, jobs); err != nil {
		return err
	}
	utils.PrintSuccess("Wrote starter manifest to %s", utils.StylePath(path))
	return nil
}
