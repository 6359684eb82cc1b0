package cmd

import (
	"fmt"
	"time"

	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
)

var statusTailFile string

var statusCmd = &cobra.Command{
	Use:   "status <job-id ...>",
	Short: "Show the scheduler's status for one or more jobs",
	Example: `  qbatch status 4259576
  qbatch status 4259576 4259577
  qbatch status --tail solver.out 4259576`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusTailFile, "tail", "", "Follow this output file until the job finishes")
}

func runStatus(cmd *cobra.Command, args []string) error {
	l, err := buildLauncher()
	if err != nil {
		return err
	}

	if statusTailFile != "" {
		if len(args) != 1 {
			return fmt.Errorf("--tail follows exactly one job")
		}
		job, err := l.Job(args[0])
		if err != nil {
			return err
		}
		interval := time.Duration(config.Global.PollSeconds) * time.Second
		return job.TailFileUntilFinished(statusTailFile, interval)
	}

	for _, id := range args {
		job, err := l.Job(id)
		if err != nil {
			return err
		}
		printJob(job)
	}
	return nil
}

func printJob(job *launcher.Job) {
	// Structured output, no [QB] prefix
	fmt.Printf("Job %s:\n", utils.StyleName(job.ID))
	if job.Name != "" {
		fmt.Printf("  Name:     %s\n", job.Name)
	}
	fmt.Printf("  State:    %s\n", styleState(job.State))
	if job.Queue != "" {
		fmt.Printf("  Queue:    %s\n", job.Queue)
	}
	if job.Workdir != "" {
		fmt.Printf("  Workdir:  %s\n", utils.StylePath(job.Workdir))
	}
	if job.Nodes > 0 {
		fmt.Printf("  Nodes:    %s x %s cpus\n",
			utils.StyleNumber(job.Nodes), utils.StyleNumber(job.CpusPerNode))
	}
	if job.Model != "" {
		fmt.Printf("  Model:    %s\n", job.Model)
	}
	if job.WalltimeMax > 0 {
		fmt.Printf("  Walltime: %s / %s\n",
			(time.Duration(job.WalltimeUsed) * time.Second).String(),
			(time.Duration(job.WalltimeMax) * time.Second).String())
	}
	if job.State == launcher.StateFinished {
		fmt.Printf("  Exit:     %s\n", utils.StyleNumber(job.ExitStatus))
	}
}

func styleState(state launcher.JobState) string {
	switch state {
	case launcher.StateRunning:
		return utils.StyleSuccess(string(state))
	case launcher.StateQueued, launcher.StateHeld:
		return utils.StyleWarning(string(state))
	case launcher.StateFinished:
		return utils.StyleInfo(string(state))
	default:
		return utils.StyleError(string(state))
	}
}
