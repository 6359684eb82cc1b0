package cmd

import (
	"fmt"
	"strings"

	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
)

var (
	submitBlocking   bool
	submitDependency string
	submitScript     string
	submitWriteOnly  bool
	submitMpi        bool
	submitThreads    int
	submitRanks      int
	submitOutputRoot string
)

var submitCmd = &cobra.Command{
	Use:   "submit <job-name> [flags] -- <command ...>",
	Short: "Write a batch script for a command and submit it",
	Long: `Write a batch script for the given command and submit it through the
configured scheduler.

The script gets the preset's scheduler header, changes into the submission
directory, sources the configured profile file, and then runs the command.
With --mpi the command is wrapped with the preset's MPI runtime, rank
placement, and output redirection first.`,
	Example: `  qbatch submit lid_cavity -- ./solver cavity.cfg
  qbatch submit lid_cavity --mpi --openmp-threads 2 -- ./solver cavity.cfg
  qbatch submit postproc --dependency 4213.pbssrv -- ./tally results/
  qbatch submit presub --script existing_job.pbs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().BoolVarP(&submitBlocking, "blocking", "b", false, "Wait for the job to finish before returning")
	submitCmd.Flags().StringVarP(&submitDependency, "dependency", "d", "", "Job id(s) this job depends on")
	submitCmd.Flags().StringVar(&submitScript, "script", "", "Submit an existing script instead of generating one")
	submitCmd.Flags().BoolVar(&submitWriteOnly, "write-only", false, "Write the script but do not submit it")
	submitCmd.Flags().BoolVar(&submitMpi, "mpi", false, "Wrap the command with the MPI runtime")
	submitCmd.Flags().IntVar(&submitThreads, "openmp-threads", 0, "OpenMP threads per MPI rank (with --mpi)")
	submitCmd.Flags().IntVar(&submitRanks, "ranks-per-node", 0, "MPI ranks per node (with --mpi)")
	submitCmd.Flags().StringVar(&submitOutputRoot, "output-root", "", "Root name for MPI output redirection (default: job name)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	l, err := buildLauncher()
	if err != nil {
		return err
	}

	if submitScript != "" {
		id, err := l.Submit(utils.ExpandUser(submitScript), submitBlocking)
		if err != nil {
			return err
		}
		utils.PrintSuccess("Submitted %s as job %s", submitScript, utils.StyleName(id))
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("no command given; pass it after \"--\" or use --script")
	}
	command := strings.Join(args[1:], " ")

	if submitMpi {
		outputRoot := submitOutputRoot
		if outputRoot == "" {
			outputRoot = jobName
		}
		opts := launcher.MpiOptions{OpenMPThreads: submitThreads, RanksPerNode: submitRanks}
		command = l.CreateMpiCommand(command, outputRoot, opts)
	}
	body := []string{command}

	if submitWriteOnly {
		path := jobName + "." + l.Extension()
		if err := l.WriteJobFile(path, jobName, body, submitDependency); err != nil {
			return err
		}
		utils.PrintSuccess("Wrote %s", utils.StylePath(path))
		return nil
	}

	id, err := l.Launch(jobName, body, submitBlocking, submitDependency)
	if err != nil {
		return err
	}
	utils.PrintSuccess("Submitted %s as job %s", jobName, utils.StyleName(id))
	return nil
}
