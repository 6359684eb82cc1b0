package cmd

import (
	"fmt"
	"strings"

	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/spf13/cobra"
)

var (
	mpiThreads    int
	mpiRanks      int
	mpiOutputRoot string
)

var mpiCmd = &cobra.Command{
	Use:   "mpi [flags] -- <command ...>",
	Short: "Print the MPI launch line for a command",
	Long: `Compose and print the full parallel launch line for a command without
submitting anything: MPI runtime, rank placement, OpenMP environment, and
output redirection, exactly as it would appear in a generated script.`,
	Example: `  qbatch mpi -- ./solver cavity.cfg
  qbatch mpi --openmp-threads 4 --output-root cavity -- ./solver cavity.cfg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMpi,
}

func init() {
	rootCmd.AddCommand(mpiCmd)
	mpiCmd.Flags().IntVar(&mpiThreads, "openmp-threads", 0, "OpenMP threads per MPI rank")
	mpiCmd.Flags().IntVar(&mpiRanks, "ranks-per-node", 0, "MPI ranks per node")
	mpiCmd.Flags().StringVar(&mpiOutputRoot, "output-root", "output", "Root name for output redirection")
}

func runMpi(cmd *cobra.Command, args []string) error {
	l, err := buildLauncher()
	if err != nil {
		return err
	}

	opts := launcher.MpiOptions{OpenMPThreads: mpiThreads, RanksPerNode: mpiRanks}
	command := l.CreateMpiCommand(strings.Join(args, " "), mpiOutputRoot, opts)
	fmt.Println(command)
	return nil
}
