package cmd

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display scheduler information",
	Long: `Display information about the job scheduler detected on this system.

Shows scheduler type (PBS, SLURM, LSF), submit binary path, version, and
whether qbatch is running inside a scheduled job.`,
	Run: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// minPbsVersion is the oldest PBS Pro release whose qstat keeps
// finished jobs queryable with -x; older servers cannot report final
// states back to the batch monitor.
const minPbsVersion = "18.1.0"

var versionPattern = regexp.MustCompile(`(\d+\.\d+(\.\d+)?)`)

var submitBinaries = map[launcher.Type]string{
	launcher.TypePBS:   "qsub",
	launcher.TypeSLURM: "sbatch",
	launcher.TypeLSF:   "bsub",
}

func runInfo(cmd *cobra.Command, args []string) {
	schedType := launcher.DetectType()
	if schedType == launcher.TypeUnknown {
		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("No job scheduler detected on this system.")
		utils.PrintMessage("Supported schedulers: PBS, SLURM, LSF")
		return
	}

	binary, _ := exec.LookPath(submitBinaries[schedType])
	version := schedulerVersion(binary)

	// Structured output, no [QB] prefix
	fmt.Println("Scheduler Information:")
	fmt.Printf("  Type:      %s\n", utils.StyleInfo(string(schedType)))
	fmt.Printf("  Binary:    %s\n", utils.StylePath(binary))
	if version != "" {
		fmt.Printf("  Version:   %s\n", utils.StyleNumber(version))
	}
	if launcher.IsInsideJob() {
		fmt.Printf("  In Job:    %s\n", utils.StyleWarning("yes (nested submission discouraged)"))
	} else {
		fmt.Printf("  In Job:    no\n")
	}

	if schedType == launcher.TypePBS && version != "" &&
		semver.Compare("v"+version, "v"+minPbsVersion) < 0 {
		utils.PrintWarning("PBS %s predates %s; finished jobs will not be queryable with qstat -x",
			version, minPbsVersion)
	}
}

// schedulerVersion asks the submit binary for its version and pulls the
// first dotted number out of the reply.
func schedulerVersion(binary string) string {
	if binary == "" {
		return ""
	}
	out, err := exec.Command(binary, "--version").CombinedOutput()
	if err != nil {
		return ""
	}
	m := versionPattern.FindString(strings.TrimSpace(string(out)))
	return m
}
