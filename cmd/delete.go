package cmd

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <job-id ...>",
	Aliases: []string{"del", "cancel"},
	Short:   "Remove jobs from the scheduler queue",
	Example: `  qbatch delete 4259576
  qbatch delete 4259576 4259577 4259578`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	l, err := buildLauncher()
	if err != nil {
		return err
	}

	if len(args) > 1 && !deleteForce && utils.IsInteractiveShell() {
		fmt.Printf("Delete %s jobs? [y/N]: ", utils.StyleNumber(len(args)))
		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			utils.PrintMessage("Cancelled")
			return nil
		}
	}

	var result *multierror.Error
	for _, id := range args {
		if _, err := l.Delete(id); err != nil {
			result = multierror.Append(result, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		utils.PrintSuccess("Deleted job %s", utils.StyleName(id))
	}
	return result.ErrorOrNil()
}
