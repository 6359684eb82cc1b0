package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showConfigPath bool

// configKeys lists the known configuration keys for shell completion
// and validation on set.
var configKeys = []string{
	"preset",
	"time_hours",
	"profile_file",
	"group_list",
	"account",
	"mpiexec",
	"batch.poll_seconds",
	"batch.max_active",
	"batch.separate_dirs",
}

func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage qbatch configuration",
	Long: `Manage qbatch configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (QBATCH_*)
  3. User config file (~/.config/qbatch/config.yaml)
  4. System config file (/etc/qbatch/config.yaml)
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showConfigPath {
			path, err := config.GetUserConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		}

		fmt.Println(utils.StyleTitle("Launcher:"))
		fmt.Printf("  preset:        %s\n", viper.GetString("preset"))
		fmt.Printf("  time_hours:    %d\n", viper.GetInt("time_hours"))
		fmt.Printf("  profile_file:  %s\n", viper.GetString("profile_file"))
		fmt.Printf("  group_list:    %s\n", orNone(viper.GetString("group_list")))
		fmt.Printf("  account:       %s\n", orNone(viper.GetString("account")))
		fmt.Printf("  mpiexec:       %s\n", orNone(viper.GetString("mpiexec")))
		fmt.Println()

		fmt.Println(utils.StyleTitle("Batch:"))
		fmt.Printf("  poll_seconds:  %d\n", viper.GetInt("batch.poll_seconds"))
		fmt.Printf("  max_active:    %d\n", viper.GetInt("batch.max_active"))
		fmt.Printf("  separate_dirs: %v\n", viper.GetBool("batch.separate_dirs"))
		fmt.Println()

		fmt.Println(utils.StyleTitle("Config file:"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("  %s\n", utils.StylePath(used))
		} else {
			fmt.Printf("  %s (using defaults)\n", utils.StyleWarning("none found"))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := viper.Get(args[0])
		if value == nil {
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Example: `  qbatch config set preset k3a
  qbatch config set time_hours 24
  qbatch config set batch.max_active 40`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		known := false
		for _, k := range configKeys {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			utils.PrintWarning("'%s' is not a standard config key", key)
		}

		switch key {
		case "time_hours", "batch.poll_seconds", "batch.max_active":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("%s must be a positive integer, got %q", key, value)
			}
			viper.Set(key, n)
		case "batch.separate_dirs":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s must be true or false, got %q", key, value)
			}
			viper.Set(key, b)
		default:
			viper.Set(key, value)
		}

		if err := config.SaveConfig(); err != nil {
			return err
		}
		path, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(value))
		utils.PrintHint("Config saved to: %s", path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetUserConfigPath()
		if err != nil {
			return err
		}
		if !utils.FileExists(path) {
			utils.PrintMessage("Config file doesn't exist, creating it first...")
			if err := config.SaveConfig(); err != nil {
				return err
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		editorCmd := exec.Command(editor, path)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		return editorCmd.Run()
	},
}

func orNone(s string) string {
	if s == "" {
		return utils.StyleInfo("none")
	}
	return s
}

func init() {
	configShowCmd.Flags().BoolVar(&showConfigPath, "path", false, "Show only the config file path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)

	rootCmd.AddCommand(configCmd)
}
