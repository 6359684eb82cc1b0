package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	debugMode bool
	quietMode bool

	// Launcher selection flags shared by the job-facing subcommands.
	presetName  string
	timeHours   int
	profileFile string
	nodes       int
)

var rootCmd = &cobra.Command{
	Use:           "qbatch",
	Short:         "qbatch: write, submit, and monitor batch jobs on PBS, SLURM, and LSF clusters.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("qbatch Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Default preset: %s", config.Global.Preset)
		}
		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}
		if !cmd.Flags().Changed("preset") {
			presetName = config.Global.Preset
		}
		if !cmd.Flags().Changed("time") {
			timeHours = config.Global.TimeHours
		}
		if !cmd.Flags().Changed("profile") {
			profileFile = config.Global.ProfileFile
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. For submission
		// errors the scheduler output was already echoed; print only the
		// error string and exit non-zero.
		if launcher.IsSubmissionError(err) {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// normalizeFlagName lets flags be spelled with underscores the way the
// config file keys are, e.g. --poll_seconds for --poll-seconds.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "", "Queue preset to use (built-in or from presets.yaml)")
	rootCmd.PersistentFlags().IntVarP(&timeHours, "time", "t", 0, "Requested walltime in hours")
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile", "", "Environment file to source inside jobs (\"none\" to disable)")
	rootCmd.PersistentFlags().IntVarP(&nodes, "nodes", "n", 1, "Number of compute nodes to request")
}
