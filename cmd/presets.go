package cmd

import (
	"fmt"
	"sort"

	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/utils"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available queue presets",
	Long: `List the built-in cluster presets and any user-defined presets from
presets.yaml. The active preset comes from --preset, the QBATCH_PRESET
environment variable, or the config file, in that order.`,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

// builtinPresets mirrors the preset constructors in the launcher
// package, with a short description for each.
var builtinPresets = []struct {
	name string
	desc string
}{
	{"k4", "LaRC K cluster, K4-route queue (40 cpus/node)"},
	{"k3a", "LaRC K cluster, K3a-route queue (16 cpus/node)"},
	{"k3b", "LaRC K cluster, K3b-route queue (28 cpus/node)"},
	{"k3c", "LaRC K cluster, K3c-route queue (28 cpus/node)"},
	{"k4-v100", "LaRC K cluster, V100 GPU nodes"},
	{"k5-a100-40", "LaRC K cluster, 40GB A100 GPU nodes"},
	{"k5-a100-80", "LaRC K cluster, 80GB A100 GPU nodes"},
	{"nas", "NASA Advanced Supercomputing (requires group_list)"},
	{"cf1", "CF1 SLURM cluster, normal partition"},
	{"local", "Run job bodies directly on this machine"},
}

func runPresets(cmd *cobra.Command, args []string) error {
	fmt.Println(utils.StyleTitle("Built-in presets:"))
	for _, p := range builtinPresets {
		marker := "  "
		if p.name == presetName {
			marker = utils.StyleSuccess("* ")
		}
		fmt.Printf("%s%s%*s %s\n", marker, utils.StyleName(p.name), 12-len(p.name), "", p.desc)
	}

	userPresets, err := config.LoadUserPresets()
	if err != nil {
		return err
	}
	if len(userPresets) == 0 {
		return nil
	}

	names := make([]string, 0, len(userPresets))
	for name := range userPresets {
		names = append(names, name)
	}
	sort.Strings(names)

	path, _ := config.GetUserPresetsPath()
	fmt.Println()
	fmt.Println(utils.StyleTitle("User presets") + " (" + utils.StylePath(path) + "):")
	for _, name := range names {
		p := userPresets[name]
		marker := "  "
		if name == presetName {
			marker = utils.StyleSuccess("* ")
		}
		desc := fmt.Sprintf("%s, queue %s (%d cpus/node)", p.Type, p.Queue, p.CpusPerNode)
		fmt.Printf("%s%s%*s %s\n", marker, utils.StyleName(name), max(12-len(name), 0), "", desc)
	}
	return nil
}
