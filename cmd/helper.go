package cmd

import (
	"fmt"
	"strings"

	"github.com/qbatch/qbatch/internal/config"
	"github.com/qbatch/qbatch/internal/launcher"
	"github.com/qbatch/qbatch/internal/utils"
)

// buildLauncher resolves the --preset flag into a configured launcher:
// user-defined presets from presets.yaml first, then the built-in
// cluster presets. The result is registered as the active launcher.
func buildLauncher() (launcher.Launcher, error) {
	profile := profileFile
	if strings.EqualFold(profile, "none") {
		profile = ""
	}

	l, err := launcherForPreset(presetName, profile)
	if err != nil {
		return nil, err
	}

	prof := l.Profile()
	prof.SetRequestedNodes(nodes)
	if config.Global.Mpiexec != "" {
		prof.Mpiexec = config.Global.Mpiexec
	}
	if pbs, ok := l.(*launcher.PBS); ok && config.Global.GroupList != "" {
		pbs.GroupList = config.Global.GroupList
	}
	if slurm, ok := l.(*launcher.Slurm); ok && config.Global.Account != "" {
		slurm.Account = config.Global.Account
	}

	launcher.SetActive(l)
	utils.PrintDebug("launcher ready: preset=%s queue=%s nodes=%d",
		presetName, prof.Queue, prof.RequestedNodes())
	return l, nil
}

func launcherForPreset(name, profile string) (launcher.Launcher, error) {
	userPresets, err := config.LoadUserPresets()
	if err != nil {
		utils.PrintWarning("ignoring unreadable presets file: %v", err)
	}
	if p, ok := userPresets[name]; ok {
		return launcherFromUserPreset(name, p, profile)
	}

	if strings.EqualFold(name, "nas") {
		if config.Global.GroupList == "" {
			return nil, fmt.Errorf("the nas preset requires group_list in the config")
		}
		return launcher.NAS(config.Global.GroupList, "bro", "long", timeHours, profile)
	}
	if strings.EqualFold(name, "cf1") {
		return launcher.CF1(config.Global.Account, timeHours, profile)
	}
	return launcher.Named(name, timeHours, profile)
}

func launcherFromUserPreset(name string, p config.Preset, profile string) (launcher.Launcher, error) {
	if p.NodeLimit <= 0 {
		p.NodeLimit = 1_000_000
	}
	switch strings.ToLower(p.Type) {
	case "pbs", "":
		pbs, err := launcher.NewPBS(p.Queue, p.CpusPerNode, p.NodeLimit, timeHours, profile)
		if err != nil {
			return nil, err
		}
		prof := pbs.Profile()
		prof.GpusPerNode = p.GpusPerNode
		prof.Mem = p.Mem
		prof.Model = p.Model
		return pbs, nil
	case "slurm":
		slurm, err := launcher.NewSlurm(p.Queue, p.CpusPerNode, p.NodeLimit, timeHours, profile)
		if err != nil {
			return nil, err
		}
		prof := slurm.Profile()
		prof.GpusPerNode = p.GpusPerNode
		prof.Mem = p.Mem
		prof.Model = p.Model
		return slurm, nil
	case "lsf":
		return launcher.NewLSF(p.Project, p.GpusPerNode, p.CpusPerNode, p.NodeLimit, timeHours, profile)
	default:
		return nil, fmt.Errorf("preset %q has unknown scheduler type %q", name, p.Type)
	}
}
