package launcher

import (
	"fmt"
	"strings"
)

// Preset factories for clusters we use regularly. Each returns a fully
// populated launcher; callers adjust fields afterwards if the defaults
// do not fit.

// K4 targets the K4 routing queue on LaRC's K cluster.
func K4(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K4-route", 40, 16, timeHours, profileFile)
}

// K3a targets the K3a routing queue on LaRC's K cluster.
func K3a(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K3a-route", 16, 25, timeHours, profileFile)
}

// K3b targets the K3b routing queue on LaRC's K cluster.
func K3b(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K3b-route", 28, 74, timeHours, profileFile)
}

// K3c targets the K3c routing queue on LaRC's K cluster.
func K3c(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K3c-route", 28, 74, timeHours, profileFile)
}

// K4V100 targets the V100 GPU nodes on LaRC's K cluster.
func K4V100(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K4-V100", 4, 4, timeHours, profileFile)
}

// K5A100x40 targets the 40GB A100 GPU nodes on LaRC's K cluster.
func K5A100x40(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K5-A100-40", 8, 2, timeHours, profileFile)
}

// K5A100x80 targets the 80GB A100 GPU nodes on LaRC's K cluster.
func K5A100x80(timeHours int, profileFile string) (*PBS, error) {
	return NewPBS("K5-A100-80", 8, 2, timeHours, profileFile)
}

// nasNodeModels maps NAS processor families to their node shapes and
// PBS model strings. The GPU entries come before the plain families
// they share a prefix with, since selection is by substring.
var nasNodeModels = []struct {
	prefix string
	ncpus  int
	ngpus  int
	mem    string
	model  string
}{
	{"mil_a100", 64, 4, "500G", "mil_a100"},
	{"sky_gpu", 36, 4, "200G", "sky_gpu"},
	{"cas_gpu", 48, 4, "200G", "cas_gpu"},
	{"rom_gpu", 128, 8, "700G", "rom_gpu"},
	{"cas", 40, 0, "", "cas_ait"},
	{"sky", 40, 0, "", "sky_ele"},
	{"bro", 28, 0, "", "bro"},
	{"has", 24, 0, "", "has"},
	{"ivy", 20, 0, "", "ivy"},
	{"san", 16, 0, "", "san"},
	{"mil", 128, 0, "", "mil_ait"},
	{"rom", 128, 0, "", "rom_ait"},
}

// NAS targets the NASA Advanced Supercomputing queues, which require a
// charge group and select nodes by processor model rather than by
// queue. A three letter prefix is enough to select a processor family.
func NAS(groupList, procType, queue string, timeHours int, profileFile string) (*PBS, error) {
	lowered := strings.ToLower(procType)
	for _, m := range nasNodeModels {
		if !strings.Contains(lowered, m.prefix) {
			continue
		}
		pbs, err := NewPBS(queue, m.ncpus, 1_000_000, timeHours, profileFile)
		if err != nil {
			return nil, err
		}
		pbs.GroupList = groupList
		pbs.profile.GpusPerNode = m.ngpus
		pbs.profile.Mem = m.mem
		pbs.profile.Model = m.model
		return pbs, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProcessorType, procType)
}

// CF1 targets the normal partition of the CF1 SLURM cluster.
func CF1(account string, timeHours int, profileFile string) (*Slurm, error) {
	s, err := NewSlurm("normal", 64, 30, timeHours, profileFile)
	if err != nil {
		return nil, err
	}
	s.Account = account
	return s, nil
}

// Named builds one of the self-contained presets by name. Presets that
// need extra arguments (NAS, CF1) have their own constructors.
func Named(name string, timeHours int, profileFile string) (Launcher, error) {
	switch strings.ToLower(name) {
	case "k4":
		return K4(timeHours, profileFile)
	case "k3a":
		return K3a(timeHours, profileFile)
	case "k3b":
		return K3b(timeHours, profileFile)
	case "k3c":
		return K3c(timeHours, profileFile)
	case "k4-v100", "k4v100":
		return K4V100(timeHours, profileFile)
	case "k5-a100-40", "k5a100-40":
		return K5A100x40(timeHours, profileFile)
	case "k5-a100-80", "k5a100-80":
		return K5A100x80(timeHours, profileFile)
	case "local":
		return NewLocal(profileFile)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}
