package launcher

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/qbatch/qbatch/internal/utils"
)

// MpiOptions are the optional knobs for CreateMpiCommand. Zero values
// mean "unset": no OpenMP environment is emitted and the rank placement
// flag is left to the profile default.
type MpiOptions struct {
	// OpenMPThreads is the number of OpenMP threads per MPI rank.
	// Values <= 1 disable the OpenMP fragments.
	OpenMPThreads int

	// RanksPerNode overrides the derived MPI ranks per node.
	RanksPerNode int
}

// mptProbe lazily detects whether an MPI runtime is the HPE/SGI MPT
// implementation, which needs -perhost and omplace instead of the
// generic flags. The probe result is cached for the launcher's lifetime.
type mptProbe struct {
	checked bool
	isMPT   bool
}

func (m *mptProbe) usingMPT(runtime string) bool {
	if !m.checked {
		m.checked = true
		m.isMPT = probeForMPT(runtime)
	}
	return m.isMPT
}

// probeForMPT runs "{runtime} --version" and looks for the MPT marker.
// A missing runtime is a warning, never fatal: commands composed on a
// login node may reference a runtime only present on compute nodes.
func probeForMPT(runtime string) bool {
	path, err := exec.LookPath(runtime)
	if err != nil {
		utils.PrintWarning("MPI runtime %s not found in PATH; assuming non-MPT flavor", runtime)
		return false
	}
	out, _ := exec.Command(path, "--version").CombinedOutput()
	return strings.Contains(string(out), "MPT")
}

// composeMpiCommand builds the full parallel launch line. Fragment
// order is fixed: OpenMP environment, runtime binary, rank placement
// flag, omplace affinity fragment, the command itself, output
// redirection.
func composeMpiCommand(p *Profile, mpt bool, command, outputRoot string, opts MpiOptions) string {
	threads := opts.OpenMPThreads
	useOpenMP := threads > 1

	var fragments []string
	if useOpenMP {
		fragments = append(fragments, fmt.Sprintf("OMP_NUM_THREADS=%d", threads))
		if !mpt {
			fragments = append(fragments, "OMP_PLACES=cores", "OMP_PROC_BIND=close")
		}
	}

	fragments = append(fragments, p.Mpiexec)

	// Explicit override wins; otherwise derive from the OpenMP split;
	// otherwise use the profile override if one was set. With nothing
	// set, no rank flag is emitted and the scheduler default applies.
	ranks := 0
	switch {
	case opts.RanksPerNode > 0:
		ranks = opts.RanksPerNode
	case useOpenMP:
		ranks = p.CpusPerNode / threads
	case p.ranksPerNode > 0:
		ranks = p.ranksPerNode
	}
	if ranks > 0 {
		flag := "--npernode"
		if mpt {
			flag = "-perhost"
		}
		fragments = append(fragments, fmt.Sprintf("%s %d", flag, ranks))
	}

	if mpt && useOpenMP {
		fragments = append(fragments, omplaceFragment(p.CpusPerNode, threads))
	}

	fragments = append(fragments, command, p.redirectOutput(outputRoot+".out"))
	return joinNonEmpty(fragments)
}

// omplaceFragment pins threads to cores 0..cpusPerNode-1 for the MPT
// runtime.
func omplaceFragment(cpusPerNode, threads int) string {
	cores := make([]string, cpusPerNode)
	for i := range cores {
		cores[i] = strconv.Itoa(i)
	}
	return fmt.Sprintf(`omplace -c "%s" -nt %d -vv`, strings.Join(cores, ","), threads)
}

func joinNonEmpty(fragments []string) string {
	kept := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
