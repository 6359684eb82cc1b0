package launcher

import (
	"fmt"

	"github.com/qbatch/qbatch/internal/utils"
)

// Shell flavors supported in generated scripts. The flavor decides the
// output-redirection syntax appended to composed MPI commands.
const (
	ShellBash = "bash"
	ShellTcsh = "tcsh"
)

// Profile holds the per-queue resource request shared by all launcher
// variants: how many nodes, how wide each node is, and how long the job
// may run. A Profile is mutable between submissions; the requested node
// count is clamped to the queue's node limit on every mutation.
type Profile struct {
	// Queue is the queue or partition name of the target scheduler.
	Queue string

	// CpusPerNode is the number of CPU cores per compute node.
	CpusPerNode int

	// GpusPerNode is the number of GPUs per compute node (0 = CPU-only).
	GpusPerNode int

	// TimeHours is the requested walltime in hours.
	TimeHours int

	// Mem is the requested memory per node including units (e.g. "245gb").
	// Empty means the scheduler default.
	Mem string

	// Model is the processor model tag for clusters that require one on
	// the resource selection line. Empty means no model clause.
	Model string

	// Mpiexec is the MPI runtime command name: mpiexec, mpirun,
	// mpiexec_mpt, etc.
	Mpiexec string

	// Shell selects the shell flavor for generated scripts (ShellBash or
	// ShellTcsh).
	Shell string

	// Hashbang overrides the generated hashbang line when non-empty.
	// The default is "#!/usr/bin/env {Shell}".
	Hashbang string

	// TeeOutput switches MPI output redirection to "2>&1 | tee file" so
	// output is visible in the scheduler log as well.
	TeeOutput bool

	nodeLimit    int
	nodes        int
	ranksPerNode int
	profileFile  string
}

// NewProfile creates a Profile for a queue, requesting one node by
// default. nodeLimit is the queue's node ceiling; requests above it are
// silently clamped.
func NewProfile(queue string, cpusPerNode, nodeLimit, timeHours int) *Profile {
	return &Profile{
		Queue:       queue,
		CpusPerNode: cpusPerNode,
		TimeHours:   timeHours,
		Mpiexec:     "mpiexec",
		Shell:       ShellBash,
		nodeLimit:   nodeLimit,
		nodes:       1,
	}
}

// RequestedNodes returns the number of compute nodes to request.
func (p *Profile) RequestedNodes() int {
	return p.nodes
}

// SetRequestedNodes sets the number of compute nodes to request,
// clamping to the queue node limit. Clamping is deliberate policy, not
// an error: queue limits are a property of the cluster, not the caller.
func (p *Profile) SetRequestedNodes(n int) {
	if n > p.nodeLimit {
		n = p.nodeLimit
	}
	p.nodes = n
}

// NodeLimit returns the queue's node ceiling.
func (p *Profile) NodeLimit() int {
	return p.nodeLimit
}

// RanksPerNode returns the number of MPI ranks per node to put on the
// resource request line. Defaults to CpusPerNode when not overridden.
func (p *Profile) RanksPerNode() int {
	if p.ranksPerNode > 0 {
		return p.ranksPerNode
	}
	return p.CpusPerNode
}

// SetRanksPerNode overrides the default ranks-per-node (CpusPerNode).
// Passing 0 restores the default.
func (p *Profile) SetRanksPerNode(n int) {
	p.ranksPerNode = n
}

// ProfileFile returns the environment file sourced at the top of
// generated scripts, or "" when none is configured.
func (p *Profile) ProfileFile() string {
	return p.profileFile
}

// SetProfileFile configures the environment file (e.g. "~/.bashrc")
// sourced inside the job. The file must exist; this fails fast at
// configuration time, before any script is written.
func (p *Profile) SetProfileFile(path string) error {
	if path == "" {
		p.profileFile = ""
		return nil
	}
	if !utils.FileExists(utils.ExpandUser(path)) {
		return fmt.Errorf("%w: %s", ErrProfileFileNotFound, path)
	}
	p.profileFile = path
	return nil
}

// hashbangLine returns the first line of generated scripts.
func (p *Profile) hashbangLine() string {
	if p.Hashbang != "" {
		return p.Hashbang
	}
	return "#!/usr/bin/env " + p.Shell
}

// redirectOutput returns the shell fragment that routes stdout and
// stderr of a command into file, honoring the shell flavor and the
// tee-output setting.
func (p *Profile) redirectOutput(file string) string {
	if p.TeeOutput {
		return "2>&1 | tee " + file
	}
	if p.Shell == ShellTcsh {
		return ">& " + file
	}
	return "&> " + file
}
