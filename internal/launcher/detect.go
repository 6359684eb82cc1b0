package launcher

import (
	"os"
	"os/exec"
)

// DetectType returns the type of scheduler available on the system
// without initializing a launcher.
func DetectType() Type {
	// Check for PBS (qsub)
	if _, err := exec.LookPath("qsub"); err == nil {
		return TypePBS
	}

	// Check for SLURM (sbatch)
	if _, err := exec.LookPath("sbatch"); err == nil {
		return TypeSLURM
	}

	// Check for LSF (bsub)
	if _, err := exec.LookPath("bsub"); err == nil {
		return TypeLSF
	}

	return TypeUnknown
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// This is useful to avoid nested job submission.
func IsInsideJob() bool {
	// Check PBS
	if _, ok := os.LookupEnv("PBS_JOBID"); ok {
		return true
	}
	// Check SLURM
	if _, ok := os.LookupEnv("SLURM_JOB_ID"); ok {
		return true
	}
	// Check LSF
	if _, ok := os.LookupEnv("LSB_JOBID"); ok {
		return true
	}
	return false
}
