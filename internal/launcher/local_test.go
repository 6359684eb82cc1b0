package launcher

import (
	"os"
	"testing"
)

func TestLocalLaunchRunsBody(t *testing.T) {
	chdirTemp(t)

	local, err := NewLocal("")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	id, err := local.Launch("hello", []string{"touch proof.txt"}, false, "")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if id != "local.1" {
		t.Errorf("id = %q, want local.1", id)
	}

	if _, err := os.Stat("proof.txt"); err != nil {
		t.Error("body command did not run")
	}
	if _, err := os.Stat("hello.pbs"); err != nil {
		t.Error("job file was not written")
	}

	job, err := local.Job(id)
	if err != nil {
		t.Fatalf("Job failed: %v", err)
	}
	if job.State != StateFinished {
		t.Errorf("state = %q, want finished", job.State)
	}
	if job.ExitStatus != 0 {
		t.Errorf("exit status = %d, want 0", job.ExitStatus)
	}
}

func TestLocalLaunchCountsFailures(t *testing.T) {
	chdirTemp(t)

	local, err := NewLocal("")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	id, err := local.Launch("flaky", []string{"false", "true", "false"}, false, "")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	job, err := local.Job(id)
	if err != nil {
		t.Fatalf("Job failed: %v", err)
	}
	if job.ExitStatus != 2 {
		t.Errorf("exit status = %d, want 2 failed lines", job.ExitStatus)
	}
}

func TestLocalLaunchStopsAtFirstFailure(t *testing.T) {
	chdirTemp(t)

	local, err := NewLocal("")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	local.StopAtFirstFailure = true

	id, err := local.Launch("abort", []string{"false", "touch never.txt"}, false, "")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	if _, err := os.Stat("never.txt"); err == nil {
		t.Error("body continued past the first failure")
	}

	job, err := local.Job(id)
	if err != nil {
		t.Fatalf("Job failed: %v", err)
	}
	if job.ExitStatus != 1 {
		t.Errorf("exit status = %d, want 1", job.ExitStatus)
	}
}

func TestLocalJobIdsIncrement(t *testing.T) {
	chdirTemp(t)

	local, err := NewLocal("")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	first, _ := local.Launch("a", []string{"true"}, false, "")
	second, _ := local.Launch("b", []string{"true"}, false, "")
	if first != "local.1" || second != "local.2" {
		t.Errorf("ids = %q, %q", first, second)
	}

	if _, err := local.Job("local.99"); err == nil {
		t.Error("unknown local id should fail")
	}
}

// chdirTemp changes into a fresh temp dir for the test and restores
// the previous working directory on cleanup.
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
