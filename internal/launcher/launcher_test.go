package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJobFileLayout(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "env.sh")
	if err := os.WriteFile(profilePath, []byte("export DOG=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	pbs, err := NewPBS("queue", 5, 10, 24, profilePath)
	if err != nil {
		t.Fatalf("NewPBS failed: %v", err)
	}
	pbs.profile.SetRequestedNodes(2)

	scriptPath := filepath.Join(dir, "sample.pbs")
	body := []string{"echo Start", "mpiexec ./solver", "echo Done"}
	if err := pbs.WriteJobFile(scriptPath, "sample", body, ""); err != nil {
		t.Fatalf("WriteJobFile failed: %v", err)
	}

	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"#!/usr/bin/env bash",
		"#PBS -N sample",
		"#PBS -q queue",
		"#PBS -l select=2:ncpus=5:mpiprocs=5",
		"#PBS -l walltime=24:00:00",
		"#PBS -o sample_pbs.log",
		"#PBS -j oe",
		"#PBS -r n",
		"",
		"",
		"cd $PBS_O_WORKDIR",
		"source " + profilePath,
		"",
		"echo Start",
		"mpiexec ./solver",
		"echo Done",
	}, "\n") + "\n"

	if string(content) != want {
		t.Errorf("script content mismatch\ngot:\n%s\nwant:\n%s", content, want)
	}
}

func TestWriteJobFileWithoutProfileFile(t *testing.T) {
	dir := t.TempDir()

	pbs, err := NewPBS("queue", 5, 10, 24, "")
	if err != nil {
		t.Fatalf("NewPBS failed: %v", err)
	}

	scriptPath := filepath.Join(dir, "sample.pbs")
	if err := pbs.WriteJobFile(scriptPath, "sample", []string{"echo hi"}, ""); err != nil {
		t.Fatalf("WriteJobFile failed: %v", err)
	}

	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "source") {
		t.Errorf("script should not source an environment file:\n%s", content)
	}
	if !strings.Contains(string(content), "cd $PBS_O_WORKDIR\n\necho hi\n") {
		t.Errorf("unexpected layout around body:\n%s", content)
	}
}

func TestWriteJobFileIncludesDependency(t *testing.T) {
	dir := t.TempDir()

	pbs, err := NewPBS("queue", 5, 10, 24, "")
	if err != nil {
		t.Fatalf("NewPBS failed: %v", err)
	}

	scriptPath := filepath.Join(dir, "child.pbs")
	if err := pbs.WriteJobFile(scriptPath, "child", []string{"echo hi"}, "4213.pbssrv"); err != nil {
		t.Fatalf("WriteJobFile failed: %v", err)
	}

	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "#PBS -W depend=afterok:4213.pbssrv") {
		t.Errorf("dependency directive missing:\n%s", content)
	}
}

func TestWriteJobFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	pbs, err := NewPBS("queue", 5, 10, 24, "")
	if err != nil {
		t.Fatalf("NewPBS failed: %v", err)
	}

	scriptPath := filepath.Join(dir, "sample.pbs")
	body := []string{"echo hi"}
	if err := pbs.WriteJobFile(scriptPath, "sample", body, ""); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := pbs.WriteJobFile(scriptPath, "sample", body, ""); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("rewriting the same job changed the script\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestDetectTypeWithoutSchedulers(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if got := DetectType(); got != TypeUnknown {
		t.Errorf("DetectType with empty PATH = %q, want unknown", got)
	}
}

func TestIsInsideJob(t *testing.T) {
	for _, env := range []string{"PBS_JOBID", "SLURM_JOB_ID", "LSB_JOBID"} {
		os.Unsetenv(env)
	}
	if IsInsideJob() {
		t.Fatal("IsInsideJob true without scheduler environment")
	}

	t.Setenv("PBS_JOBID", "12345.pbssrv")
	if !IsInsideJob() {
		t.Error("IsInsideJob false with PBS_JOBID set")
	}
}

func TestActiveLauncherRegistry(t *testing.T) {
	ClearActive()
	t.Cleanup(ClearActive)

	if _, err := Active(); err == nil {
		t.Fatal("Active with no launcher configured should fail")
	}

	pbs, err := NewPBS("queue", 5, 10, 24, "")
	if err != nil {
		t.Fatal(err)
	}
	SetActive(pbs)

	got, err := Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if got != Launcher(pbs) {
		t.Error("Active returned a different launcher")
	}
}
