package launcher

import (
	"testing"
)

func newHeaderTestLSF(t *testing.T) *LSF {
	t.Helper()
	l, err := NewLSF("ard149", 6, 42, 1_000_000, 12, "")
	if err != nil {
		t.Fatalf("NewLSF failed: %v", err)
	}
	return l
}

func TestLsfStandardHeader(t *testing.T) {
	l := newHeaderTestLSF(t)
	checkLines(t, l.StandardHeader("trainer"), []string{
		"#!/usr/bin/env bash",
		"#BSUB -P ard149",
		"#BSUB -J trainer",
		"#BSUB -nnodes 1",
		"#BSUB -W 12:00",
	})
}

func TestLsfOptionalHeader(t *testing.T) {
	l := newHeaderTestLSF(t)

	checkLines(t, l.OptionalHeader(""), nil)

	l.NotifyWhenDone = true
	checkLines(t, l.OptionalHeader("1983914"), []string{
		"#BSUB -N",
		"#BSUB -w ended(1983914)",
	})
}

func TestBsubIDPattern(t *testing.T) {
	out := "Job <1983914> is submitted to default queue <batch>."
	m := bsubIDPattern.FindStringSubmatch(out)
	if m == nil || m[1] != "1983914" {
		t.Fatalf("id match = %v", m)
	}
}

func TestLsfCreateMpiCommand(t *testing.T) {
	l := newHeaderTestLSF(t)
	l.Profile().SetRequestedNodes(1)

	got := l.CreateMpiCommand("a.out", "dog", MpiOptions{OpenMPThreads: 2})
	if got != "jsrun -n 6 -a 1 -c 2 -g 1 a.out &> dog.out" {
		t.Errorf("jsrun command = %q", got)
	}

	got = l.CreateMpiCommand("a.out", "dog", MpiOptions{})
	if got != "jsrun -n 6 -a 1 -c 1 -g 1 a.out &> dog.out" {
		t.Errorf("jsrun command without threads = %q", got)
	}
}

func TestLsfCreateMpiCommandScalesWithNodes(t *testing.T) {
	l := newHeaderTestLSF(t)
	l.Profile().SetRequestedNodes(3)

	got := l.CreateMpiCommand("a.out", "dog", MpiOptions{})
	if got != "jsrun -n 18 -a 1 -c 1 -g 1 a.out &> dog.out" {
		t.Errorf("jsrun command = %q", got)
	}
}

func TestLsfParseStatus(t *testing.T) {
	l := newHeaderTestLSF(t)

	job := &Job{ID: "1983914"}
	l.parseStatus("1983914  RUN  trainer  batch  /gpfs/wolf/proj/trainer  -\n", job)
	if job.State != StateRunning {
		t.Errorf("state = %q, want running", job.State)
	}
	if job.Name != "trainer" || job.Queue != "batch" {
		t.Errorf("name=%q queue=%q", job.Name, job.Queue)
	}
	if job.Workdir != "/gpfs/wolf/proj/trainer" {
		t.Errorf("workdir = %q", job.Workdir)
	}

	job = &Job{ID: "1983915"}
	l.parseStatus("1983915  EXIT  trainer  batch  -  137\n", job)
	if job.State != StateFinished {
		t.Errorf("state = %q, want finished", job.State)
	}
	if job.ExitStatus != 137 {
		t.Errorf("exit status = %d, want 137", job.ExitStatus)
	}
}

func TestLsfStateMapping(t *testing.T) {
	tests := []struct {
		in   string
		want JobState
	}{
		{"PEND", StateQueued},
		{"RUN", StateRunning},
		{"PSUSP", StateHeld},
		{"USUSP", StateHeld},
		{"SSUSP", StateHeld},
		{"DONE", StateFinished},
		{"EXIT", StateFinished},
		{"ZOMBI", StateUnknown},
	}
	for _, tt := range tests {
		if got := lsfStateToJobState(tt.in); got != tt.want {
			t.Errorf("lsfStateToJobState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
