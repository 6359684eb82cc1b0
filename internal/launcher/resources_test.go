package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRequestedNodesClampedToQueueLimit(t *testing.T) {
	p := NewProfile("queue", 40, 16, 72)

	if got := p.RequestedNodes(); got != 1 {
		t.Fatalf("default requested nodes = %d, want 1", got)
	}

	p.SetRequestedNodes(10)
	if got := p.RequestedNodes(); got != 10 {
		t.Errorf("requested nodes = %d, want 10", got)
	}

	p.SetRequestedNodes(100)
	if got := p.RequestedNodes(); got != 16 {
		t.Errorf("requested nodes above limit = %d, want clamp to 16", got)
	}
}

func TestRanksPerNodeDefaultsToCpusPerNode(t *testing.T) {
	p := NewProfile("queue", 20, 10, 72)

	if got := p.RanksPerNode(); got != 20 {
		t.Fatalf("default ranks per node = %d, want 20", got)
	}

	p.CpusPerNode = 40
	if got := p.RanksPerNode(); got != 40 {
		t.Errorf("ranks per node after cpu change = %d, want 40", got)
	}

	p.SetRanksPerNode(4)
	if got := p.RanksPerNode(); got != 4 {
		t.Errorf("overridden ranks per node = %d, want 4", got)
	}
	if p.CpusPerNode != 40 {
		t.Errorf("cpus per node changed to %d by rank override", p.CpusPerNode)
	}

	p.SetRanksPerNode(0)
	if got := p.RanksPerNode(); got != 40 {
		t.Errorf("ranks per node after reset = %d, want 40", got)
	}
}

func TestProfileFileMustExist(t *testing.T) {
	p := NewProfile("queue", 1, 1, 1)

	real := filepath.Join(t.TempDir(), "env.sh")
	if err := os.WriteFile(real, []byte("export DOG=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := p.SetProfileFile(real); err != nil {
		t.Fatalf("SetProfileFile(%s) failed: %v", real, err)
	}
	if p.ProfileFile() != real {
		t.Errorf("profile file = %q, want %q", p.ProfileFile(), real)
	}

	err := p.SetProfileFile("i_am_not_a_file.xyz")
	if !errors.Is(err, ErrProfileFileNotFound) {
		t.Fatalf("SetProfileFile on missing file returned %v, want ErrProfileFileNotFound", err)
	}

	if err := p.SetProfileFile(""); err != nil {
		t.Fatalf("clearing profile file failed: %v", err)
	}
	if p.ProfileFile() != "" {
		t.Errorf("profile file not cleared: %q", p.ProfileFile())
	}
}

func TestOutputRedirection(t *testing.T) {
	p := NewProfile("queue", 1, 1, 1)

	p.Shell = ShellTcsh
	if got := p.redirectOutput("dog.out"); got != ">& dog.out" {
		t.Errorf("tcsh redirect = %q", got)
	}

	p.Shell = ShellBash
	if got := p.redirectOutput("dog.out"); got != "&> dog.out" {
		t.Errorf("bash redirect = %q", got)
	}

	p.TeeOutput = true
	if got := p.redirectOutput("dog.out"); got != "2>&1 | tee dog.out" {
		t.Errorf("tee redirect = %q", got)
	}
}

func TestHashbangLine(t *testing.T) {
	p := NewProfile("queue", 1, 1, 1)
	if got := p.hashbangLine(); got != "#!/usr/bin/env bash" {
		t.Errorf("default hashbang = %q", got)
	}

	p.Shell = ShellTcsh
	if got := p.hashbangLine(); got != "#!/usr/bin/env tcsh" {
		t.Errorf("tcsh hashbang = %q", got)
	}

	p.Hashbang = "#!/usr/bin/tcsh"
	if got := p.hashbangLine(); got != "#!/usr/bin/tcsh" {
		t.Errorf("override hashbang = %q", got)
	}
}
