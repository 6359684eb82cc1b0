package batch

import (
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	content := `jobs:
  - name: sample0
    body:
      - echo Start
      - mpiexec ./solver
  - name: sample1
    body:
      - ./postprocess
`
	writeFile(t, path, content)

	jobs, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("loaded %d jobs, want 2", len(jobs))
	}
	if jobs[0].Name != "sample0" || len(jobs[0].Body) != 2 {
		t.Errorf("job 0 = %+v", jobs[0])
	}
	if jobs[1].Name != "sample1" || jobs[1].Body[0] != "./postprocess" {
		t.Errorf("job 1 = %+v", jobs[1])
	}
	if jobs[0].ID != "" {
		t.Errorf("loaded job already has id %q", jobs[0].ID)
	}
}

func TestLoadManifestRejectsNamelessJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	writeFile(t, path, "jobs:\n  - body: [echo hi]\n")

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("manifest with nameless job should fail")
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing manifest should fail")
	}
}

func TestSaveManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	jobs := []*Job{
		NewJob("a", []string{"echo a"}),
		NewJob("b", []string{"echo b", "echo done"}),
	}
	jobs[0].ID = "1234.pbssrv"

	if err := SaveManifest(path, jobs); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d jobs, want 2", len(loaded))
	}
	if loaded[0].Name != "a" || loaded[1].Body[1] != "echo done" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded[0].ID != "" {
		t.Error("submission ids should not survive the manifest")
	}
}
