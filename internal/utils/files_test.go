package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), PermFile); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Errorf("FileExists(%q) = false, want true", file)
	}
	if FileExists(filepath.Join(dir, "absent.txt")) {
		t.Error("FileExists reported a missing file as present")
	}
	if FileExists(dir) {
		t.Error("FileExists reported a directory as a regular file")
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Errorf("DirExists(%q) = false, want true", dir)
	}
	if DirExists(filepath.Join(dir, "nope")) {
		t.Error("DirExists reported a missing directory as present")
	}
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.bashrc", filepath.Join(home, ".bashrc")},
		{"/etc/profile", "/etc/profile"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandUser(tt.in); got != tt.want {
			t.Errorf("ExpandUser(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithDirRunsInDirectory(t *testing.T) {
	start, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	var seen string
	err = WithDir(dir, func() error {
		seen, _ = os.Getwd()
		return nil
	})
	if err != nil {
		t.Fatalf("WithDir: %v", err)
	}
	// TempDir may sit behind a symlink on some platforms, so compare
	// resolved paths.
	wantDir, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(seen)
	if gotDir != wantDir {
		t.Errorf("fn ran in %q, want %q", gotDir, wantDir)
	}

	after, _ := os.Getwd()
	if after != start {
		t.Errorf("working directory not restored: got %q, want %q", after, start)
	}
}

func TestWithDirRestoresOnError(t *testing.T) {
	start, _ := os.Getwd()
	boom := errors.New("boom")

	err := WithDir(t.TempDir(), func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("WithDir error = %v, want %v", err, boom)
	}
	after, _ := os.Getwd()
	if after != start {
		t.Errorf("working directory not restored after error: %q", after)
	}
}

func TestWithDirDotRunsInPlace(t *testing.T) {
	start, _ := os.Getwd()
	err := WithDir(".", func() error {
		cwd, _ := os.Getwd()
		if cwd != start {
			return errors.New("changed directory for \".\"")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestWithDirMissingDirectory(t *testing.T) {
	err := WithDir(filepath.Join(t.TempDir(), "missing"), func() error {
		t.Fatal("fn ran despite missing directory")
		return nil
	})
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error does not name the directory: %v", err)
	}
}
