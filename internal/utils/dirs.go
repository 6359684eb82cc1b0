package utils

import "os"

// WithDir runs fn with the working directory changed to dir, restoring
// the previous directory afterwards even when fn fails.
func WithDir(dir string, fn func() error) error {
	if dir == "." || dir == "" {
		return fn()
	}
	saved, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer os.Chdir(saved)
	return fn()
}
