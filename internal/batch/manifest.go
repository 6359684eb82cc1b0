package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qbatch/qbatch/internal/utils"
)

// manifest is the on-disk YAML description of a batch: a list of named
// jobs with their script bodies.
//
//	jobs:
//	  - name: sample0
//	    body:
//	      - echo Start
//	      - mpiexec ./solver
type manifest struct {
	Jobs []manifestJob `yaml:"jobs"`
}

type manifestJob struct {
	Name string   `yaml:"name"`
	Body []string `yaml:"body"`
}

// LoadManifest reads a YAML batch description into a list of jobs.
func LoadManifest(path string) ([]*Job, error) {
	data, err := os.ReadFile(utils.ExpandUser(path))
	if err != nil {
		return nil, fmt.Errorf("read batch manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse batch manifest %s: %w", path, err)
	}

	jobs := make([]*Job, 0, len(m.Jobs))
	for i, mj := range m.Jobs {
		if mj.Name == "" {
			return nil, fmt.Errorf("batch manifest %s: job %d has no name", path, i)
		}
		jobs = append(jobs, NewJob(mj.Name, mj.Body))
	}
	return jobs, nil
}

// SaveManifest writes the batch's jobs back out as YAML, preserving
// names and bodies but not submission ids.
func SaveManifest(path string, jobs []*Job) error {
	m := manifest{Jobs: make([]manifestJob, 0, len(jobs))}
	for _, job := range jobs {
		m.Jobs = append(m.Jobs, manifestJob{Name: job.Name, Body: job.Body})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode batch manifest: %w", err)
	}
	if err := os.WriteFile(path, data, utils.PermFile); err != nil {
		return fmt.Errorf("write batch manifest: %w", err)
	}
	return nil
}
