// Package planfile reads and writes WBS plans as YAML documents. JSON is
// accepted on input since it is valid YAML.
package planfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/wbs-backend-go/internal/models"
)

//go:embed sample.yaml
var sampleYAML []byte

// ProjectInfo is the header block of a plan file
type ProjectInfo struct {
	Name     string `yaml:"name" json:"name"`
	Owner    string `yaml:"owner" json:"owner"`
	Executor string `yaml:"executor" json:"executor"`
}

// Plan is a project header plus its flat task list
type Plan struct {
	Project ProjectInfo      `yaml:"project" json:"project"`
	Tasks   []models.WBSTask `yaml:"tasks" json:"tasks"`
}

// Parse decodes a YAML or JSON plan and checks its enum fields
func Parse(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := Check(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Check reports unknown statuses and dependency types and weights or
// progress outside 0-100. Hierarchy, weight totals and dangling references
// are not checked here.
func Check(plan *Plan) error {
	var errs []error
	for _, t := range plan.Tasks {
		if t.Weight < 0 || t.Weight > 100 {
			errs = append(errs, fmt.Errorf("task %s: weight %d out of range 0-100", t.ID, t.Weight))
		}
		if t.Progress < 0 || t.Progress > 100 {
			errs = append(errs, fmt.Errorf("task %s: progress %d out of range 0-100", t.ID, t.Progress))
		}
		if t.Status != "" && !t.Status.IsValid() {
			errs = append(errs, fmt.Errorf("task %s: unknown status %q", t.ID, t.Status))
		}
		for _, dep := range t.Dependencies {
			if !dep.Type.IsValid() {
				errs = append(errs, fmt.Errorf("task %s: unknown dependency type %q", t.ID, dep.Type))
			}
		}
	}
	return errors.Join(errs...)
}

// Load reads and parses the plan file at path
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(data)
}

// Marshal encodes a plan as YAML
func Marshal(plan *Plan) ([]byte, error) {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Write stores plan at path through a temp file and rename, so watchers
// never observe a half-written file.
func Write(path string, plan *Plan) error {
	content, err := Marshal(plan)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".wbs-tmp-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// Sample returns the bundled example plan
func Sample() *Plan {
	plan, err := Parse(sampleYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sample plan is invalid: %v", err))
	}
	return plan
}
