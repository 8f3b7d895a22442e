// Package rules provides the scheduler's trigger rule table, either the
// built-in default or one loaded from a YAML file.
package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"go.yaml.in/yaml/v3"
)

type file struct {
	Rules []entity.TriggerRule `yaml:"rules"`
}

// Load returns the built-in table when path is empty, otherwise the validated
// rules from the YAML file at path.
func Load(path string) ([]entity.TriggerRule, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML rule table
func Parse(data []byte) ([]entity.TriggerRule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	if err := Validate(f.Rules); err != nil {
		return nil, err
	}

	return f.Rules, nil
}

// Validate checks every rule and rejects empty tables and duplicate names
func Validate(table []entity.TriggerRule) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: rule table is empty", entity.ErrInvalidRule)
	}

	seen := make(map[string]bool, len(table))
	for _, rule := range table {
		if err := rule.Validate(); err != nil {
			return err
		}
		if seen[rule.Name] {
			return fmt.Errorf("%w: duplicate rule name %q", entity.ErrInvalidRule, rule.Name)
		}
		seen[rule.Name] = true
	}

	return nil
}
