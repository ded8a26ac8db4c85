package main

import (
	"fmt"
	"os"

	"github.com/cuemby/tablestore/pkg/types"
	"gopkg.in/yaml.v3"
)

// loadCorsRules reads a YAML file holding a list of CORS rules, the
// same read-then-unmarshal-then-wrap-error shape used for loading
// other YAML resource files in this tree.
func loadCorsRules(path string) ([]*types.CorsRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rules []*types.CorsRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return rules, nil
}
