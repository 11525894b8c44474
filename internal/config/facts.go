package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"gopkg.in/yaml.v3"
)

// LoadFacts reads a form snapshot from a YAML or JSON file, chosen by the
// file extension. Derived line fields are recomputed.
func LoadFacts(path string) (form.Facts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Facts{}, fmt.Errorf("failed to read facts file: %w", err)
	}

	var facts form.Facts
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &facts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &facts)
	default:
		return form.Facts{}, fmt.Errorf("unsupported facts file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return form.Facts{}, fmt.Errorf("failed to parse facts file %s: %w", path, err)
	}

	return facts.Normalize(), nil
}
