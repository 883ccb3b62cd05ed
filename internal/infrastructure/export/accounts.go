package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultAccountCode is the Xero purchases account used when a category has no
// explicit mapping.
const defaultAccountCode = "400"

// AccountMap maps expense categories to chart-of-accounts codes for the Xero
// export.
type AccountMap struct {
	Default    string            `yaml:"default"`
	Categories map[string]string `yaml:"categories"`
}

func DefaultAccountMap() AccountMap {
	return AccountMap{Default: defaultAccountCode}
}

// LoadAccountMap reads a category-to-account mapping from a YAML file. An
// empty path yields the built-in default mapping.
func LoadAccountMap(path string) (AccountMap, error) {
	if path == "" {
		return DefaultAccountMap(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return AccountMap{}, fmt.Errorf("read account map: %w", err)
	}

	var m AccountMap
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return AccountMap{}, fmt.Errorf("parse account map: %w", err)
	}
	if m.Default == "" {
		m.Default = defaultAccountCode
	}
	return m, nil
}

func (m AccountMap) Code(category string) string {
	if code, ok := m.Categories[category]; ok && code != "" {
		return code
	}
	return m.Default
}
