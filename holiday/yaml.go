package holiday

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// regionsFile mirrors the on-disk YAML layout:
//
//	regions:
//	  CN:
//	    - 2026-01-01
//	    - 2026-02-17
//	  US:
//	    - 2026-07-03
type regionsFile struct {
	Regions map[string][]string `yaml:"regions"`
}

// Parse reads a region table from YAML bytes.
func Parse(data []byte) (*TableProvider, error) {
	var file regionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse holiday table: %w", err)
	}

	provider := NewTableProvider()
	for region, dates := range file.Regions {
		for _, raw := range dates {
			date, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("invalid holiday date %q in region %q: %w", raw, region, err)
			}
			provider.Add(region, date)
		}
	}
	return provider, nil
}

// LoadFile reads a region table from a YAML file.
func LoadFile(path string) (*TableProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday table: %w", err)
	}
	return Parse(data)
}
