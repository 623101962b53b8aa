package catalog

import (
	_ "embed"
	"fmt"

	"github.com/leapstack-labs/sqlplay/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed datasets.yaml
var datasetsYAML []byte

// Definition is a sample dataset as declared in datasets.yaml.
type Definition struct {
	core.Dataset `yaml:",inline"`

	// Seed statements create and fill the table. They must be portable
	// across every supported engine.
	Seed []string `yaml:"seed"`
}

type definitionFile struct {
	Datasets []Definition `yaml:"datasets"`
}

// Definitions parses the embedded sample catalog.
func Definitions() ([]Definition, error) {
	return parseDefinitions(datasetsYAML)
}

func parseDefinitions(data []byte) ([]Definition, error) {
	var f definitionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sample datasets: %w", err)
	}

	seen := make(map[string]bool, len(f.Datasets))
	for i := range f.Datasets {
		d := &f.Datasets[i]
		if d.TableName == "" {
			return nil, fmt.Errorf("sample dataset %d: table_name is required", i)
		}
		if d.ID == "" {
			d.ID = d.TableName
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("sample dataset %q declared twice", d.ID)
		}
		seen[d.ID] = true
		if len(d.Seed) == 0 {
			return nil, fmt.Errorf("sample dataset %q has no seed statements", d.ID)
		}
		d.Origin = core.OriginSample
	}
	return f.Datasets, nil
}
