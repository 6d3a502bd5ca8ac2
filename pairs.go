package groupsync

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/groupsync/groupsync/pkg/errors"
)

// pairsFile is the on-disk shape of a group mapping file:
//
//	pairs:
//	  - source_group: Crest Core QA
//	    target_group: Netskope
type pairsFile struct {
	Pairs []Pair `yaml:"pairs"`
}

// LoadPairs reads group pairs from a YAML mapping file.
func LoadPairs(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ConfigError{Component: "pairs", Message: "reading mapping file " + path, Err: err}
	}

	var file pairsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &errors.ConfigError{Component: "pairs", Message: "parsing mapping file " + path, Err: err}
	}
	if len(file.Pairs) == 0 {
		return nil, &errors.ConfigError{Component: "pairs", Message: "mapping file " + path + " defines no pairs"}
	}

	return file.Pairs, nil
}
