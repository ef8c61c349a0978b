package plugin

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// Definition is a parsed syncer reference: the plugin selector (a builtin
// name or a plugin directory path) plus the configuration to construct it
// with.
type Definition struct {
	Ref    string
	Config map[string]any
}

// ParseDefinition parses the command line's REF://CONFIG syncer syntax.
// CONFIG is either the path of a TOML definition file carrying a
// [configuration] table, or an inline key=value&key=value list. An empty
// CONFIG constructs the syncer with no configuration at all.
func ParseDefinition(raw string) (*Definition, error) {
	ref, rest, found := strings.Cut(raw, "://")
	if !found || strings.TrimSpace(ref) == "" {
		return nil, sgerrors.NewParseError(raw, 0, fmt.Errorf("expected SYNCER://DEFINITION"))
	}

	if strings.HasSuffix(rest, ".toml") {
		config, err := readDefinitionFile(rest)
		if err != nil {
			return nil, err
		}
		return &Definition{Ref: ref, Config: config}, nil
	}

	config, err := parseInline(raw, rest)
	if err != nil {
		return nil, err
	}
	return &Definition{Ref: ref, Config: config}, nil
}

type definitionFile struct {
	Configuration map[string]any `toml:"configuration"`
}

func readDefinitionFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sgerrors.NewParseError(path, 0, err)
	}

	var file definitionFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, sgerrors.NewParseError(path, 0, err)
	}
	if file.Configuration == nil {
		return nil, sgerrors.NewParseError(path, 0, fmt.Errorf("missing [configuration] table"))
	}
	return file.Configuration, nil
}

func parseInline(raw, rest string) (map[string]any, error) {
	config := make(map[string]any)
	if strings.TrimSpace(rest) == "" {
		return config, nil
	}

	for _, pair := range strings.Split(rest, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, sgerrors.NewParseError(raw, 0, fmt.Errorf("malformed pair %q, expected key=value", pair))
		}
		config[strings.TrimSpace(key)] = value
	}
	return config, nil
}
