// Package plugin implements the resolution machinery of the data-syncer
// subsystem: manifests, the dependency installer, the install registry, the
// factory catalog, shared-object loading, and the resolver that turns a
// syncer reference plus a configuration map into a constructed, finalized
// syncer.
package plugin

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// Manifest declares a plugin: its display name, the factory symbol to
// resolve after loading, and its dependency requirements. It is parsed once
// when a plugin is first referenced and immutable afterwards; builtin plugins
// embed theirs with go:embed.
type Manifest struct {
	Name         string        `yaml:"name"`
	SyncerClass  string        `yaml:"syncer_class"`
	Requirements []Requirement `yaml:"requirements"`
}

// ParseManifest parses and validates manifest YAML. path is used for error
// reporting only.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, sgerrors.NewParseError(path, 0, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate enforces the manifest invariants. Violations are definition
// errors: the plugin cannot be started at all.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return sgerrors.NewDefinitionError("", "manifest requires a non-empty name")
	}
	if strings.TrimSpace(m.SyncerClass) == "" {
		return sgerrors.NewDefinitionError(m.Name, "manifest requires a non-empty syncer_class")
	}
	for _, req := range m.Requirements {
		if strings.TrimSpace(req.Spec) == "" {
			return sgerrors.NewDefinitionError(m.Name, "requirement with empty spec")
		}
	}
	return nil
}

// Requirement is one dependency specification: a name+version constraint
// string plus ordered extra installer arguments. Two requirements with the
// same constraint and arguments are interchangeable.
type Requirement struct {
	Spec string   `yaml:"spec"`
	Args []string `yaml:"args"`
}

// UnmarshalYAML accepts both the bare-string form ("widgetdb>=2.0") and the
// mapping form with explicit installer arguments.
func (r *Requirement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var spec string
		if err := node.Decode(&spec); err != nil {
			return err
		}
		r.Spec = spec
		r.Args = nil
		return nil
	}

	type rawRequirement struct {
		Spec string   `yaml:"spec"`
		Args []string `yaml:"args"`
	}
	var raw rawRequirement
	if err := node.Decode(&raw); err != nil {
		return err
	}
	r.Spec = raw.Spec
	r.Args = raw.Args
	return nil
}

// Name extracts the bare package name from the constraint string:
// "widgetdb>=2.0" yields "widgetdb".
func (r Requirement) Name() string {
	spec := strings.TrimSpace(r.Spec)
	if i := strings.IndexAny(spec, " <>=!~([@"); i >= 0 {
		return strings.TrimSpace(spec[:i])
	}
	return spec
}

// Equal reports structural equality.
func (r Requirement) Equal(other Requirement) bool {
	if r.Spec != other.Spec || len(r.Args) != len(other.Args) {
		return false
	}
	for i := range r.Args {
		if r.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

func (r Requirement) String() string {
	if len(r.Args) == 0 {
		return r.Spec
	}
	return fmt.Sprintf("%s (%s)", r.Spec, strings.Join(r.Args, " "))
}
