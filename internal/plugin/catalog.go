package plugin

import (
	"sort"
	"sync"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

// Entry pairs a manifest with the factory that builds its syncer.
type Entry struct {
	Manifest *Manifest
	Factory  syncer.Factory
}

// Catalog is the static table of resolvable syncer plugins: builtins wired
// at startup plus shared-object plugins loaded from directories. Wiring
// problems are definition errors, not runtime input errors.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Register adds a plugin under its manifest name. Registering a nil factory,
// an invalid manifest, or a duplicate name is a definition error.
func (c *Catalog) Register(manifest *Manifest, factory syncer.Factory) error {
	if manifest == nil {
		return sgerrors.NewDefinitionError("", "nil manifest")
	}
	if err := manifest.Validate(); err != nil {
		return err
	}
	if factory == nil {
		return sgerrors.NewDefinitionError(manifest.Name, "nil factory")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[manifest.Name]; exists {
		return sgerrors.NewDefinitionError(manifest.Name, "plugin already registered")
	}
	c.entries[manifest.Name] = Entry{Manifest: manifest, Factory: factory}
	return nil
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	return entry, ok
}

// Names returns the registered plugin names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
