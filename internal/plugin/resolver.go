package plugin

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/sightglass-data/sgtool/internal/logger"
	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

// Resolver turns a syncer reference into a constructed, finalized syncer. It
// owns the resolution pipeline: catalog lookup or shared-object load,
// dependency verification through the install registry, configuration
// decoding and validation, and the one-shot finalize hook.
type Resolver struct {
	catalog   *Catalog
	registry  *Registry
	installer Installer
	log       *logger.Logger
	loader    directoryLoader

	skipInstalls bool
}

// NewResolver wires a resolver from its collaborators. Development builds
// skip dependency installation; SetSkipInstalls overrides the detection.
func NewResolver(catalog *Catalog, registry *Registry, installer Installer, log *logger.Logger) *Resolver {
	return &Resolver{
		catalog:      catalog,
		registry:     registry,
		installer:    installer,
		log:          log,
		skipInstalls: devBuild(),
	}
}

// SetSkipInstalls forces dependency installation on or off regardless of how
// the binary was built.
func (r *Resolver) SetSkipInstalls(skip bool) {
	r.skipInstalls = skip
}

// Resolve returns the catalog entry for ref, ensuring the plugin's declared
// dependencies are installed. ref is a registered plugin name or the path of
// a plugin directory; anything else is a resolution error.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Entry, error) {
	entry, err := r.lookup(ref)
	if err != nil {
		return Entry{}, err
	}
	if err := r.ensureRequirements(ctx, entry.Manifest); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *Resolver) lookup(ref string) (Entry, error) {
	if entry, ok := r.catalog.Lookup(ref); ok {
		return entry, nil
	}
	if info, err := os.Stat(ref); err == nil && info.IsDir() {
		return r.loader.load(ref)
	}
	return Entry{}, sgerrors.NewResolutionError(ref, "", fmt.Errorf("no builtin syncer or plugin directory matches"))
}

// ensureRequirements runs the installer for every requirement the manifest
// declares, at most once per plugin name per process. A plugin already in the
// install registry is skipped outright, so repeat resolutions never touch the
// package manager again.
func (r *Resolver) ensureRequirements(ctx context.Context, m *Manifest) error {
	if r.registry.Contains(m.Name) {
		return nil
	}

	if r.skipInstalls {
		r.log.Debug(fmt.Sprintf("development build, skipping dependency install for %s", m.Name))
		r.registry.Add(m.Name)
		return nil
	}

	for _, req := range m.Requirements {
		installed, err := r.installer.Installed(ctx, req.Name())
		if err != nil {
			return sgerrors.NewResolutionError(m.Name, "", fmt.Errorf("probe dependency %s: %w", req.Name(), err))
		}
		if installed {
			continue
		}
		if err := r.installer.Install(ctx, req.Spec, req.Args...); err != nil {
			return sgerrors.NewResolutionError(m.Name, "", fmt.Errorf("install dependency %s: %w", req.Spec, err))
		}
	}

	r.registry.Add(m.Name)
	return nil
}

// Construct resolves ref and builds a configured syncer from the caller's
// key-value configuration. Construction is two-phase: the factory produces a
// bare instance, the configuration is decoded and validated onto it, and only
// then does the finalize hook run, exactly once. A syncer whose configuration
// fails validation is never finalized.
func (r *Resolver) Construct(ctx context.Context, ref string, config map[string]any) (syncer.Syncer, error) {
	entry, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	name := entry.Manifest.Name
	instance := entry.Factory()
	if instance == nil {
		return nil, sgerrors.NewDefinitionError(name, "factory returned nil")
	}

	binder, ok := instance.(interface{ Bind(string, zerolog.Logger) })
	if !ok {
		return nil, sgerrors.NewDefinitionError(name, "syncer does not embed the base contract")
	}
	binder.Bind(name, r.log.Zerolog())

	if err := decodeConfig(instance, config); err != nil {
		return nil, sgerrors.NewInitError(name, err)
	}
	if err := validateStruct(instance); err != nil {
		return nil, sgerrors.NewInitError(name, err)
	}

	if finalizer, ok := instance.(syncer.Finalizer); ok {
		if err := finalizer.Finalize(ctx); err != nil {
			return nil, fmt.Errorf("finalize syncer '%s': %w", name, err)
		}
	}

	r.log.Debug(fmt.Sprintf("constructed syncer %s", name))
	return instance, nil
}

// devBuild reports whether this binary was built from a source checkout
// rather than released. Development environments are assumed to already have
// every dependency, so installation is skipped there.
func devBuild() bool {
	info, ok := debug.ReadBuildInfo()
	return ok && info.Main.Version == "(devel)"
}
