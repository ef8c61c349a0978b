package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"sync"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

const (
	// ManifestFile is the manifest filename inside a plugin directory.
	ManifestFile = "manifest.yaml"

	// SharedObjectFile is the shared-object filename inside a plugin
	// directory, built with -buildmode=plugin against this module's
	// pkg/syncer.
	SharedObjectFile = "syncer.so"
)

// directoryLoader side-loads syncer plugins from on-disk directories. Each
// directory holds manifest.yaml plus syncer.so; the symbol named by the
// manifest's syncer_class must have type func() syncer.Syncer. Loaded entries
// are cached per absolute path because the runtime refuses to open the same
// shared object twice.
type directoryLoader struct {
	mu     sync.Mutex
	loaded map[string]Entry
}

func (l *directoryLoader) load(dir string) (Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Entry{}, sgerrors.NewResolutionError(dir, dir, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded == nil {
		l.loaded = make(map[string]Entry)
	}
	if entry, ok := l.loaded[abs]; ok {
		return entry, nil
	}

	manifestPath := filepath.Join(abs, ManifestFile)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Entry{}, sgerrors.NewResolutionError(filepath.Base(abs), abs, fmt.Errorf("read manifest: %w", err))
	}
	manifest, err := ParseManifest(data, manifestPath)
	if err != nil {
		return Entry{}, sgerrors.NewResolutionError(filepath.Base(abs), abs, err)
	}

	soPath := filepath.Join(abs, SharedObjectFile)
	factory, err := openFactory(soPath, manifest.SyncerClass)
	if err != nil {
		return Entry{}, sgerrors.NewResolutionError(manifest.Name, soPath, err)
	}

	entry := Entry{Manifest: manifest, Factory: factory}
	l.loaded[abs] = entry
	return entry, nil
}

func openFactory(soPath, symbol string) (syncer.Factory, error) {
	p, err := goplugin.Open(soPath)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	switch f := sym.(type) {
	case func() syncer.Syncer:
		return f, nil
	case syncer.Factory:
		return f, nil
	case *syncer.Factory:
		return *f, nil
	default:
		return nil, fmt.Errorf("symbol %s is %T, want func() syncer.Syncer", symbol, sym)
	}
}
