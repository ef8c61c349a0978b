package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

// Building a real shared object needs a -buildmode=plugin compile, so these
// tests cover the failure paths of directory resolution.

func TestResolver_DirectoryWithoutManifestIsResolutionError(t *testing.T) {
	dir := t.TempDir()
	r, _ := widgetResolver(t, &fakeInstaller{})

	_, err := r.Resolve(context.Background(), dir)

	var resErr *sgerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, dir, resErr.Location)
	require.Contains(t, err.Error(), "read manifest")
}

func TestResolver_DirectoryWithInvalidManifestIsResolutionError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("name: widgets\n"), 0o644))

	r, _ := widgetResolver(t, &fakeInstaller{})

	_, err := r.Resolve(context.Background(), dir)

	var resErr *sgerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)

	var defErr *sgerrors.DefinitionError
	require.ErrorAs(t, err, &defErr)
}

func TestResolver_DirectoryWithoutSharedObjectIsResolutionError(t *testing.T) {
	dir := t.TempDir()
	manifest := "name: gadgets\nsyncer_class: NewGadgetSyncer\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644))

	r, _ := widgetResolver(t, &fakeInstaller{})

	_, err := r.Resolve(context.Background(), dir)

	var resErr *sgerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "gadgets", resErr.Plugin)
	require.Equal(t, filepath.Join(dir, SharedObjectFile), resErr.Location)
}
