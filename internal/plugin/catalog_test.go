package plugin

import (
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

type catalogSyncer struct {
	syncer.Base
}

func testManifest(name string) *Manifest {
	return &Manifest{Name: name, SyncerClass: "NewSyncer"}
}

func testFactory() syncer.Syncer {
	return &catalogSyncer{}
}

func TestCatalog_RegisterAndLookup(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.Register(testManifest("widgets"), testFactory))

	entry, ok := c.Lookup("widgets")
	require.True(t, ok)
	require.Equal(t, "widgets", entry.Manifest.Name)
	require.NotNil(t, entry.Factory)

	_, ok = c.Lookup("gadgets")
	require.False(t, ok)
}

func TestCatalog_DuplicateNameIsDefinitionError(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(testManifest("widgets"), testFactory))

	err := c.Register(testManifest("widgets"), testFactory)

	var defErr *sgerrors.DefinitionError
	require.ErrorAs(t, err, &defErr)
	require.Equal(t, "widgets", defErr.Plugin)
}

func TestCatalog_NilFactoryIsDefinitionError(t *testing.T) {
	c := NewCatalog()

	err := c.Register(testManifest("widgets"), nil)

	var defErr *sgerrors.DefinitionError
	require.ErrorAs(t, err, &defErr)
}

func TestCatalog_InvalidManifestIsRejected(t *testing.T) {
	c := NewCatalog()

	err := c.Register(&Manifest{SyncerClass: "NewSyncer"}, testFactory)

	var defErr *sgerrors.DefinitionError
	require.ErrorAs(t, err, &defErr)

	_, ok := c.Lookup("")
	require.False(t, ok)
}

func TestCatalog_NamesAreSorted(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(testManifest("sqlite"), testFactory))
	require.NoError(t, c.Register(testManifest("csv"), testFactory))
	require.NoError(t, c.Register(testManifest("postgres"), testFactory))

	require.Equal(t, []string{"csv", "postgres", "sqlite"}, c.Names())
}
