package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func builtinNames() []string {
	return []string{"csv", "gcs", "gitstore", "json", "mock", "postgres", "redis", "redshift", "s3", "sqlite"}
}

func TestBuiltinCatalogRegistersEverySyncer(t *testing.T) {
	t.Parallel()

	catalog, err := newBuiltinCatalog()
	require.NoError(t, err)
	require.Equal(t, builtinNames(), catalog.Names())
}

func TestBuiltinCatalogFactoriesProduceInstances(t *testing.T) {
	t.Parallel()

	catalog, err := newBuiltinCatalog()
	require.NoError(t, err)

	for _, name := range builtinNames() {
		entry, ok := catalog.Lookup(name)
		require.True(t, ok, "missing catalog entry for %s", name)
		require.NotNil(t, entry.Factory(), "factory for %s returned nil", name)
	}
}

func TestBuiltinIndexCarriesListingMetadata(t *testing.T) {
	t.Parallel()

	index, err := builtinIndex()
	require.NoError(t, err)
	require.Len(t, index, len(builtinNames()))

	for name, builtin := range index {
		require.NotEmpty(t, builtin.kind, "kind missing for %s", name)
		require.NotEmpty(t, builtin.summary, "summary missing for %s", name)
	}

	require.Equal(t, "database", index["sqlite"].kind)
	require.Equal(t, "object store", index["s3"].kind)
	require.Equal(t, "key-value", index["redis"].kind)
}
