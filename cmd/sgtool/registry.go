package main

import (
	"github.com/sightglass-data/sgtool/internal/plugin"
	"github.com/sightglass-data/sgtool/pkg/syncer"

	csvsyncer "github.com/sightglass-data/sgtool/internal/syncers/csv"
	gcssyncer "github.com/sightglass-data/sgtool/internal/syncers/gcs"
	gitstoresyncer "github.com/sightglass-data/sgtool/internal/syncers/gitstore"
	jsonsyncer "github.com/sightglass-data/sgtool/internal/syncers/json"
	mocksyncer "github.com/sightglass-data/sgtool/internal/syncers/mock"
	postgressyncer "github.com/sightglass-data/sgtool/internal/syncers/postgres"
	redissyncer "github.com/sightglass-data/sgtool/internal/syncers/redis"
	redshiftsyncer "github.com/sightglass-data/sgtool/internal/syncers/redshift"
	s3syncer "github.com/sightglass-data/sgtool/internal/syncers/s3"
	sqlitesyncer "github.com/sightglass-data/sgtool/internal/syncers/sqlite"
)

// builtinSyncer pairs an embedded manifest with its factory and the listing
// metadata the syncer commands render.
type builtinSyncer struct {
	manifestYAML []byte
	factory      syncer.Factory
	kind         string
	summary      string
}

func builtinSyncers() []builtinSyncer {
	return []builtinSyncer{
		{sqlitesyncer.ManifestYAML, sqlitesyncer.New, "database", sqlitesyncer.Summary},
		{postgressyncer.ManifestYAML, postgressyncer.New, "database", postgressyncer.Summary},
		{redshiftsyncer.ManifestYAML, redshiftsyncer.New, "database", redshiftsyncer.Summary},
		{mocksyncer.ManifestYAML, mocksyncer.New, "database", mocksyncer.Summary},
		{csvsyncer.ManifestYAML, csvsyncer.New, "file", csvsyncer.Summary},
		{jsonsyncer.ManifestYAML, jsonsyncer.New, "file", jsonsyncer.Summary},
		{gitstoresyncer.ManifestYAML, gitstoresyncer.New, "file", gitstoresyncer.Summary},
		{s3syncer.ManifestYAML, s3syncer.New, "object store", s3syncer.Summary},
		{gcssyncer.ManifestYAML, gcssyncer.New, "object store", gcssyncer.Summary},
		{redissyncer.ManifestYAML, redissyncer.New, "key-value", redissyncer.Summary},
	}
}

// newBuiltinCatalog parses every embedded manifest and registers its factory.
// A manifest that fails to parse or register is a packaging mistake and aborts
// startup.
func newBuiltinCatalog() (*plugin.Catalog, error) {
	catalog := plugin.NewCatalog()
	for _, b := range builtinSyncers() {
		manifest, err := plugin.ParseManifest(b.manifestYAML, "embedded manifest")
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(manifest, b.factory); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// builtinIndex maps syncer names onto their listing metadata.
func builtinIndex() (map[string]builtinSyncer, error) {
	index := make(map[string]builtinSyncer)
	for _, b := range builtinSyncers() {
		manifest, err := plugin.ParseManifest(b.manifestYAML, "embedded manifest")
		if err != nil {
			return nil, err
		}
		index[manifest.Name] = b
	}
	return index, nil
}
