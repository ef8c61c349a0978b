package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

func TestParseDefinition_InlinePairs(t *testing.T) {
	def, err := ParseDefinition("sqlite://filepath=ledger.db&load_strategy=upsert")
	require.NoError(t, err)

	require.Equal(t, "sqlite", def.Ref)
	require.Equal(t, map[string]any{
		"filepath":      "ledger.db",
		"load_strategy": "upsert",
	}, def.Config)
}

func TestParseDefinition_EmptyConfig(t *testing.T) {
	def, err := ParseDefinition("mock://")
	require.NoError(t, err)

	require.Equal(t, "mock", def.Ref)
	require.Empty(t, def.Config)
}

func TestParseDefinition_ValuesKeepEqualSigns(t *testing.T) {
	def, err := ParseDefinition("postgres://dsn=host=localhost port=5432")
	require.NoError(t, err)

	require.Equal(t, "host=localhost port=5432", def.Config["dsn"])
}

func TestParseDefinition_MissingSeparatorIsParseError(t *testing.T) {
	_, err := ParseDefinition("sqlite")

	var parseErr *sgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseDefinition_MalformedPairIsParseError(t *testing.T) {
	_, err := ParseDefinition("sqlite://filepath")

	var parseErr *sgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseDefinition_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.toml")
	contents := `
[configuration]
filepath = "ledger.db"
load_strategy = "TRUNCATE"
batch_rows = 500
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	def, err := ParseDefinition("sqlite://" + path)
	require.NoError(t, err)

	require.Equal(t, "sqlite", def.Ref)
	require.Equal(t, "ledger.db", def.Config["filepath"])
	require.Equal(t, "TRUNCATE", def.Config["load_strategy"])
	require.EqualValues(t, 500, def.Config["batch_rows"])
}

func TestParseDefinition_TOMLWithoutConfigurationTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.toml")
	require.NoError(t, os.WriteFile(path, []byte("filepath = \"ledger.db\"\n"), 0o644))

	_, err := ParseDefinition("sqlite://" + path)

	var parseErr *sgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, path, parseErr.Path)
}

func TestParseDefinition_MissingTOMLFileIsParseError(t *testing.T) {
	_, err := ParseDefinition("sqlite:///nowhere/ledger.toml")

	var parseErr *sgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}
