package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeWarehouseDefinition emits a sqlite definition file declaring the
// widgets model used by the pipe tests.
func writeWarehouseDefinition(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "warehouse.toml")
	writeTestFile(t, path, fmt.Sprintf(`[configuration]
filepath = %q
load_strategy = "UPSERT"

[[configuration.models]]
name = "widgets"

[[configuration.models.columns]]
name = "id"
type = "integer"
primary_key = true

[[configuration.models.columns]]
name = "name"
type = "text"
`, filepath.Join(dir, "warehouse.db")))

	return path
}

func TestPipeCommand_MovesCSVIntoJSON(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeTestFile(t, filepath.Join(srcDir, "widgets.csv"), "id,name\n1,anvil\n2,mallet\n")

	stdout, err := executeCommand("pipe",
		"csv://directory="+srcDir,
		"json://directory="+dstDir,
		"widgets")
	require.NoError(t, err)

	require.Contains(t, stdout, "sgtool pipe")
	require.Contains(t, stdout, "widgets")
	require.Contains(t, stdout, "2 rows")
	require.Contains(t, stdout, "nothing to commit")
	require.Contains(t, stdout, "Run finished successfully")

	payload, err := os.ReadFile(filepath.Join(dstDir, "widgets.json"))
	require.NoError(t, err)
	require.Contains(t, string(payload), "anvil")
	require.Contains(t, string(payload), "mallet")
}

func TestPipeCommand_RoundTripsThroughSqlite(t *testing.T) {
	work := t.TempDir()
	srcDir := filepath.Join(work, "src")
	outDir := filepath.Join(work, "out")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	writeTestFile(t, filepath.Join(srcDir, "widgets.csv"), "id,name\n1,anvil\n2,mallet\n")
	definition := writeWarehouseDefinition(t, work)

	stdout, err := executeCommand("pipe", "csv://directory="+srcDir, "sqlite://"+definition, "widgets")
	require.NoError(t, err)
	require.Contains(t, stdout, "committed 1 store")
	require.FileExists(t, filepath.Join(work, "warehouse.db"))

	stdout, err = executeCommand("pipe", "sqlite://"+definition, "json://directory="+outDir, "widgets")
	require.NoError(t, err)
	require.Contains(t, stdout, "committed 1 store")
	require.Contains(t, stdout, "2 rows")

	payload, err := os.ReadFile(filepath.Join(outDir, "widgets.json"))
	require.NoError(t, err)
	require.Contains(t, string(payload), "anvil")
	require.Contains(t, string(payload), "mallet")
}

func TestPipeCommand_RollsBackTransactionalTargetOnFailure(t *testing.T) {
	work := t.TempDir()
	srcDir := filepath.Join(work, "empty")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	definition := writeWarehouseDefinition(t, work)

	stdout, err := executeCommand("pipe", "csv://directory="+srcDir, "sqlite://"+definition, "widgets")
	require.Error(t, err)
	require.Contains(t, err.Error(), "transfer widgets")
	require.Contains(t, stdout, "rolled back 1 store")
	require.Contains(t, stdout, "Run finished with 1 failed")
}

func TestPipeCommand_RejectsEmptyDirective(t *testing.T) {
	_, err := executeCommand("pipe", "csv://directory=.", "json://directory=.", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "directives cannot be empty")
}

func TestPipeCommand_RejectsMalformedDefinitions(t *testing.T) {
	_, err := executeCommand("pipe", "no-separator-here", "json://directory=.", "widgets")
	require.Error(t, err)

	var parseErr *sgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestPipeCommand_UnknownSyncerFailsResolution(t *testing.T) {
	_, err := executeCommand("pipe", "oracle://", "json://directory=.", "widgets")
	require.Error(t, err)

	var resErr *sgerrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "oracle", resErr.Plugin)
}
