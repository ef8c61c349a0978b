package plugin

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sightglass-data/sgtool/internal/logger"
)

func installerLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)
	return log, buf
}

func TestExecInstaller_InstalledReportsProbeExit(t *testing.T) {
	t.Parallel()

	log, _ := installerLogger(t)

	present := &ExecInstaller{Probe: []string{"sh", "-c", "exit 0"}, Log: log}
	installed, err := present.Installed(context.Background(), "git")
	require.NoError(t, err)
	require.True(t, installed)

	absent := &ExecInstaller{Probe: []string{"sh", "-c", "exit 1"}, Log: log}
	installed, err = absent.Installed(context.Background(), "git")
	require.NoError(t, err)
	require.False(t, installed)
}

func TestExecInstaller_InstalledFailsWhenProbeCannotRun(t *testing.T) {
	t.Parallel()

	log, _ := installerLogger(t)
	installer := &ExecInstaller{Probe: []string{"sgtool-no-such-probe-binary"}, Log: log}

	_, err := installer.Installed(context.Background(), "git")
	require.Error(t, err)
	require.Contains(t, err.Error(), "probe git")
}

func TestExecInstaller_EmptyProbeFallsBackToPathLookup(t *testing.T) {
	t.Parallel()

	log, _ := installerLogger(t)
	installer := &ExecInstaller{Log: log}

	installed, err := installer.Installed(context.Background(), "sh")
	require.NoError(t, err)
	require.True(t, installed)

	installed, err = installer.Installed(context.Background(), "sgtool-no-such-dependency")
	require.NoError(t, err)
	require.False(t, installed)
}

func TestExecInstaller_InstallRunsCommandWithSpec(t *testing.T) {
	t.Parallel()

	log, logOut := installerLogger(t)
	installer := &ExecInstaller{Argv: []string{"true"}, Log: log}

	require.NoError(t, installer.Install(context.Background(), "widgetdb>=2.0"))
	require.Contains(t, logOut.String(), "installing dependency widgetdb>=2.0")
}

func TestExecInstaller_InstallFailureCarriesCapturedOutput(t *testing.T) {
	t.Parallel()

	log, _ := installerLogger(t)
	installer := &ExecInstaller{Argv: []string{"sh", "-c", "echo unable to locate package >&2; exit 3"}, Log: log}

	err := installer.Install(context.Background(), "widgetdb>=2.0")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to locate package")
}
