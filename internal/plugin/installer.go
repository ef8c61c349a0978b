package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sightglass-data/sgtool/internal/logger"
)

// Installer ensures a plugin's declared dependencies are present on the host.
// Implementations must be idempotent: installing an already-satisfied
// requirement is a no-op.
type Installer interface {
	// Installed reports whether a package satisfying name is already present.
	Installed(ctx context.Context, name string) (bool, error)

	// Install installs the package described by the constraint spec, passing
	// any extra installer arguments through verbatim.
	Install(ctx context.Context, spec string, args ...string) error
}

// ExecInstaller shells out to the host package manager. Probe is the command
// prefix used to test presence (exit zero means installed); an empty Probe
// falls back to a PATH lookup of the bare name. Argv is the install command
// prefix the spec and extra arguments are appended to.
type ExecInstaller struct {
	Probe []string
	Argv  []string
	Log   *logger.Logger
}

var _ Installer = (*ExecInstaller)(nil)

// NewAptInstaller returns the installer used on Debian-family hosts.
func NewAptInstaller(log *logger.Logger) *ExecInstaller {
	return &ExecInstaller{
		Probe: []string{"dpkg-query", "-W"},
		Argv:  []string{"apt-get", "install", "-y"},
		Log:   log,
	}
}

func (i *ExecInstaller) Installed(ctx context.Context, name string) (bool, error) {
	if len(i.Probe) == 0 {
		_, err := exec.LookPath(name)
		return err == nil, nil
	}

	argv := append(append([]string{}, i.Probe...), name)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s: %w", name, err)
	}
	return true, nil
}

func (i *ExecInstaller) Install(ctx context.Context, spec string, args ...string) error {
	i.Log.Info(fmt.Sprintf("installing dependency %s", spec))

	argv := append(append([]string{}, i.Argv...), spec)
	argv = append(argv, args...)
	return runStreaming(ctx, argv)
}

// runStreaming executes argv, streaming output to the parent process while
// buffering it so failures can carry the captured output.
func runStreaming(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		if output != "" {
			return fmt.Errorf("%w: %s", err, output)
		}
		return err
	}
	return nil
}
