package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"

	"github.com/1ureka/p2pchat-launcher/internal/bootstrap"
	"github.com/1ureka/p2pchat-launcher/internal/config"
	"github.com/1ureka/p2pchat-launcher/internal/launcher"
)

func init() {
	pterm.DisableStyling()
}

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(input), &out)
	return out.String(), err
}

func TestRun_DryRunConnector(t *testing.T) {
	t.Setenv(launcher.ExecutableEnv, "chat")

	out, err := runCLI(t, "2\n\n", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "chat --port 8081 --connect localhost:8080 --nickname Bob\n")
	require.Contains(t, out, "Press Enter to exit...")
}

func TestRun_DryRunInvalidChoice(t *testing.T) {
	out, err := runCLI(t, "3\n\n", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "Invalid choice!")
	require.NotContains(t, out, "--port")
}

func TestRun_NonInteractive(t *testing.T) {
	out, err := runCLI(t, "", "--dry-run", "--no-pause", "--role", "Alice", "--exe", "/opt/chat", "--port", "9000")
	require.NoError(t, err)
	require.Contains(t, out, "/opt/chat --port 9000 --nickname Alice\n")
	require.NotContains(t, out, "Start as")
	require.NotContains(t, out, "Press Enter")
}

func TestRun_ConfigFile(t *testing.T) {
	t.Setenv(launcher.ExecutableEnv, "")
	path := filepath.Join(t.TempDir(), "launch.yaml")
	profile := "executable: ./bin/chat\nroles:\n  connector:\n    connect: \"10.0.0.5:8080\"\n"
	require.NoError(t, os.WriteFile(path, []byte(profile), 0600))

	out, err := runCLI(t, "", "--dry-run", "--no-pause", "--role", "connector", "--config", path, "--nickname", "Robert")
	require.NoError(t, err)
	require.Contains(t, out, "./bin/chat --port 8081 --connect 10.0.0.5:8080 --nickname Robert\n")
}

func TestRun_ExeFlagBeatsConfigFile(t *testing.T) {
	t.Setenv(launcher.ExecutableEnv, "")
	path := filepath.Join(t.TempDir(), "launch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("executable: ./bin/chat\n"), 0600))

	out, err := runCLI(t, "", "--dry-run", "--no-pause", "--role", "listener", "--config", path, "--exe", "other")
	require.NoError(t, err)
	require.Contains(t, out, "other --port 8080 --nickname Alice\n")
}

func TestRun_UnknownRole(t *testing.T) {
	_, err := runCLI(t, "", "--role", "carol")
	require.ErrorIs(t, err, config.ErrUnknownRole)
}

func TestRun_MissingConfigFile(t *testing.T) {
	_, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_LaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-chat")
	out, err := runCLI(t, "1\n\n", "--exe", missing)
	require.ErrorIs(t, err, bootstrap.ErrLaunchFailed)
	require.Contains(t, out, "Failed to start Alice")
}

func TestRun_Version(t *testing.T) {
	out, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	require.Equal(t, "p2pchat-launcher dev\n", out)
}

func TestRun_Help(t *testing.T) {
	out, err := runCLI(t, "", "--help")
	require.NoError(t, err, "run() should return a nil error after printing help")
	require.Contains(t, out, "Usage")
	require.Contains(t, out, "--role")
}

func TestRun_UnexpectedArgs(t *testing.T) {
	_, err := runCLI(t, "", "extra")
	require.Error(t, err)
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(bootstrap.ErrLaunchFailed))
	require.Equal(t, 1, ExitCode(config.ErrUnknownRole))
}

// An invalid menu choice still ends the session with status 0.
func TestExitCode_InvalidChoice(t *testing.T) {
	_, err := runCLI(t, "3\n\n", "--dry-run")
	require.Equal(t, 0, ExitCode(err))
}

func TestRun_ListenerRejectsPeerAddress(t *testing.T) {
	out, err := runCLI(t, "", "--dry-run", "--no-pause", "--role", "listener", "--connect", "h:1")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	require.Equal(t, 1, ExitCode(err))
	require.NotContains(t, out, "--connect h:1")
	require.NotContains(t, out, "Starting Alice")
}
