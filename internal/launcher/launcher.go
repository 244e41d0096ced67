// Package launcher starts the external chat executable. Launching is
// fire-and-forget: once the process is running the launcher lets go of it.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/1ureka/p2pchat-launcher/internal/util"
)

// ExecutableEnv overrides the default chat executable path.
const ExecutableEnv = "P2PCHAT_EXE"

// ErrNoExecutable is returned when a Command has an empty Path.
var ErrNoExecutable = errors.New("no chat executable configured")

// Command is a single launch request.
type Command struct {
	Path string
	Args []string
}

// String renders c as a shell-style command line.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Path))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

// Launcher starts a process and returns without waiting for it to exit.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) error
}

// DefaultExecutable returns the chat executable path: $P2PCHAT_EXE when
// set, otherwise the cargo release build output.
func DefaultExecutable() string {
	if p := os.Getenv(ExecutableEnv); p != "" {
		return p
	}
	name := "rust-p2p-chat"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join("target", "release", name)
}

// ExecLauncher starts real processes. The child inherits the launcher's
// standard streams so the chat session runs in the same terminal.
type ExecLauncher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecLauncher returns an ExecLauncher wired to the process's own
// standard streams.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Launch starts cmd and releases it. The returned error only reports
// failures to start; the child's exit status is never observed.
func (l *ExecLauncher) Launch(ctx context.Context, cmd Command) error {
	if cmd.Path == "" {
		return ErrNoExecutable
	}

	path, err := Resolve(cmd.Path)
	if err != nil {
		return err
	}

	if digest, err := util.HashFile(path); err == nil {
		util.LogDebug("executable %s (blake3 %s)", path, util.ShortDigest(digest))
	} else {
		util.LogDebug("could not fingerprint executable: %v", err)
	}

	// Not exec.CommandContext: the chat must outlive the launcher's context.
	c := exec.Command(path, cmd.Args...)
	c.Stdin = l.Stdin
	c.Stdout = l.Stdout
	c.Stderr = l.Stderr

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", path, err)
	}
	util.LogDebug("started pid %d: %s", c.Process.Pid, cmd)

	// Reap the child if it exits while the launcher is still alive.
	go func() { _ = c.Wait() }()
	return nil
}

// Resolve finds the executable at p. Paths with a separator are checked
// as-is; bare names are searched in PATH.
func Resolve(p string) (string, error) {
	path, err := exec.LookPath(p)
	if err != nil {
		return "", fmt.Errorf("chat executable %q: %w", p, err)
	}
	return path, nil
}

// DryRunLauncher prints the command line instead of starting anything.
type DryRunLauncher struct {
	Out io.Writer
}

// Launch writes cmd to Out as one shell-quoted line.
func (l *DryRunLauncher) Launch(_ context.Context, cmd Command) error {
	_, err := fmt.Fprintln(l.Out, cmd.String())
	return err
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
