// Package bootstrap implements the interactive session launcher: ask the
// user for a role, start the chat executable for that role, then wait for
// Enter before exiting.
package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/1ureka/p2pchat-launcher/internal/config"
	"github.com/1ureka/p2pchat-launcher/internal/launcher"
	"github.com/1ureka/p2pchat-launcher/internal/util"
)

// ErrLaunchFailed wraps every failure to start the chat executable.
var ErrLaunchFailed = errors.New("chat executable could not be started")

const (
	title       = "P2P Chat Launcher"
	invalidMsg  = "Invalid choice!"
	pausePrompt = "Press Enter to exit..."
)

// Bootstrapper runs one launcher session. A zero Role means the user is
// asked; a nil Prober skips the preflight check.
type Bootstrapper struct {
	In       io.Reader
	Out      io.Writer
	Launcher launcher.Launcher

	Executable string
	Table      config.Table
	Overrides  config.Overrides
	Role       config.Role
	NoPause    bool
	Prober     Prober
}

// Run executes the session:
//  1. Print the banner
//  2. Read the role choice (unless preselected)
//  3. Launch the chat executable, or report an invalid choice
//  4. Wait for Enter
//
// An invalid choice is not an error. A failed launch still pauses and then
// returns an error wrapping ErrLaunchFailed.
func (b *Bootstrapper) Run(ctx context.Context) error {
	in := bufio.NewReader(b.In)

	fmt.Fprintln(b.Out, pterm.DefaultBox.Sprint(title))
	fmt.Fprintln(b.Out)

	role := b.Role
	if role == "" {
		fmt.Fprint(b.Out, b.prompt())
		choice, err := readLine(ctx, in)
		if err != nil {
			return err
		}
		if r, ok := config.RoleFromChoice(choice); ok {
			role = r
		} else {
			util.LogDebug("rejected menu choice %q", choice)
		}
	}

	var runErr error
	if role == "" {
		fmt.Fprintln(b.Out, invalidMsg)
	} else {
		runErr = b.start(ctx, role)
	}

	if b.NoPause {
		return runErr
	}
	fmt.Fprintln(b.Out)
	fmt.Fprint(b.Out, pausePrompt)
	if _, err := readLine(ctx, in); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// start builds the launch configuration for role and hands it to the
// launcher. It returns as soon as the launcher does.
func (b *Bootstrapper) start(ctx context.Context, role config.Role) error {
	table := b.Table
	if table == nil {
		table = config.DefaultTable()
	}

	base, err := table.For(role)
	if err != nil {
		return err
	}
	cfg := b.Overrides.Apply(base)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(b.Out, "Cannot start %s: %v\n", cfg.Nickname, err)
		return err
	}

	if b.Prober != nil {
		if err := b.Prober.Probe(ctx, cfg); err != nil {
			util.LogWarning("%v", err)
		}
	}

	fmt.Fprintln(b.Out)
	fmt.Fprintln(b.Out, startingLine(cfg))

	cmd := launcher.Command{Path: b.Executable, Args: cfg.Args()}
	util.LogDebug("launching %s", cmd)
	if err := b.Launcher.Launch(ctx, cmd); err != nil {
		util.LogError("failed to start %s: %v", cfg.Nickname, err)
		fmt.Fprintf(b.Out, "Failed to start %s: %v\n", cfg.Nickname, err)
		return fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}

	util.LogSuccess("%s launched as %s", cmd.Path, cfg.Role)
	fmt.Fprintln(b.Out, startedLine(cfg))
	return nil
}

// prompt renders the role menu, e.g.
// "Start as (1) Alice [listener] or (2) Bob [connector]? ".
func (b *Bootstrapper) prompt() string {
	table := b.Table
	if table == nil {
		table = config.DefaultTable()
	}

	opts := make([]string, 0, len(config.Roles))
	for _, r := range config.Roles {
		opts = append(opts, fmt.Sprintf("(%s) %s [%s]", r.MenuKey(), table[r].Nickname, r))
	}
	return "Start as " + strings.Join(opts, " or ") + "? "
}

func startingLine(cfg config.LaunchConfig) string {
	if cfg.Connect != "" {
		return fmt.Sprintf("Starting %s connecting to %s...", cfg.Nickname, cfg.Connect)
	}
	return fmt.Sprintf("Starting %s on port %d...", cfg.Nickname, cfg.Port)
}

func startedLine(cfg config.LaunchConfig) string {
	if cfg.Connect != "" {
		return fmt.Sprintf("%s started, connecting to %s.", cfg.Nickname, cfg.Connect)
	}
	return fmt.Sprintf("%s started, listening on port %d.", cfg.Nickname, cfg.Port)
}

// readLine reads one line, stripping only the line terminator. EOF before
// any data yields an empty line. A cancelled ctx abandons the read.
func readLine(ctx context.Context, r *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		ch <- result{line, err}
	}()

	select {
	case res := <-ch:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
