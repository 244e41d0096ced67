// P2P chat launcher — CLI entry point.
//
// Asks whether to start the chat as the listener (Alice) or the connector
// (Bob), spawns the external chat executable with the matching flags, and
// waits for Enter before exiting. The chat process keeps running on its own.
//
// It can be driven interactively (no flags) or non-interactively with
// --role, optionally tuned with --port, --connect, --nickname and --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/1ureka/p2pchat-launcher/internal/bootstrap"
	"github.com/1ureka/p2pchat-launcher/internal/config"
	"github.com/1ureka/p2pchat-launcher/internal/launcher"
	"github.com/1ureka/p2pchat-launcher/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Logs go to stderr, prompts to stdout; either may be redirected.
	util.ConfigureTerminal(os.Stdout, os.Stderr)

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, bootstrap.ErrLaunchFailed) {
		util.LogError("%v", err)
	}
	os.Exit(ExitCode(err))
}

// ExitCode maps the result of run to the process exit status. A finished
// session, including an invalid menu choice, is 0; any error is 1.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// options holds the parsed command line.
type options struct {
	role       string
	exe        string
	exeSet     bool
	configPath string
	noPause    bool
	dryRun     bool
	debug      bool
	version    bool
	overrides  config.Overrides
}

// parseFlags parses args. A nil options with a nil error means the
// invocation was fully handled (help was printed).
func parseFlags(args []string, out io.Writer) (*options, error) {
	var opts options

	fs := pflag.NewFlagSet("p2pchat-launcher", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.role, "role", "", "Role to start without prompting: listener (alice) or connector (bob)")
	fs.StringVar(&opts.exe, "exe", launcher.DefaultExecutable(), "Path to the chat executable (env "+launcher.ExecutableEnv+")")
	fs.StringVar(&opts.configPath, "config", "", "Profile file (.yaml, .jsonc or .hcl) overriding the role defaults")
	port := fs.Int("port", 0, "Override the local port of the chosen role")
	peer := fs.String("connect", "", "Override the peer address of the chosen role")
	nick := fs.String("nickname", "", "Override the nickname of the chosen role")
	fs.BoolVar(&opts.noPause, "no-pause", false, "Exit without waiting for Enter")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print the chat command line instead of starting it")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if fs.Changed("port") {
		opts.overrides.Port = port
	}
	if fs.Changed("connect") {
		opts.overrides.Connect = peer
	}
	if fs.Changed("nickname") {
		opts.overrides.Nickname = nick
	}
	opts.exeSet = fs.Changed("exe")
	return &opts, nil
}

// run wires the flags into a Bootstrapper and executes one session.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	opts, err := parseFlags(args, out)
	if err != nil || opts == nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(out, "p2pchat-launcher %s\n", version)
		return nil
	}
	if opts.debug {
		util.EnableDebug()
	}

	b := &bootstrap.Bootstrapper{
		In:         in,
		Out:        out,
		Executable: opts.exe,
		Table:      config.DefaultTable(),
		Overrides:  opts.overrides,
		NoPause:    opts.noPause,
		Prober:     bootstrap.PortProber{},
	}

	if opts.configPath != "" {
		f, err := config.LoadFile(opts.configPath)
		if err != nil {
			return err
		}
		if b.Table, err = f.Apply(b.Table); err != nil {
			return err
		}
		// Flag and environment beat the file.
		if f.Executable != "" && !opts.exeSet && os.Getenv(launcher.ExecutableEnv) == "" {
			b.Executable = f.Executable
		}
		util.LogInfo("loaded profile file %s", opts.configPath)
	}

	if opts.role != "" {
		if b.Role, err = config.ParseRole(opts.role); err != nil {
			return err
		}
	}

	if opts.dryRun {
		b.Launcher = &launcher.DryRunLauncher{Out: out}
		b.Prober = nil
	} else {
		b.Launcher = launcher.NewExecLauncher()
	}

	return b.Run(ctx)
}
