package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/fs"
	"github.com/calvinalkan/notebook/internal/logging"
	"github.com/calvinalkan/notebook/internal/notebook"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the command's context;
// long-running commands (edit, shell) commit pending drafts and exit.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	// Parse global flags
	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(out)

		return 0
	}

	// Load and validate config
	cfg, err := notebook.LoadConfig(notebook.LoadConfigInput{
		WorkDirOverride:     flags.workDir,
		ConfigPath:          flags.configPath,
		NotebookDirOverride: flags.notebookDir,
		BackendOverride:     flags.backend,
		Env:                 env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	log, err := logging.New(errOut, cfg.LogLevel)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = log.Sync() }()

	ws := &workspace{cfg: cfg, env: env, fs: fs.NewReal(), log: log}

	name := flags.remaining[0]

	cmd := findCommand(commands(ws), name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut)

		return 1
	}

	ws.log = log.With(zap.String(logging.FieldCommand, name))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	ioCtx := NewIO(stdin, out, errOut)

	code := cmd.Run(ctx, ioCtx, flags.remaining[1:])
	if code != 0 {
		return code
	}

	// Finish handles warnings and exit code
	return ioCtx.Finish()
}

// commands returns every command in help order.
func commands(ws *workspace) []*Command {
	return []*Command{
		NewCmd(ws),
		LsCmd(ws),
		ShowCmd(ws),
		SelectCmd(ws),
		RenameCmd(ws),
		WriteCmd(ws),
		RmCmd(ws),
		ExportCmd(ws),
		PreviewCmd(ws),
		EditCmd(ws),
		ShellCmd(ws),
		PrintConfigCmd(ws),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func printUsage(w io.Writer) {
	fprintln(w, `nb - local markdown notebook

Usage: nb [flags] <command> [args]

Flags:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --dir <path>       Override notebook directory
      --backend <name>   Storage backend: file|sqlite
  -h, --help             Show help

Commands:`)

	for _, c := range commands(&workspace{}) {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Run 'nb <command> --help' for more information on a command.")
}

type globalFlags struct {
	workDir     string
	configPath  string
	notebookDir string
	backend     string
	remaining   []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C<dir> (work directory, attached form)
	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after

		return consumedOne, nil
	}

	valueFlags := []struct {
		names []string
		dst   *string
	}{
		{names: []string{"-C", "--cwd"}, dst: &flags.workDir},
		{names: []string{"-c", "--config"}, dst: &flags.configPath},
		{names: []string{"--dir"}, dst: &flags.notebookDir},
		{names: []string{"--backend"}, dst: &flags.backend},
	}

	for _, vf := range valueFlags {
		for _, name := range vf.names {
			if arg == name {
				if idx+1 >= len(args) {
					return consumedNone, fmt.Errorf("%w: %s", notebook.ErrFlagRequiresArg, arg)
				}

				*vf.dst = args[idx+1]

				return consumedTwo, nil
			}

			if after, ok := strings.CutPrefix(arg, name+"="); ok && strings.HasPrefix(name, "--") {
				*vf.dst = after

				return consumedOne, nil
			}
		}
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", notebook.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
