package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, ws.cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg notebook.Config) error {
	formatted, err := notebook.FormatConfig(cfg)
	if err != nil {
		return err
	}

	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("notebook_dir=" + cfg.NotebookDirAbs)
	io.Println("")
	io.Println(formatted)
	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
