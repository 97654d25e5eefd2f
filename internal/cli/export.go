package cli

import (
	"context"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/session"
)

// exportPerm is the mode of exported files.
const exportPerm = 0o644

// ExportCmd returns the export command.
func ExportCmd(ws *workspace) *Command {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	flags.StringP("output", "o", "", "Directory to write into (default: working directory)")
	flags.Bool("stdout", false, "Write the body to stdout instead of a file")

	return &Command{
		Flags: flags,
		Usage: "export [flags]",
		Short: "Export the active note as <title>.md",
		Long: `Write the active note's raw markdown body to "<title>.md", prints the path.

The body is written exactly as stored. Path separators in the title are
replaced by "-"; a blank title exports as "note.md".`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			outDir, _ := flags.GetString("output")
			toStdout, _ := flags.GetBool("stdout")

			return execExport(ctx, io, ws, outDir, toStdout)
		},
	}
}

func execExport(ctx context.Context, io *IO, ws *workspace, outDir string, toStdout bool) error {
	return ws.withSession(ctx, func(s *session.Session) error {
		exp, ok := s.Export(ctx)
		if !ok {
			io.Println(noSelection)

			return nil
		}

		if toStdout {
			io.Printf("%s", exp.Body)

			return nil
		}

		dir := outDir
		if dir == "" {
			dir = ws.cfg.EffectiveCwd
		} else if !filepath.IsAbs(dir) {
			dir = filepath.Join(ws.cfg.EffectiveCwd, dir)
		}

		err := ws.fs.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("export: create dir: %w", err)
		}

		path := filepath.Join(dir, exp.Name)

		err = ws.fs.WriteFileAtomic(path, []byte(exp.Body), exportPerm)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		io.Println(path)

		return nil
	})
}
