package cli

import (
	"bufio"
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

// RmCmd returns the rm command.
func RmCmd(ws *workspace) *Command {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.BoolP("force", "f", false, "Delete without asking")

	return &Command{
		Flags: fs,
		Usage: "rm [flags]",
		Short: "Delete the active note",
		Long: `Delete the active note after confirmation. The first remaining note
becomes active.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			force, _ := fs.GetBool("force")

			return execRm(ctx, io, ws, force)
		},
	}
}

func execRm(ctx context.Context, io *IO, ws *workspace, force bool) error {
	return ws.withSession(ctx, func(s *session.Session) error {
		view := s.View()
		if view.Empty {
			return notebook.ErrNoActiveDocument
		}

		if !force {
			if io.In() == nil {
				io.Warn("not deleted", "no confirmation input, pass -f to delete without asking")
				io.Println("Aborted")

				return nil
			}

			if !confirm(io, "Delete "+view.Title+" ("+view.ID+")? [y/N] ") {
				io.Println("Aborted")

				return nil
			}
		}

		doc, ok := s.Delete(ctx)
		if !ok {
			return notebook.ErrNoActiveDocument
		}

		io.Println("Deleted " + doc.ID + " (" + doc.Title + ")")

		return nil
	})
}

// confirm prints prompt and reads one answer line from stdin.
func confirm(io *IO, prompt string) bool {
	io.Printf("%s", prompt)

	line, _ := bufio.NewReader(io.In()).ReadString('\n')
	io.Println()

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
