package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

// RenameCmd returns the rename command.
func RenameCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rename", flag.ContinueOnError),
		Usage: "rename <title>",
		Short: "Rename the active note",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return notebook.ErrTitleRequired
			}

			return ws.withSession(ctx, func(s *session.Session) error {
				doc, ok := s.Rename(ctx, title)
				if !ok {
					return notebook.ErrNoActiveDocument
				}

				io.Println("Renamed " + doc.ID + " to " + doc.Title)

				return nil
			})
		},
	}
}
