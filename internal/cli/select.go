package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

// SelectCmd returns the select command.
func SelectCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("select", flag.ContinueOnError),
		Usage: "select <id>",
		Short: "Make a note active",
		Long: `Make the note with the given ID active. A unique ID prefix is enough.

An unknown ID clears the selection and fails.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return notebook.ErrIDRequired
			}

			return execSelect(ctx, io, ws, args[0])
		},
	}
}

func execSelect(ctx context.Context, io *IO, ws *workspace, ref string) error {
	return ws.withSession(ctx, func(s *session.Session) error {
		doc, err := s.Lookup(ref)
		if errors.Is(err, notebook.ErrDocumentNotFound) {
			s.Select(ctx, ref)

			return err
		}

		if err != nil {
			return err
		}

		s.Select(ctx, doc.ID)
		io.Println("Selected " + doc.ID + " " + doc.Title)

		return nil
	})
}
