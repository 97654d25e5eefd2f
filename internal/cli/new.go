package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/session"
)

// NewCmd returns the new command.
func NewCmd(ws *workspace) *Command {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.StringP("content", "m", "", "Initial markdown body")

	return &Command{
		Flags: fs,
		Usage: "new [title] [flags]",
		Short: "Create note and select it, prints ID",
		Long: `Create a new note at the top of the list and make it the active note.
Prints the new note's ID.

An empty title becomes "Untitled".`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execNew(ctx, io, ws, fs, args)
		},
	}
}

func execNew(ctx context.Context, io *IO, ws *workspace, fs *flag.FlagSet, args []string) error {
	title := strings.Join(args, " ")
	content, _ := fs.GetString("content")

	return ws.withSession(ctx, func(s *session.Session) error {
		doc, err := s.Create(ctx, title, content)
		if err != nil {
			return err
		}

		io.Println(doc.ID)

		return nil
	})
}
