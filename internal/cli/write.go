package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

var errNoContent = errors.New("no content: pass --content or pipe the body on stdin")

// WriteCmd returns the write command.
func WriteCmd(ws *workspace) *Command {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	fs.StringP("content", "m", "", "New markdown body")

	return &Command{
		Flags: fs,
		Usage: "write [flags]",
		Short: "Replace the active note's body",
		Long: `Replace the active note's markdown body with --content, or with stdin
when --content is not given. The note is saved immediately.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execWrite(ctx, o, ws, fs)
		},
	}
}

func execWrite(ctx context.Context, o *IO, ws *workspace, fs *flag.FlagSet) error {
	body, _ := fs.GetString("content")

	if !fs.Changed("content") {
		if o.In() == nil {
			return errNoContent
		}

		data, err := io.ReadAll(o.In())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		body = string(data)
	}

	return ws.withSession(ctx, func(s *session.Session) error {
		id := s.ActiveID()
		if id == "" {
			return notebook.ErrNoActiveDocument
		}

		s.Input(ctx, body)
		s.Save(ctx)

		o.Println("Saved " + id)

		return nil
	})
}
