package cli

import (
	"context"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/render"
	"github.com/calvinalkan/notebook/internal/session"
)

// noSelection is printed by commands that need an active note when there is none.
const noSelection = "No file selected. Create a new note."

// ShowCmd returns the show command.
func ShowCmd(ws *workspace) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.Bool("preview", false, "Append the rendered HTML preview")
	fs.Bool("html", false, "Print only the rendered HTML preview")

	return &Command{
		Flags: fs,
		Usage: "show [flags]",
		Short: "Show the active note",
		Long:  "Print the active note's metadata and markdown body.",
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			withPreview, _ := fs.GetBool("preview")
			htmlOnly, _ := fs.GetBool("html")

			return execShow(ctx, io, ws, withPreview, htmlOnly)
		},
	}
}

func execShow(ctx context.Context, io *IO, ws *workspace, withPreview, htmlOnly bool) error {
	return ws.withSession(ctx, func(s *session.Session) error {
		view := s.View()

		if htmlOnly {
			io.Println(view.Preview)

			return nil
		}

		if view.Empty {
			io.Println(noSelection)

			return nil
		}

		doc, err := s.Lookup(view.ID)
		if err != nil {
			return err
		}

		io.Println("id=" + doc.ID)
		io.Println("title=" + doc.Title)
		io.Println("created=" + doc.CreatedAt.Format(time.RFC3339))
		io.Println("updated=" + doc.UpdatedAt.Format(time.RFC3339))
		io.Println("")
		io.Println(view.Body)

		if withPreview {
			io.Println("")
			io.Println("# preview")
			io.Println(view.Preview)
		}

		return nil
	})
}

// PreviewCmd returns the preview command.
func PreviewCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("preview", flag.ContinueOnError),
		Usage: "preview",
		Short: "Print the active note as sanitized HTML",
		Long: `Render the active note's markdown (GitHub flavored, line breaks kept) and
print the sanitized HTML. Prints a placeholder when no note is selected or
rendering fails.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return ws.withSession(ctx, func(s *session.Session) error {
				view := s.View()
				if view.Empty {
					io.Println(render.EmptyState)

					return nil
				}

				io.Println(view.Preview)

				return nil
			})
		},
	}
}
