package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

const defaultLimit = 100

// LsCmd returns the ls command.
func LsCmd(ws *workspace) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.Int("limit", defaultLimit, "Maximum notes to show (0 = all)")
	fs.Bool("json", false, "Print notes as JSON")

	return &Command{
		Flags: fs,
		Usage: "ls [query] [flags]",
		Short: "List notes",
		Long: `List notes, newest first. The active note is marked with "*".

With a query, only notes whose title or body contains it (ignoring case)
are shown.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execLs(ctx, io, ws, fs, args)
		},
	}
}

// listEntry is the JSON form of a listed note.
type listEntry struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Active  bool      `json:"active"`
}

func execLs(ctx context.Context, io *IO, ws *workspace, fs *flag.FlagSet, args []string) error {
	limit, _ := fs.GetInt("limit")
	if limit < 0 {
		return errors.New("--limit must be non-negative")
	}

	asJSON, _ := fs.GetBool("json")
	query := strings.Join(args, " ")

	return ws.withSession(ctx, func(s *session.Session) error {
		docs := s.List(query)
		if limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}

		activeID := s.ActiveID()

		if asJSON {
			return printListJSON(io, docs, activeID)
		}

		if len(docs) == 0 {
			if query != "" {
				io.Printf("No notes match %q\n", query)
			} else {
				io.Println("No notes")
			}

			return nil
		}

		io.Println(renderList(docs, activeID, time.Now()))

		return nil
	})
}

func printListJSON(io *IO, docs []notebook.Document, activeID string) error {
	entries := make([]listEntry, len(docs))
	for i, d := range docs {
		entries[i] = listEntry{
			ID:      d.ID,
			Title:   d.Title,
			Created: d.CreatedAt,
			Updated: d.UpdatedAt,
			Active:  d.ID == activeID,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	io.Println(string(data))

	return nil
}

// renderList formats docs as a borderless table with relative update times.
func renderList(docs []notebook.Document, activeID string, now time.Time) string {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	tw.AppendHeader(table.Row{"", "ID", "TITLE", "UPDATED"})

	for _, d := range docs {
		marker := ""
		if d.ID == activeID {
			marker = "*"
		}

		tw.AppendRow(table.Row{
			marker,
			d.ID,
			d.Title,
			humanize.RelTime(d.UpdatedAt, now, "ago", "from now"),
		})
	}

	return tw.Render()
}
