package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/notebook/internal/render"
	"github.com/calvinalkan/notebook/internal/session"
)

const (
	shellPrompt     = "nb> "
	bodyPrompt      = "... "
	historyFileName = ".nb_history"
)

var shellCommands = []string{
	"help", "ls", "find", "show", "preview", "select", "new", ":n", "rename",
	"rm", "export", "body", "append", "save", ":w", "exit", "quit",
}

// lineReader is the prompt source of the shell: liner on a terminal, a plain
// line scanner otherwise.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// ShellCmd returns the shell command.
func ShellCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive notebook session",
		Long: `Start an interactive session on the notebook.

"body" replaces the active note's body line by line and "append" extends it;
every line is autosaved after a short pause. A line with a single "." leaves
line mode. ":w" saves immediately, ":n" creates a new note. Type "help" for
all commands.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return ws.withSession(ctx, func(s *session.Session) error {
				return runShell(ctx, io, ws, s)
			})
		},
	}
}

type shell struct {
	ws  *workspace
	io  *IO
	s   *session.Session
	in  lineReader
	ctx context.Context
}

func runShell(ctx context.Context, o *IO, ws *workspace, s *session.Session) error {
	sh := &shell{ws: ws, io: o, s: s, ctx: ctx}

	if o.In() == os.Stdin {
		state := liner.NewLiner()
		defer func() { _ = state.Close() }()

		state.SetCtrlCAborts(true)
		state.SetCompleter(completeShell)

		history := sh.historyPath()
		if f, err := os.Open(history); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}

		defer sh.saveHistory(state, history)

		sh.in = state
	} else {
		sh.in = newScanReader(o.In(), o.Out())
	}

	o.Println("nb shell - type 'help' for commands")

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := sh.in.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println("Bye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sh.in.AppendHistory(line)

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if cmd == "exit" || cmd == "quit" || cmd == "q" {
			o.Println("Bye!")

			return nil
		}

		sh.dispatch(cmd, rest)
	}
}

func (sh *shell) dispatch(cmd, rest string) {
	ctx := sh.ctx

	switch cmd {
	case "help", "?":
		sh.printHelp()
	case "ls", "find":
		docs := sh.s.List(rest)
		if len(docs) == 0 {
			sh.io.Println("No notes")

			return
		}

		sh.io.Println(renderList(docs, sh.s.ActiveID(), time.Now()))
	case "show":
		view := sh.s.View()
		if view.Empty {
			sh.io.Println(noSelection)

			return
		}

		sh.io.Println("# " + view.Title + " (" + view.ID + ")")
		sh.io.Println(view.Body)
	case "preview":
		sh.io.Println(sh.s.View().Preview)
	case "select":
		sh.cmdSelect(rest)
	case "new", ":n":
		doc, err := sh.s.Create(ctx, rest, "")
		if err != nil {
			sh.io.Println("error:", err)

			return
		}

		sh.io.Println("Created " + doc.ID + " " + doc.Title)
	case "rename":
		doc, ok := sh.s.Rename(ctx, rest)
		if !ok {
			sh.io.Println(noSelection)

			return
		}

		sh.io.Println("Renamed " + doc.ID + " to " + doc.Title)
	case "rm":
		sh.cmdRm()
	case "export":
		sh.cmdExport(rest)
	case "body":
		sh.lineMode("")
	case "append":
		view := sh.s.View()
		if view.Empty {
			sh.io.Println(noSelection)

			return
		}

		sh.lineMode(view.Body)
	case "save", ":w":
		sh.save()
	default:
		sh.io.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
}

func (sh *shell) cmdSelect(ref string) {
	doc, err := sh.s.Lookup(ref)
	if err != nil {
		sh.io.Println("error:", err)

		return
	}

	sh.s.Select(sh.ctx, doc.ID)
	sh.io.Println("Selected " + doc.ID + " " + doc.Title)
}

func (sh *shell) cmdRm() {
	view := sh.s.View()
	if view.Empty {
		sh.io.Println(noSelection)

		return
	}

	answer, err := sh.in.Prompt("Delete " + view.Title + "? (yes/no): ")
	if err != nil || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		sh.io.Println("Aborted")

		return
	}

	doc, ok := sh.s.Delete(sh.ctx)
	if ok {
		sh.io.Println("Deleted " + doc.ID + " (" + doc.Title + ")")
	}
}

func (sh *shell) cmdExport(dir string) {
	exp, ok := sh.s.Export(sh.ctx)
	if !ok {
		sh.io.Println(noSelection)

		return
	}

	if dir == "" {
		dir = sh.ws.cfg.EffectiveCwd
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(sh.ws.cfg.EffectiveCwd, dir)
	}

	path := filepath.Join(dir, exp.Name)

	err := sh.ws.fs.WriteFileAtomic(path, []byte(exp.Body), exportPerm)
	if err != nil {
		sh.io.Println("error:", err)

		return
	}

	sh.io.Println(path)
}

// lineMode feeds each entered line to the session as an edit of the body,
// starting from initial. A single "." returns to the command prompt.
func (sh *shell) lineMode(initial string) {
	if sh.s.ActiveID() == "" {
		sh.io.Println(noSelection)

		return
	}

	sh.io.Println(`Enter lines; "." to finish, ":w" to save now.`)

	body := initial

	for {
		line, err := sh.in.Prompt(bodyPrompt)
		if err != nil {
			return
		}

		switch line {
		case ".":
			return
		case ":w":
			sh.save()

			continue
		}

		if body != "" {
			body += "\n"
		}

		body += line

		preview := sh.s.Input(sh.ctx, body)
		if preview == render.ErrorPlaceholder {
			sh.io.Println("(preview failed)")
		}
	}
}

func (sh *shell) save() {
	if sh.s.Save(sh.ctx) {
		sh.io.Println("Saved")
	} else {
		sh.io.Println("Nothing to save")
	}
}

func (sh *shell) printHelp() {
	sh.io.Println(`Commands:
  ls [query]        List notes (find <query> is an alias)
  show              Print the active note
  preview           Print the active note as HTML
  select <id>       Make a note active
  new [title]       Create a note (:n)
  rename <title>    Rename the active note
  rm                Delete the active note
  export [dir]      Write the active note to <title>.md
  body              Replace the body line by line
  append            Append lines to the body
  save              Save pending edits now (:w)
  exit              Leave the shell`)
}

func (sh *shell) historyPath() string {
	home := sh.ws.env["HOME"]
	if home == "" {
		return ""
	}

	return filepath.Join(home, historyFileName)
}

func (sh *shell) saveHistory(state *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = state.WriteHistory(f)
		_ = f.Close()
	}
}

func completeShell(line string) []string {
	var out []string

	for _, c := range shellCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}

// scanReader reads prompt answers line by line from a non-terminal input.
type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newScanReader(in io.Reader, out io.Writer) *scanReader {
	if in == nil {
		in = strings.NewReader("")
	}

	return &scanReader{sc: bufio.NewScanner(in), out: out}
}

func (r *scanReader) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(r.out, prompt)

	if !r.sc.Scan() {
		err := r.sc.Err()
		if err == nil {
			err = io.EOF
		}

		return "", err
	}

	return r.sc.Text(), nil
}

func (*scanReader) AppendHistory(string) {}
