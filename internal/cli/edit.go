package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/radovskyb/watcher"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/logging"
	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
)

// editPollInterval is how often the draft file is checked for writes.
const editPollInterval = 100 * time.Millisecond

// EditCmd returns the edit command.
func EditCmd(ws *workspace) *Command {
	return &Command{
		Flags: flag.NewFlagSet("edit", flag.ContinueOnError),
		Usage: "edit",
		Short: "Edit the active note in $EDITOR",
		Long: `Open the active note's body in an external editor.

Every write to the file while the editor is open is autosaved after a short
pause. Closing the editor saves immediately.

Editor priority: config "editor", $EDITOR, vi, nano.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return execEdit(ctx, io, ws)
		},
	}
}

func execEdit(ctx context.Context, io *IO, ws *workspace) error {
	editor, err := resolveEditor(ws.cfg, ws.env)
	if err != nil {
		return err
	}

	return ws.withSession(ctx, func(s *session.Session) error {
		view := s.View()
		if view.Empty {
			return notebook.ErrNoActiveDocument
		}

		tmp, err := os.CreateTemp(ws.env["TMPDIR"], "nb-"+view.ID+"-*.md")
		if err != nil {
			return fmt.Errorf("creating draft file: %w", err)
		}

		path := tmp.Name()
		defer func() { _ = os.Remove(path) }()

		_, err = tmp.WriteString(view.Body)
		closeErr := tmp.Close()

		if err != nil || closeErr != nil {
			return fmt.Errorf("writing draft file: %w", errors.Join(err, closeErr))
		}

		stop, err := watchDraft(ctx, s, path, ws.log.With(zap.String(logging.FieldDocID, view.ID)))
		if err != nil {
			return err
		}

		editErr := runEditor(ctx, editor, path)

		stop()

		// The final file content wins over anything the watcher saw.
		final, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading draft file: %w", err)
		}

		s.Input(ctx, string(final))

		if s.Save(ctx) {
			io.Println("Saved " + view.ID)
		} else {
			io.Println("No changes")
		}

		return editErr
	})
}

// watchDraft feeds every write to path into the session as an edit.
// The returned stop function closes the watcher and waits for it to drain.
func watchDraft(ctx context.Context, s *session.Session, path string, log *zap.Logger) (func(), error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	err := w.Add(path)
	if err != nil {
		return nil, fmt.Errorf("watching draft file: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for {
			select {
			case <-w.Event:
				data, readErr := os.ReadFile(path)
				if readErr != nil {
					log.Warn("reading draft file failed", zap.Error(readErr))

					continue
				}

				s.Input(ctx, string(data))
			case watchErr := <-w.Error:
				log.Warn("watching draft file failed", zap.Error(watchErr))
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		startErr := w.Start(editPollInterval)
		if startErr != nil {
			log.Warn("starting draft watcher failed", zap.Error(startErr))
		}
	}()

	w.Wait()

	var once sync.Once

	return func() {
		once.Do(func() {
			w.Close()
			wg.Wait()
		})
	}, nil
}
