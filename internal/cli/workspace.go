package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/fs"
	"github.com/calvinalkan/notebook/internal/logging"
	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/session"
	"github.com/calvinalkan/notebook/internal/store"
)

// lockTimeout bounds how long a command waits for another nb process.
const lockTimeout = 2 * time.Second

// lockFileName is the flock target inside the notebook directory.
const lockFileName = ".lock"

// workspace carries what every command needs: resolved config, environment
// and the shared filesystem and logger.
type workspace struct {
	cfg notebook.Config
	env map[string]string
	fs  fs.FS
	log *zap.Logger
}

// open locks the notebook directory and starts a session on it.
// The returned close function commits pending drafts and releases the lock.
func (w *workspace) open(ctx context.Context) (*session.Session, func(), error) {
	dir := w.cfg.NotebookDirAbs

	lock, err := fs.NewLocker(w.fs).LockWithTimeout(filepath.Join(dir, lockFileName), lockTimeout)
	if err != nil {
		if errors.Is(err, fs.ErrWouldBlock) {
			return nil, nil, fmt.Errorf("%w: %s", notebook.ErrNotebookLocked, dir)
		}

		return nil, nil, fmt.Errorf("lock notebook: %w", err)
	}

	slot, err := store.OpenSlot(ctx, w.fs, w.cfg.Backend, dir)
	if err != nil {
		_ = lock.Close()

		return nil, nil, err
	}

	log := w.log.With(zap.String(logging.FieldBackend, w.cfg.Backend), zap.String(logging.FieldPath, dir))
	st := store.New(slot, log)

	nb, err := notebook.Open(ctx, st, notebook.WithLogger(log))
	if err != nil {
		_ = st.Close()
		_ = lock.Close()

		return nil, nil, err
	}

	s := session.New(nb, session.Config{
		Delay: w.cfg.AutosaveDelay(),
		Log:   log,
	})

	closeFn := func() {
		s.Close(context.WithoutCancel(ctx))

		closeErr := st.Close()
		if closeErr != nil {
			log.Warn("closing store failed", zap.Error(closeErr))
		}

		_ = lock.Close()
	}

	return s, closeFn, nil
}

// withSession runs fn on an open session and closes it afterwards.
func (w *workspace) withSession(ctx context.Context, fn func(s *session.Session) error) error {
	s, closeFn, err := w.open(ctx)
	if err != nil {
		return err
	}

	defer closeFn()

	return fn(s)
}
