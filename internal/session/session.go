// Package session drives a long-lived editing session on a notebook.
//
// A [Session] owns the [notebook.Notebook] and routes editor events through
// it: each [Session.Input] re-renders the preview immediately and schedules a
// debounced save of the draft. Explicit saves, selection changes, creates,
// deletes and Close commit the pending draft first, so a save always lands on
// the document it was typed into.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/autosave"
	"github.com/calvinalkan/notebook/internal/logging"
	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/render"
)

// Config configures a [Session]. Zero values select the defaults.
type Config struct {
	Renderer render.Renderer
	Delay    time.Duration  // autosave quiet period, default [autosave.DefaultDelay]
	Clock    autosave.Clock // default [autosave.RealClock]
	Log      *zap.Logger
}

// View is what an editor shows for the active document.
type View struct {
	Empty   bool // no document is active
	ID      string
	Title   string
	Body    string // draft body if one is pending
	Preview string // sanitized HTML, or a placeholder
}

type draft struct {
	id   string
	body string
}

// Session serializes user input and autosave callbacks through one mutex.
type Session struct {
	nb       *notebook.Notebook
	renderer render.Renderer
	debounce *autosave.Debouncer
	log      *zap.Logger

	mu    sync.Mutex
	draft *draft
}

// New starts a session on nb.
func New(nb *notebook.Notebook, cfg Config) *Session {
	if nb == nil {
		panic("notebook is nil")
	}

	if cfg.Renderer == nil {
		cfg.Renderer = render.NewMarkdown()
	}

	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	return &Session{
		nb:       nb,
		renderer: cfg.Renderer,
		debounce: autosave.New(cfg.Delay, cfg.Clock),
		log:      cfg.Log,
	}
}

// View returns the editor state for the active document.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.nb.Active()
	if !ok {
		return View{Empty: true, Preview: render.EmptyState}
	}

	body := doc.Content
	if s.draft != nil && s.draft.id == doc.ID {
		body = s.draft.body
	}

	return View{
		ID:      doc.ID,
		Title:   doc.Title,
		Body:    body,
		Preview: render.Preview(s.renderer, body),
	}
}

// Input records body as the active document's draft, schedules the autosave
// and returns the rendered preview. Without an active document Input does
// nothing and returns the empty-state placeholder.
func (s *Session) Input(ctx context.Context, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nb.ActiveID()
	if id == "" {
		return render.EmptyState
	}

	if s.draft != nil && s.draft.id != id {
		s.commitLocked(ctx)
	}

	s.draft = &draft{id: id, body: body}

	saveCtx := context.WithoutCancel(ctx)
	s.debounce.Trigger(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.commitLocked(saveCtx)
	})

	return render.Preview(s.renderer, body)
}

// Pending reports whether a draft is waiting to be saved.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft != nil
}

// Save commits the pending draft now, bypassing the quiet period.
// Returns false if there was nothing to write.
func (s *Session) Save(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked(ctx)
}

// Rename sets the active document's title.
func (s *Session) Rename(ctx context.Context, title string) (notebook.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)

	return s.nb.Rename(ctx, title)
}

// Select switches the active document. See [notebook.Notebook.Select].
func (s *Session) Select(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)

	return s.nb.Select(ctx, id)
}

// Lookup resolves an id or unique id prefix.
func (s *Session) Lookup(ref string) (notebook.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nb.Lookup(ref)
}

// Create adds a document and makes it active.
func (s *Session) Create(ctx context.Context, title, content string) (notebook.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)

	return s.nb.Create(ctx, title, content)
}

// Delete removes the active document.
func (s *Session) Delete(ctx context.Context) (notebook.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)

	return s.nb.Delete(ctx)
}

// Export returns the active document as a markdown file, draft included.
func (s *Session) Export(ctx context.Context) (notebook.Export, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)

	return s.nb.Export()
}

// List returns the documents matching query. See [notebook.Notebook.Filter].
func (s *Session) List(query string) []notebook.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nb.Filter(query)
}

// ActiveID returns the active document's id, or "".
func (s *Session) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nb.ActiveID()
}

// Close commits any pending draft. The session must not be used afterwards.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(ctx)
}

// flushLocked drops the scheduled timer and commits the draft directly. A
// timer callback that already fired and is waiting on s.mu finds no draft.
func (s *Session) flushLocked(ctx context.Context) bool {
	s.debounce.Cancel()

	return s.commitLocked(ctx)
}

func (s *Session) commitLocked(ctx context.Context) bool {
	d := s.draft
	if d == nil {
		return false
	}

	s.draft = nil

	active, ok := s.nb.Active()
	if !ok || active.ID != d.id {
		s.log.Warn("dropping draft for inactive document", zap.String(logging.FieldDocID, d.id))

		return false
	}

	if active.Content == d.body {
		return false
	}

	s.nb.Update(ctx, notebook.ContentChange(d.body))
	s.log.Debug("saved draft", zap.String(logging.FieldDocID, d.id), zap.Int("bytes", len(d.body)))

	return true
}
