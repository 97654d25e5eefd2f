package notebook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/logging"
)

// maxIDAttempts bounds regeneration when a fresh id collides with an
// existing one.
const maxIDAttempts = 16

// Storage persists the collection and the active selection.
//
// Loads never fail: implementations recover from missing or corrupt data by
// returning an empty collection (or no selection) and logging the problem.
type Storage interface {
	LoadDocuments(ctx context.Context) []Document
	SaveDocuments(ctx context.Context, docs []Document) error
	LoadActive(ctx context.Context) string
	SaveActive(ctx context.Context, id string) error
}

// Option configures a [Notebook].
type Option func(*Notebook)

// WithNow sets the time source used for created/updated timestamps.
func WithNow(now func() time.Time) Option {
	return func(n *Notebook) { n.now = now }
}

// WithIDGenerator replaces [NewID].
func WithIDGenerator(gen func() (string, error)) Option {
	return func(n *Notebook) { n.newID = gen }
}

// WithLogger sets the logger that receives persistence failures.
func WithLogger(log *zap.Logger) Option {
	return func(n *Notebook) { n.log = log }
}

// Notebook is the collection controller.
//
// It keeps the documents in stored order, an id index, and a direct pointer
// to the active document (nil when nothing is selected). Every mutating
// method writes the whole collection through to [Storage] before returning.
// Persistence failures are logged and do not fail the operation; the
// in-memory state stays authoritative for the rest of the process.
//
// A Notebook is not safe for concurrent use.
type Notebook struct {
	storage Storage
	now     func() time.Time
	newID   func() (string, error)
	log     *zap.Logger

	docs   []*Document
	byID   map[string]*Document
	active *Document
}

// Open loads the collection from storage.
//
// An empty collection is seeded with a single "Welcome" document, which
// becomes active. Otherwise the persisted selection is restored when it still
// names a document, falling back to the first document.
func Open(ctx context.Context, storage Storage, opts ...Option) (*Notebook, error) {
	if storage == nil {
		panic("storage is nil")
	}

	n := &Notebook{
		storage: storage,
		now:     time.Now,
		newID:   NewID,
		log:     zap.NewNop(),
		byID:    make(map[string]*Document),
	}

	for _, opt := range opts {
		opt(n)
	}

	for _, doc := range storage.LoadDocuments(ctx) {
		if _, dup := n.byID[doc.ID]; dup {
			n.log.Warn("dropping duplicate document", zap.String(logging.FieldDocID, doc.ID))

			continue
		}

		d := doc
		n.docs = append(n.docs, &d)
		n.byID[d.ID] = &d
	}

	if len(n.docs) == 0 {
		_, err := n.Create(ctx, SeedTitle, SeedContent)
		if err != nil {
			return nil, fmt.Errorf("seed notebook: %w", err)
		}

		return n, nil
	}

	if d, ok := n.byID[storage.LoadActive(ctx)]; ok {
		n.active = d
	} else {
		n.active = n.docs[0]
	}

	return n, nil
}

// Len returns the number of documents.
func (n *Notebook) Len() int {
	return len(n.docs)
}

// Documents returns a copy of the collection in stored order.
func (n *Notebook) Documents() []Document {
	out := make([]Document, len(n.docs))
	for i, d := range n.docs {
		out[i] = *d
	}

	return out
}

// Active returns the active document. The boolean is false when nothing is
// selected.
func (n *Notebook) Active() (Document, bool) {
	if n.active == nil {
		return Document{}, false
	}

	return *n.active, true
}

// ActiveID returns the active document's id, or "" when nothing is selected.
func (n *Notebook) ActiveID() string {
	if n.active == nil {
		return ""
	}

	return n.active.ID
}

// Get returns the document with the exact id.
func (n *Notebook) Get(id string) (Document, bool) {
	d, ok := n.byID[id]
	if !ok {
		return Document{}, false
	}

	return *d, true
}

// Lookup resolves ref as an exact id or, failing that, as a unique id prefix.
func (n *Notebook) Lookup(ref string) (Document, error) {
	if ref == "" {
		return Document{}, ErrIDRequired
	}

	if d, ok := n.byID[ref]; ok {
		return *d, nil
	}

	var match *Document

	for _, d := range n.docs {
		if !strings.HasPrefix(d.ID, ref) {
			continue
		}

		if match != nil {
			return Document{}, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
		}

		match = d
	}

	if match == nil {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, ref)
	}

	return *match, nil
}

// Create prepends a new document, persists the collection, and selects it.
// An empty title becomes [DefaultTitle].
func (n *Notebook) Create(ctx context.Context, title, content string) (Document, error) {
	id, err := n.uniqueID()
	if err != nil {
		return Document{}, err
	}

	now := n.now()
	d := &Document{
		ID:        id,
		Title:     normalizeTitle(title),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	n.docs = append([]*Document{d}, n.docs...)
	n.byID[id] = d
	n.persist(ctx)

	n.active = d
	n.persistActive(ctx)

	return *d, nil
}

// Update merges changes into the active document, refreshes its UpdatedAt,
// and persists the collection.
//
// Without an active document Update is a silent no-op and reports false.
// Callers that need a stricter contract check [Notebook.Active] first.
func (n *Notebook) Update(ctx context.Context, changes Changes) (Document, bool) {
	d := n.active
	if d == nil {
		return Document{}, false
	}

	if changes.Title != nil {
		d.Title = normalizeTitle(*changes.Title)
	}

	if changes.Content != nil {
		d.Content = *changes.Content
	}

	// UpdatedAt never moves backwards, even if the wall clock does.
	if now := n.now(); now.After(d.UpdatedAt) {
		d.UpdatedAt = now
	}

	n.persist(ctx)

	return *d, true
}

// Rename sets the active document's title. See [Notebook.Update].
func (n *Notebook) Rename(ctx context.Context, title string) (Document, bool) {
	return n.Update(ctx, TitleChange(title))
}

// Delete removes the active document, persists, and selects the first
// remaining document (or none). Returns the removed document, or false when
// nothing was active.
func (n *Notebook) Delete(ctx context.Context) (Document, bool) {
	d := n.active
	if d == nil {
		return Document{}, false
	}

	for i, other := range n.docs {
		if other == d {
			n.docs = append(n.docs[:i], n.docs[i+1:]...)

			break
		}
	}

	delete(n.byID, d.ID)
	n.persist(ctx)

	n.active = nil
	if len(n.docs) > 0 {
		n.active = n.docs[0]
	}

	n.persistActive(ctx)

	return *d, true
}

// Select makes the document with id active. An unknown id clears the
// selection and reports false.
func (n *Notebook) Select(ctx context.Context, id string) bool {
	d, ok := n.byID[id]
	n.active = d
	n.persistActive(ctx)

	return ok
}

func (n *Notebook) uniqueID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := n.newID()
		if err != nil {
			return "", err
		}

		if _, taken := n.byID[id]; !taken && id != "" {
			return id, nil
		}
	}

	return "", ErrIDGenerationFailed
}

func (n *Notebook) persist(ctx context.Context) {
	err := n.storage.SaveDocuments(ctx, n.Documents())
	if err != nil {
		n.log.Error("saving notebook failed", zap.Int("documents", len(n.docs)), zap.Error(err))
	}
}

func (n *Notebook) persistActive(ctx context.Context) {
	err := n.storage.SaveActive(ctx, n.ActiveID())
	if err != nil {
		n.log.Warn("saving selection failed", zap.String(logging.FieldDocID, n.ActiveID()), zap.Error(err))
	}
}
