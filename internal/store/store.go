package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/calvinalkan/notebook/internal/logging"
	"github.com/calvinalkan/notebook/internal/notebook"
)

var validate = validator.New()

// record is the stored form of a document. Timestamps are Unix milliseconds.
type record struct {
	ID      string `json:"id"      validate:"required"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Created int64  `json:"created" validate:"gte=0"`
	Updated int64  `json:"updated" validate:"gte=0"`
}

func toRecord(d notebook.Document) record {
	return record{
		ID:      d.ID,
		Title:   d.Title,
		Content: d.Content,
		Created: d.CreatedAt.UnixMilli(),
		Updated: d.UpdatedAt.UnixMilli(),
	}
}

func (r record) document() notebook.Document {
	return notebook.Document{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: time.UnixMilli(r.Created),
		UpdatedAt: time.UnixMilli(r.Updated),
	}
}

// Store implements notebook.Storage on top of a [Slot].
//
// Loads never fail. Missing data yields an empty collection; unreadable or
// invalid data is logged and also yields an empty collection, so the next
// save overwrites it.
type Store struct {
	slot Slot
	log  *zap.Logger
}

var _ notebook.Storage = (*Store)(nil)

// New returns a Store writing through slot. A nil log discards diagnostics.
func New(slot Slot, log *zap.Logger) *Store {
	if slot == nil {
		panic("slot is nil")
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Store{slot: slot, log: log}
}

// Close closes the underlying slot.
func (s *Store) Close() error {
	return s.slot.Close()
}

// LoadDocuments returns the stored collection in stored order.
func (s *Store) LoadDocuments(ctx context.Context) []notebook.Document {
	data, err := s.slot.Get(ctx, KeyDocuments)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("reading notebook failed, starting empty",
				zap.String(logging.FieldKey, KeyDocuments), zap.Error(err))
		}

		return nil
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		s.log.Warn("stored notebook is invalid, starting empty",
			zap.String(logging.FieldKey, KeyDocuments), zap.Error(err))

		return nil
	}

	s.log.Debug("loaded notebook", zap.Int("documents", len(docs)))

	return docs
}

// SaveDocuments replaces the stored collection.
func (s *Store) SaveDocuments(ctx context.Context, docs []notebook.Document) error {
	records := make([]record, len(docs))
	for i, d := range docs {
		records[i] = toRecord(d)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}

	err = s.slot.Put(ctx, KeyDocuments, data)
	if err != nil {
		return fmt.Errorf("save notebook: %w", err)
	}

	s.log.Debug("saved notebook", zap.Int("documents", len(docs)))

	return nil
}

// LoadActive returns the stored selection, or "" when none is stored.
func (s *Store) LoadActive(ctx context.Context) string {
	data, err := s.slot.Get(ctx, KeyActive)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("reading selection failed",
				zap.String(logging.FieldKey, KeyActive), zap.Error(err))
		}

		return ""
	}

	var id string

	err = json.Unmarshal(data, &id)
	if err != nil {
		s.log.Warn("stored selection is invalid",
			zap.String(logging.FieldKey, KeyActive), zap.Error(err))

		return ""
	}

	return id
}

// SaveActive stores the selection. An empty id means no selection.
func (s *Store) SaveActive(ctx context.Context, id string) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}

	err = s.slot.Put(ctx, KeyActive, data)
	if err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	return nil
}

// decodeDocuments parses and validates a stored collection. Any invalid
// record or duplicate id rejects the whole collection.
func decodeDocuments(data []byte) ([]notebook.Document, error) {
	var records []record

	err := json.Unmarshal(data, &records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notebook.ErrInvalidStoredRecord, err)
	}

	seen := make(map[string]struct{}, len(records))
	docs := make([]notebook.Document, 0, len(records))

	for i, r := range records {
		err := validate.Struct(r)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", notebook.ErrInvalidStoredRecord, i, err)
		}

		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", notebook.ErrDuplicateID, r.ID)
		}

		seen[r.ID] = struct{}{}

		docs = append(docs, r.document())
	}

	return docs, nil
}
