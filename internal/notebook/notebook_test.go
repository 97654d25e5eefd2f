package notebook_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/testutil"
)

// memStorage keeps persisted state in memory and records every save.
type memStorage struct {
	docs      []notebook.Document
	active    string
	saves     int
	failSaves error
}

func (m *memStorage) LoadDocuments(context.Context) []notebook.Document {
	return append([]notebook.Document(nil), m.docs...)
}

func (m *memStorage) SaveDocuments(_ context.Context, docs []notebook.Document) error {
	m.saves++

	if m.failSaves != nil {
		return m.failSaves
	}

	m.docs = append([]notebook.Document(nil), docs...)

	return nil
}

func (m *memStorage) LoadActive(context.Context) string { return m.active }

func (m *memStorage) SaveActive(_ context.Context, id string) error {
	m.active = id

	return nil
}

// seqIDs returns an id generator yielding doc-1, doc-2, ...
func seqIDs() func() (string, error) {
	n := 0

	return func() (string, error) {
		n++

		return fmt.Sprintf("doc-%d", n), nil
	}
}

func openNotebook(t *testing.T, storage *memStorage, clock *testutil.Clock) *notebook.Notebook {
	t.Helper()

	nb, err := notebook.Open(context.Background(), storage,
		notebook.WithNow(clock.Now),
		notebook.WithIDGenerator(seqIDs()),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	return nb
}

func Test_Open_Seeds_Welcome_Document_When_Storage_Is_Empty(t *testing.T) {
	t.Parallel()

	storage := &memStorage{}
	nb := openNotebook(t, storage, testutil.NewClock())

	if got := nb.Len(); got != 1 {
		t.Fatalf("Len()=%d, want 1", got)
	}

	active, ok := nb.Active()
	if !ok {
		t.Fatal("seed document should be active")
	}

	if active.Title != notebook.SeedTitle {
		t.Errorf("title=%q, want %q", active.Title, notebook.SeedTitle)
	}

	if !strings.HasPrefix(active.Content, "# Welcome") {
		t.Errorf("content=%q, want welcome heading", active.Content)
	}

	if diff := cmp.Diff(nb.Documents(), storage.docs); diff != "" {
		t.Errorf("seed not persisted (-memory +stored):\n%s", diff)
	}

	if storage.active != active.ID {
		t.Errorf("persisted active=%q, want %q", storage.active, active.ID)
	}
}

func Test_Open_Restores_Persisted_Selection_Or_Falls_Back_To_First(t *testing.T) {
	t.Parallel()

	base := []notebook.Document{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}

	for _, tt := range []struct {
		name   string
		stored string
		want   string
	}{
		{name: "known id", stored: "b", want: "b"},
		{name: "stale id", stored: "gone", want: "a"},
		{name: "no id", stored: "", want: "a"},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			storage := &memStorage{docs: base, active: tt.stored}
			nb := openNotebook(t, storage, testutil.NewClock())

			if got := nb.ActiveID(); got != tt.want {
				t.Fatalf("ActiveID()=%q, want %q", got, tt.want)
			}

			if nb.Len() != 2 {
				t.Fatalf("Len()=%d, want 2 (no seed on non-empty collection)", nb.Len())
			}
		})
	}
}

func Test_Create_Prepends_Persists_And_Selects(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	storage := &memStorage{}
	nb := openNotebook(t, storage, clock)

	clock.Tick()

	doc, err := nb.Create(context.Background(), "Test", "# H")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	active, ok := nb.Active()
	if !ok {
		t.Fatal("created document should be active")
	}

	want := notebook.Document{
		ID:        doc.ID,
		Title:     "Test",
		Content:   "# H",
		CreatedAt: clock.Now(),
		UpdatedAt: clock.Now(),
	}
	if diff := cmp.Diff(want, active); diff != "" {
		t.Fatalf("active document mismatch (-want +got):\n%s", diff)
	}

	if got := nb.Documents()[0].ID; got != doc.ID {
		t.Errorf("first document=%q, want newest %q", got, doc.ID)
	}

	if diff := cmp.Diff(nb.Documents(), storage.docs); diff != "" {
		t.Errorf("storage out of sync (-memory +stored):\n%s", diff)
	}
}

func Test_Create_Uses_Default_Title_When_Empty(t *testing.T) {
	t.Parallel()

	nb := openNotebook(t, &memStorage{}, testutil.NewClock())

	doc, err := nb.Create(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if doc.Title != notebook.DefaultTitle {
		t.Fatalf("title=%q, want %q", doc.Title, notebook.DefaultTitle)
	}
}

func Test_Create_Regenerates_Id_On_Collision(t *testing.T) {
	t.Parallel()

	ids := []string{"dup", "dup", "fresh"}
	i := 0

	nb, err := notebook.Open(context.Background(), &memStorage{docs: []notebook.Document{{ID: "dup"}}},
		notebook.WithIDGenerator(func() (string, error) {
			id := ids[i]
			i++

			return id, nil
		}),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	doc, err := nb.Create(context.Background(), "x", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if doc.ID != "fresh" {
		t.Fatalf("id=%q, want fresh", doc.ID)
	}
}

func Test_Create_Fails_When_Ids_Keep_Colliding(t *testing.T) {
	t.Parallel()

	nb, err := notebook.Open(context.Background(), &memStorage{docs: []notebook.Document{{ID: "dup"}}},
		notebook.WithIDGenerator(func() (string, error) { return "dup", nil }),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = nb.Create(context.Background(), "x", "")
	if !errors.Is(err, notebook.ErrIDGenerationFailed) {
		t.Fatalf("err=%v, want %v", err, notebook.ErrIDGenerationFailed)
	}
}

func Test_Update_Touches_Only_Active_Document(t *testing.T) {
	t.Parallel()

	clock := testutil.NewClock()
	storage := &memStorage{}
	nb := openNotebook(t, storage, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		clock.Tick()

		if _, err := nb.Create(ctx, fmt.Sprintf("n%d", i), ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	before := nb.Documents()
	target := before[2].ID

	if !nb.Select(ctx, target) {
		t.Fatalf("Select(%q) failed", target)
	}

	clock.Tick()

	updated, ok := nb.Update(ctx, notebook.ContentChange("body"))
	if !ok {
		t.Fatal("Update reported no active document")
	}

	if !updated.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt=%v, want %v", updated.UpdatedAt, clock.Now())
	}

	for i, doc := range nb.Documents() {
		if doc.ID == target {
			continue
		}

		if diff := cmp.Diff(before[i], doc); diff != "" {
			t.Errorf("non-active document %s changed (-before +after):\n%s", doc.ID, diff)
		}
	}

	if diff := cmp.Diff(nb.Documents(), storage.docs); diff != "" {
		t.Errorf("storage out of sync (-memory +stored):\n%s", diff)
	}
}

func Test_Update_Never_Moves_UpdatedAt_Backwards(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clockNow := func() time.Time { return now }

	nb, err := notebook.Open(context.Background(), &memStorage{}, notebook.WithNow(clockNow))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	now = now.Add(-time.Hour)

	doc, _ := nb.Rename(context.Background(), "renamed")
	if want := now.Add(time.Hour); !doc.UpdatedAt.Equal(want) {
		t.Fatalf("UpdatedAt=%v, want unchanged %v", doc.UpdatedAt, want)
	}
}

func Test_Update_Is_Silent_Noop_Without_Active_Document(t *testing.T) {
	t.Parallel()

	storage := &memStorage{}
	nb := openNotebook(t, storage, testutil.NewClock())
	ctx := context.Background()

	if nb.Select(ctx, "missing") {
		t.Fatal("Select of unknown id should report false")
	}

	if _, ok := nb.Active(); ok {
		t.Fatal("unknown id must clear the selection")
	}

	saves := storage.saves
	before := nb.Documents()

	if _, ok := nb.Update(ctx, notebook.ContentChange("x")); ok {
		t.Fatal("Update without active document should report false")
	}

	if _, ok := nb.Rename(ctx, "x"); ok {
		t.Fatal("Rename without active document should report false")
	}

	if storage.saves != saves {
		t.Errorf("no-op update persisted: saves %d -> %d", saves, storage.saves)
	}

	if diff := cmp.Diff(before, nb.Documents()); diff != "" {
		t.Errorf("collection changed (-before +after):\n%s", diff)
	}
}

func Test_Rename_Normalizes_Empty_Title(t *testing.T) {
	t.Parallel()

	nb := openNotebook(t, &memStorage{}, testutil.NewClock())

	doc, ok := nb.Rename(context.Background(), "")
	if !ok {
		t.Fatal("Rename failed")
	}

	if doc.Title != notebook.DefaultTitle {
		t.Fatalf("title=%q, want %q", doc.Title, notebook.DefaultTitle)
	}
}

func Test_Delete_Selects_First_Remaining_Document(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5} {
		n := n

		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()

			storage := &memStorage{}
			nb := openNotebook(t, storage, testutil.NewClock())
			ctx := context.Background()

			// Remove the seed so the collection holds exactly n created documents.
			if _, ok := nb.Delete(ctx); !ok {
				t.Fatal("delete seed failed")
			}

			for i := 0; i < n; i++ {
				if _, err := nb.Create(ctx, fmt.Sprintf("n%d", i), ""); err != nil {
					t.Fatalf("Create: %v", err)
				}
			}

			removed, ok := nb.Delete(ctx)
			if !ok {
				t.Fatal("Delete reported no active document")
			}

			if nb.Len() != n-1 {
				t.Fatalf("Len()=%d, want %d", nb.Len(), n-1)
			}

			if _, found := nb.Get(removed.ID); found {
				t.Fatalf("deleted document %q still present", removed.ID)
			}

			active, hasActive := nb.Active()

			if n == 1 {
				if hasActive {
					t.Fatalf("active=%q, want none", active.ID)
				}

				if storage.active != "" {
					t.Fatalf("persisted active=%q, want empty", storage.active)
				}

				return
			}

			if want := nb.Documents()[0].ID; active.ID != want {
				t.Fatalf("active=%q, want first remaining %q", active.ID, want)
			}

			if diff := cmp.Diff(nb.Documents(), storage.docs); diff != "" {
				t.Errorf("storage out of sync (-memory +stored):\n%s", diff)
			}
		})
	}
}

func Test_Delete_Is_Noop_Without_Active_Document(t *testing.T) {
	t.Parallel()

	nb := openNotebook(t, &memStorage{}, testutil.NewClock())
	ctx := context.Background()

	nb.Select(ctx, "")

	if _, ok := nb.Delete(ctx); ok {
		t.Fatal("Delete without selection should report false")
	}

	if nb.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", nb.Len())
	}
}

func Test_Lookup_Resolves_Exact_Id_And_Unique_Prefix(t *testing.T) {
	t.Parallel()

	storage := &memStorage{docs: []notebook.Document{
		{ID: "abc123"},
		{ID: "abd456"},
	}}
	nb := openNotebook(t, storage, testutil.NewClock())

	for _, tt := range []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "abc123", want: "abc123"},
		{ref: "abd", want: "abd456"},
		{ref: "ab", wantErr: notebook.ErrAmbiguousID},
		{ref: "zz", wantErr: notebook.ErrDocumentNotFound},
		{ref: "", wantErr: notebook.ErrIDRequired},
	} {
		doc, err := nb.Lookup(tt.ref)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Lookup(%q) err=%v, want %v", tt.ref, err, tt.wantErr)
			}

			continue
		}

		if err != nil || doc.ID != tt.want {
			t.Errorf("Lookup(%q)=(%q, %v), want %q", tt.ref, doc.ID, err, tt.want)
		}
	}
}

func Test_Persistence_Failure_Is_Logged_Not_Surfaced(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	storage := &memStorage{failSaves: errors.New("disk full")}

	nb, err := notebook.Open(context.Background(), storage, notebook.WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("Open must not surface persistence failures: %v", err)
	}

	doc, err := nb.Create(context.Background(), "kept in memory", "")
	if err != nil {
		t.Fatalf("Create must not surface persistence failures: %v", err)
	}

	if got, ok := nb.Get(doc.ID); !ok || got.Title != "kept in memory" {
		t.Fatalf("in-memory state lost after failed save")
	}

	if logs.FilterMessage("saving notebook failed").Len() == 0 {
		t.Fatalf("expected a logged save failure, got %v", logs.All())
	}
}

func Test_Export_Returns_Raw_Body_Named_From_Title(t *testing.T) {
	t.Parallel()

	nb := openNotebook(t, &memStorage{}, testutil.NewClock())
	ctx := context.Background()

	body := "# Heading\n\n<b>raw</b> *text*\n"
	if _, err := nb.Create(ctx, "My Note", body); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exp, ok := nb.Export()
	if !ok {
		t.Fatal("Export reported no active document")
	}

	want := notebook.Export{Name: "My Note.md", Body: body}
	if diff := cmp.Diff(want, exp); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}

	nb.Select(ctx, "")

	if _, ok := nb.Export(); ok {
		t.Fatal("Export without active document should be a no-op")
	}
}

func Test_ExportName(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		title string
		want  string
	}{
		{"My Note", "My Note.md"},
		{"", "note.md"},
		{"   ", "note.md"},
		{"a/b\\c", "a-b-c.md"},
		{"..", "note.md"},
	} {
		if got := notebook.ExportName(tt.title); got != tt.want {
			t.Errorf("ExportName(%q)=%q, want %q", tt.title, got, tt.want)
		}
	}
}
