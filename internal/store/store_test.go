package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calvinalkan/notebook/internal/fs"
	"github.com/calvinalkan/notebook/internal/notebook"
	"github.com/calvinalkan/notebook/internal/store"
)

func openSlots(t *testing.T) map[string]store.Slot {
	t.Helper()

	ctx := context.Background()
	slots := make(map[string]store.Slot)

	for _, backend := range []string{notebook.BackendFile, notebook.BackendSQLite} {
		slot, err := store.OpenSlot(ctx, fs.NewReal(), backend, filepath.Join(t.TempDir(), ".notebook"))
		require.NoError(t, err)

		t.Cleanup(func() { _ = slot.Close() })

		slots[backend] = slot
	}

	return slots
}

func Test_Slot_Get_Put_Round_Trip(t *testing.T) {
	t.Parallel()

	for backend, slot := range openSlots(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			_, err := slot.Get(ctx, "missing")
			require.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, slot.Put(ctx, "k", []byte(`"one"`)))
			require.NoError(t, slot.Put(ctx, "k", []byte(`"two"`)))

			got, err := slot.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"two"`, string(got))
		})
	}
}

func Test_Store_Round_Trips_Documents_And_Selection(t *testing.T) {
	t.Parallel()

	created := time.UnixMilli(1_700_000_000_123)
	docs := []notebook.Document{
		{ID: "b", Title: "Second", Content: "# H\n\nbody", CreatedAt: created, UpdatedAt: created.Add(time.Minute)},
		{ID: "a", Title: "First", Content: "", CreatedAt: created, UpdatedAt: created},
	}

	for backend, slot := range openSlots(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			st := store.New(slot, nil)

			assert.Empty(t, st.LoadDocuments(ctx))
			assert.Empty(t, st.LoadActive(ctx))

			require.NoError(t, st.SaveDocuments(ctx, docs))
			require.NoError(t, st.SaveActive(ctx, "a"))

			if diff := cmp.Diff(docs, st.LoadDocuments(ctx)); diff != "" {
				t.Fatalf("documents mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, "a", st.LoadActive(ctx))
		})
	}
}

func Test_Store_Writes_Documents_As_JSON_Array_With_Millisecond_Timestamps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	slot := store.NewFileSlot(fs.NewReal(), dir)
	st := store.New(slot, nil)

	ts := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, st.SaveDocuments(ctx, []notebook.Document{
		{ID: "x", Title: "T", Content: "c", CreatedAt: ts, UpdatedAt: ts},
	}))

	got, err := slot.Get(ctx, store.KeyDocuments)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"x","title":"T","content":"c","created":1700000000000,"updated":1700000000000}]`, string(got))
	assert.FileExists(t, filepath.Join(dir, "notebook.files.v1.json"))
}

func Test_Store_Resets_Invalid_Data_And_Logs(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "not an array", data: `{"id":"a"}`},
		{name: "missing id", data: `[{"title":"x","created":1,"updated":1}]`},
		{name: "negative timestamp", data: `[{"id":"a","created":-5,"updated":1}]`},
		{name: "duplicate ids", data: `[{"id":"a","created":1,"updated":1},{"id":"a","created":2,"updated":2}]`},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			slot := store.NewFileSlot(fs.NewReal(), t.TempDir())
			require.NoError(t, slot.Put(ctx, store.KeyDocuments, []byte(tt.data)))

			core, logs := observer.New(zapcore.WarnLevel)
			st := store.New(slot, zap.New(core))

			assert.Empty(t, st.LoadDocuments(ctx))
			assert.Equal(t, 1, logs.FilterMessage("stored notebook is invalid, starting empty").Len())
		})
	}
}

func Test_Store_Resets_On_Read_Failure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	faulty := fs.NewFaulty(fs.NewReal())
	slot := store.NewFileSlot(faulty, t.TempDir())

	core, logs := observer.New(zapcore.WarnLevel)
	st := store.New(slot, zap.New(core))

	require.NoError(t, st.SaveDocuments(ctx, []notebook.Document{{ID: "a"}}))

	faulty.Fail(fs.OpReadFile, errors.New("disk gone"))

	assert.Empty(t, st.LoadDocuments(ctx))
	assert.Empty(t, st.LoadActive(ctx))
	assert.Equal(t, 1, logs.FilterMessage("reading notebook failed, starting empty").Len())
	assert.Equal(t, 1, logs.FilterMessage("reading selection failed").Len())
}

func Test_Store_Save_Surfaces_Write_Failure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	faulty := fs.NewFaulty(fs.NewReal())
	st := store.New(store.NewFileSlot(faulty, t.TempDir()), nil)

	faulty.Fail(fs.OpWriteFileAtomic, errors.New("read-only"))

	err := st.SaveDocuments(ctx, nil)
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err))

	require.Error(t, st.SaveActive(ctx, "a"))
}

func Test_Store_Backs_A_Notebook_Across_Reopen(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{notebook.BackendFile, notebook.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := filepath.Join(t.TempDir(), ".notebook")

			open := func() (*notebook.Notebook, func()) {
				slot, err := store.OpenSlot(ctx, fs.NewReal(), backend, dir)
				require.NoError(t, err)

				nb, err := notebook.Open(ctx, store.New(slot, nil))
				require.NoError(t, err)

				return nb, func() { _ = slot.Close() }
			}

			nb, closeSlot := open()
			require.Equal(t, 1, nb.Len())

			created, err := nb.Create(ctx, "Test", "# H")
			require.NoError(t, err)

			second, err := nb.Create(ctx, "Other", "x")
			require.NoError(t, err)
			require.True(t, nb.Select(ctx, created.ID))
			closeSlot()

			reopened, closeSlot := open()
			defer closeSlot()

			assert.Equal(t, 3, reopened.Len())
			assert.Equal(t, created.ID, reopened.ActiveID())

			got, ok := reopened.Get(second.ID)
			require.True(t, ok)
			assert.Equal(t, "Other", got.Title)
		})
	}
}
