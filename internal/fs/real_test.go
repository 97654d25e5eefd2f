package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fs := NewReal()

	exists, err := fs.Exists(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatalf("err=%v, want=nil", err)
	}

	if exists {
		t.Fatal("exists=true, want=false")
	}
}

func TestReal_WriteFileAtomic_ReplacesContentAndAppliesPerm(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "notes.json")

	if err := fs.WriteFileAtomic(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "second" {
		t.Fatalf("content=%q, want=%q", got, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o644); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

func TestFaulty_FailsOnlyRegisteredOps(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	fs := NewFaulty(NewReal())
	fs.Fail(OpWriteFileAtomic, boom)

	dir := t.TempDir()
	path := filepath.Join(dir, "x")

	err := fs.WriteFileAtomic(path, []byte("x"), 0o644)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapping %v", err, boom)
	}

	if !IsInjected(err) {
		t.Fatalf("IsInjected(%v)=false, want true", err)
	}

	if err := fs.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	fs.Fail(OpWriteFileAtomic, nil)

	if err := fs.WriteFileAtomic(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write after clearing failure: %v", err)
	}

	if got, want := fs.Calls(OpWriteFileAtomic), 2; got != want {
		t.Fatalf("calls=%d, want=%d", got, want)
	}
}
