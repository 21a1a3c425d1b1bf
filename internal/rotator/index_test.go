package rotator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndexStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewIndexStore(filepath.Join(t.TempDir(), "index.dat"))

	if got := store.Load(); got != 0 {
		t.Errorf("expected 0 before first store, got %d", got)
	}

	store.Store(4)

	if got := store.Load(); got != 4 {
		t.Errorf("expected 4 after store, got %d", got)
	}
}

func TestIndexStore_MissingFile(t *testing.T) {
	t.Parallel()

	store := NewIndexStore(filepath.Join(t.TempDir(), "does-not-exist"))

	if got := store.Load(); got != 0 {
		t.Errorf("expected 0 for missing file, got %d", got)
	}
}

func TestIndexStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.dat")
	if err := os.WriteFile(path, []byte("not a number\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := NewIndexStore(path)

	if got := store.Load(); got != 0 {
		t.Errorf("expected 0 for corrupt file, got %d", got)
	}
}

func TestIndexStore_NegativeValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.dat")
	if err := os.WriteFile(path, []byte("-3\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := NewIndexStore(path)

	if got := store.Load(); got != 0 {
		t.Errorf("expected 0 for negative value, got %d", got)
	}
}

func TestIndexStore_StoreFailureSwallowed(t *testing.T) {
	t.Parallel()

	// Point at a directory that does not exist; Store must not panic or error.
	store := NewIndexStore(filepath.Join(t.TempDir(), "missing", "index.dat"))
	store.Store(2)

	if got := store.Load(); got != 0 {
		t.Errorf("expected 0 after failed store, got %d", got)
	}
}
