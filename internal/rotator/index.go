package rotator

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// IndexStore persists the rotation cursor as a single integer in a text file.
// Persistence is intentionally lossy: a lost or unreadable cursor only shifts
// which recipient gets the next message, it never loses or duplicates mail.
type IndexStore struct {
	path string
}

// NewIndexStore returns a store backed by the given file path.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// Load reads the persisted cursor. It returns 0 if the file is missing,
// unreadable or does not contain a non-negative integer.
func (s *IndexStore) Load() int {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || value < 0 {
		return 0
	}

	return value
}

// Store writes the cursor. Failures are logged and swallowed.
func (s *IndexStore) Store(value int) {
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(value)+"\n"), 0o644); err != nil {
		slog.Warn("Failed to persist rotation index", "path", s.path, "error", err)
	}
}
