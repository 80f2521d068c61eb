// Package journal stores journal entries as one JSON file each.
//
// Entries are the word-count requester's payload source; the store itself
// is plain file I/O.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/billie-coop/minefile/internal/channel"
)

// ErrNotFound is returned for an id with no entry file.
var ErrNotFound = errors.New("entry not found")

// Entry is one journal entry.
type Entry struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	// Words is filled in once the worker has counted them
	Words *int `json:"words,omitempty"`
}

// Store manages entries in one directory.
type Store struct {
	dir       string
	layout    string
	extension string
}

// NewStore creates a store. layout is a Go time layout used for ids;
// extension includes the dot.
func NewStore(dir, layout, extension string) *Store {
	if layout == "" {
		layout = "2006-01-02_15-04-05"
	}
	if extension == "" {
		extension = ".json"
	}
	return &Store{dir: dir, layout: layout, extension: extension}
}

// Dir returns the entry directory.
func (s *Store) Dir() string { return s.dir }

// Create saves a new entry stamped with now.
// Two entries in the same second get -2, -3... suffixes.
func (s *Store) Create(content string, now time.Time) (*Entry, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	base := now.Format(s.layout)
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.path(id)); errors.Is(err, os.ErrNotExist) {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}

	entry := &Entry{ID: id, Content: content, Created: now}
	if err := s.save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get loads one entry.
func (s *Store) Get(id string) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	return &entry, nil
}

// Update replaces an entry's content and clears its stale word count.
func (s *Store) Update(id, content string) (*Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	entry.Content = content
	entry.Words = nil
	return entry, s.save(entry)
}

// SetWords records the word count for an entry.
func (s *Store) SetWords(id string, n int) error {
	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	entry.Words = &n
	return s.save(entry)
}

// Delete removes an entry.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return err
}

// List returns all entries, newest first. Unreadable files are skipped.
func (s *Store) List() ([]*Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // No entries yet
		}
		return nil, err
	}

	var entries []*Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), s.extension) {
			continue
		}
		entry, err := s.Get(strings.TrimSuffix(f.Name(), s.extension))
		if err != nil {
			continue // Skip bad files
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Created.After(entries[j].Created)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (s *Store) save(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return channel.WriteFileAtomic(s.path(entry.ID), data, 0o644)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+s.extension)
}

// checkID rejects ids that would escape the entry directory.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid entry id %q", id)
	}
	return nil
}

// Title returns the first line of content, shortened for listings.
func (e *Entry) Title() string {
	title := strings.TrimSpace(e.Content)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:47]) + "..."
	}
	return title
}
