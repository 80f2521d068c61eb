package journal

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestStore_CreateGetList(t *testing.T) {
	s := NewStore(t.TempDir(), "", "")
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	first, err := s.Create("Dear diary,\nit rained.", now)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != "2026-10-16_09-30-00" {
		t.Errorf("ID = %q", first.ID)
	}

	// Same second: suffixed, not overwritten
	second, err := s.Create("second entry", now)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != "2026-10-16_09-30-00-2" {
		t.Errorf("second ID = %q", second.ID)
	}

	got, err := s.Get(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Dear diary,\nit rained." || got.Title() != "Dear diary," {
		t.Errorf("Get = %+v", got)
	}

	later, err := s.Create("later", now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != later.ID {
		t.Errorf("List order wrong: %v", ids(list))
	}
}

func TestStore_UpdateSetWordsDelete(t *testing.T) {
	s := NewStore(t.TempDir(), "", "")
	e, err := s.Create("one two three", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetWords(e.ID, 3); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(e.ID)
	if got.Words == nil || *got.Words != 3 {
		t.Errorf("Words = %v, want 3", got.Words)
	}

	updated, err := s.Update(e.ID, "four words right here")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Words != nil {
		t.Error("Update should clear the stale word count")
	}

	if err := s.Delete(e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestStore_RejectsPathIDs(t *testing.T) {
	s := NewStore(t.TempDir(), "", "")
	for _, id := range []string{"", "..", "../config", `a\b`} {
		if _, err := s.Get(id); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) = %v, want invalid id error", id, err)
		}
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s := NewStore(t.TempDir()+"/missing", "", "")
	list, err := s.List()
	if err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v", list, err)
	}
}

func ids(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestEntry_Title(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"  short\nsecond line", "short"},
		{strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{strings.Repeat("a", 51), strings.Repeat("a", 47) + "..."},
		{"ü" + strings.Repeat("é", 51), "ü" + strings.Repeat("é", 46) + "..."},
	}
	for _, tt := range tests {
		got := (&Entry{Content: tt.content}).Title()
		if got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.content, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Title(%q) = %q is not valid UTF-8", tt.content, got)
		}
	}
}
