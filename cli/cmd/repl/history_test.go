package repl

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestHistoryAddSkipsConsecutiveDuplicates(t *testing.T) {
	h := &history{}

	h.add("=1+1")
	h.add("=1+1")
	h.add("=2+2")
	h.add("=1+1")

	want := []string{"=1+1", "=2+2", "=1+1"}

	if len(h.entries) != len(want) {
		t.Fatalf("entries = %v, want %v", h.entries, want)
	}

	for i, e := range want {
		if h.entries[i] != e {
			t.Errorf("entries[%d] = %q, want %q", i, h.entries[i], e)
		}
	}
}

func TestHistoryNavigation(t *testing.T) {
	h := &history{}
	h.add("first")
	h.add("second")
	h.add("third")

	for _, want := range []string{"third", "second", "first"} {
		got, ok := h.prev()
		if !ok || got != want {
			t.Fatalf("prev() = %q, %t, want %q, true", got, ok, want)
		}
	}

	if got, ok := h.prev(); ok {
		t.Fatalf("prev() past oldest = %q, want miss", got)
	}

	for _, want := range []string{"second", "third"} {
		got, ok := h.next()
		if !ok || got != want {
			t.Fatalf("next() = %q, %t, want %q, true", got, ok, want)
		}
	}

	// Stepping past the newest entry yields an empty line.
	if got, ok := h.next(); ok || got != "" {
		t.Fatalf("next() past newest = %q, %t, want empty miss", got, ok)
	}
}

func TestHistoryAddResetsCursor(t *testing.T) {
	h := &history{}
	h.add("one")
	h.add("two")

	h.prev()
	h.prev()

	h.add("three")

	got, ok := h.prev()
	if !ok || got != "three" {
		t.Fatalf("prev() after add = %q, %t, want %q, true", got, ok, "three")
	}
}

func TestHistoryBounded(t *testing.T) {
	h := &history{}

	for i := range maxHistoryEntries + 25 {
		h.add("=1+" + strconv.Itoa(i))
	}

	if len(h.entries) != maxHistoryEntries {
		t.Fatalf("len(entries) = %d, want %d", len(h.entries), maxHistoryEntries)
	}

	if h.entries[0] != "=1+25" {
		t.Fatalf("entries[0] = %q, want oldest entries dropped", h.entries[0])
	}
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	h := loadHistory(path)
	h.add("=SUM(A1:A3)")
	h.add(":cells")

	if err := h.save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := loadHistory(path)

	if len(got.entries) != 2 ||
		got.entries[0] != "=SUM(A1:A3)" ||
		got.entries[1] != ":cells" {
		t.Fatalf("loaded entries = %v", got.entries)
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h := loadHistory(filepath.Join(t.TempDir(), "absent"))

	if len(h.entries) != 0 {
		t.Fatalf("entries = %v, want none", h.entries)
	}
}

func TestHistorySaveDisabled(t *testing.T) {
	h := &history{}
	h.add("line")

	if err := h.save(); err != nil {
		t.Fatalf("save without path: %v", err)
	}
}

func TestHistorySaveSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	if err := os.WriteFile(path, []byte("one\n\n  \ntwo\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := loadHistory(path)

	if len(h.entries) != 2 || h.entries[0] != "one" || h.entries[1] != "two" {
		t.Fatalf("entries = %v, want [one two]", h.entries)
	}
}
