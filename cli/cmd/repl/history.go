package repl

import (
	"os"
	"strings"
)

// maxHistoryEntries bounds persisted history size.
const maxHistoryEntries = 500

// history is an editable ring of previous inputs with optional file
// persistence. Navigation walks backward with prev and forward with next;
// add resets the cursor.
type history struct {
	path    string
	entries []string
	cursor  int
}

// loadHistory reads persisted history from path, which may be empty to
// disable persistence. Read errors start an empty history.
func loadHistory(path string) *history {
	h := &history{path: path}

	if path == "" {
		return h
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}

	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			h.entries = append(h.entries, line)
		}
	}

	h.cursor = len(h.entries)

	return h
}

// add appends an entry, skipping consecutive duplicates, and resets the
// navigation cursor past the end.
func (h *history) add(line string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != line {
		h.entries = append(h.entries, line)
	}

	if len(h.entries) > maxHistoryEntries {
		h.entries = h.entries[len(h.entries)-maxHistoryEntries:]
	}

	h.cursor = len(h.entries)
}

// prev steps backward through history.
func (h *history) prev() (string, bool) {
	if h.cursor == 0 || len(h.entries) == 0 {
		return "", false
	}

	h.cursor--

	return h.entries[h.cursor], true
}

// next steps forward through history, returning an empty line past the
// newest entry.
func (h *history) next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}

	h.cursor++

	if h.cursor == len(h.entries) {
		return "", false
	}

	return h.entries[h.cursor], true
}

// save writes the history back to its file, if persistence is enabled.
func (h *history) save() error {
	if h.path == "" || len(h.entries) == 0 {
		return nil
	}

	data := strings.Join(h.entries, "\n") + "\n"

	return os.WriteFile(h.path, []byte(data), 0o600)
}
