package repl

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/okvern/cellform/formula"
)

// completer offers fuzzy completion over function names, populated cell
// IDs, and session directives. Repeated tabs on the same input cycle
// through the matches.
type completer struct {
	engine *formula.Engine
	sheet  *formula.MapSheet

	lastInput   string
	lastMatches []string
	cycle       int
}

var directives = []string{":help", ":cells", ":stats", ":quit"}

func newCompleter(engine *formula.Engine, sheet *formula.MapSheet) *completer {
	return &completer{engine: engine, sheet: sheet}
}

// complete replaces the trailing word of the input with its best match.
func (c *completer) complete(input string) string {
	prefix, word := splitLastWord(input)
	if word == "" {
		return input
	}

	if input == c.lastInput && len(c.lastMatches) > 0 {
		// Same input as the previous completion: advance the cycle.
		c.cycle = (c.cycle + 1) % len(c.lastMatches)
	} else {
		matches := fuzzy.Find(word, c.candidates(word))
		if len(matches) == 0 {
			return input
		}

		c.lastMatches = c.lastMatches[:0]
		for _, match := range matches {
			c.lastMatches = append(c.lastMatches, match.Str)
		}

		c.cycle = 0
	}

	completed := prefix + c.lastMatches[c.cycle]
	c.lastInput = completed

	return completed
}

// candidates builds the completion corpus for the current word.
func (c *completer) candidates(word string) []string {
	if strings.HasPrefix(word, ":") {
		return directives
	}

	names := c.engine.Functions()
	ids := c.sheet.IDs()

	out := make([]string, 0, len(names)+len(ids))
	out = append(out, names...)
	out = append(out, ids...)

	return out
}

// splitLastWord cuts the input before its trailing identifier-like run.
func splitLastWord(input string) (prefix, word string) {
	end := len(input)

	start := end
	for start > 0 {
		r := input[start-1]

		isWord := r == '_' || r == ':' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !isWord {
			break
		}

		start--
	}

	return input[:start], input[start:end]
}
