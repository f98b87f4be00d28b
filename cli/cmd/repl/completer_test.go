package repl

import (
	"strings"
	"testing"

	"github.com/okvern/cellform/cli/cmd"
	"github.com/okvern/cellform/formula"
)

func TestSplitLastWord(t *testing.T) {
	for _, tt := range []struct {
		input, prefix, word string
	}{
		{"", "", ""},
		{"SUM", "", "SUM"},
		{"=SUM", "=", "SUM"},
		{"=SUM(A1,DAM", "=SUM(A1,", "DAM"},
		{"=1+STAT_SC", "=1+", "STAT_SC"},
		{":ce", "", ":ce"},
		{"=A1:B", "=", "A1:B"},
		{"=SUM(", "=SUM(", ""},
	} {
		prefix, word := splitLastWord(tt.input)
		if prefix != tt.prefix || word != tt.word {
			t.Errorf("splitLastWord(%q) = %q, %q, want %q, %q",
				tt.input, prefix, word, tt.prefix, tt.word)
		}
	}
}

func newTestCompleter(t *testing.T) *completer {
	t.Helper()

	sheet := formula.NewMapSheet()
	if err := sheet.Set("A1", formula.Number(1)); err != nil {
		t.Fatal(err)
	}

	if err := sheet.Set("B7", formula.Number(2)); err != nil {
		t.Fatal(err)
	}

	return newCompleter(cmd.NewEngine(), sheet)
}

func TestCompleteFunctionName(t *testing.T) {
	c := newTestCompleter(t)

	got := c.complete("=DAMAGE_CA")

	if got != "=DAMAGE_CALC" {
		t.Fatalf("complete(=DAMAGE_CA) = %q, want =DAMAGE_CALC", got)
	}
}

func TestCompleteCellID(t *testing.T) {
	c := newTestCompleter(t)

	got := c.complete("=SUM(B7")

	if got != "=SUM(B7" {
		t.Fatalf("complete(=SUM(B7) = %q, want it kept", got)
	}
}

func TestCompleteDirective(t *testing.T) {
	c := newTestCompleter(t)

	got := c.complete(":ce")

	if got != ":cells" {
		t.Fatalf("complete(:ce) = %q, want :cells", got)
	}
}

func TestCompleteNoMatchLeavesInput(t *testing.T) {
	c := newTestCompleter(t)

	const input = "=ZZZZQQ"

	if got := c.complete(input); got != input {
		t.Fatalf("complete(%q) = %q, want unchanged", input, got)
	}
}

func TestCompleteCycles(t *testing.T) {
	c := newTestCompleter(t)

	seen := map[string]bool{}

	input := "=ST"
	for range 4 {
		input = c.complete(input)
		seen[input] = true
	}

	if len(seen) < 2 {
		t.Fatalf("cycling produced %v, want multiple distinct completions", seen)
	}

	for got := range seen {
		if !strings.HasPrefix(got, "=") {
			t.Errorf("completion %q lost its prefix", got)
		}
	}
}

func TestCompleteEmptyWord(t *testing.T) {
	c := newTestCompleter(t)

	if got := c.complete("=1+"); got != "=1+" {
		t.Fatalf("complete(=1+) = %q, want unchanged", got)
	}
}
