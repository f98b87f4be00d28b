package repl

import (
	"strings"
	"testing"

	"github.com/okvern/cellform/formula"
)

func TestIsAssignment(t *testing.T) {
	for _, tt := range []struct {
		line string
		want bool
	}{
		{"A1: 5", true},
		{"a1: hello", true},
		{"BC12:\t=SUM(A1:A3)", true},
		{"A1:", true},
		{"=A1:B2", false},
		{"SUM(A1:B2)", false},
		{"A1:B2", false},
		{":help", false},
		{"1+1", false},
		{"A1 5", false},
	} {
		if got := isAssignment(tt.line); got != tt.want {
			t.Errorf("isAssignment(%q) = %t, want %t", tt.line, got, tt.want)
		}
	}
}

func TestLiteralValue(t *testing.T) {
	for _, tt := range []struct {
		input string
		want  formula.Value
	}{
		{"42", formula.Number(42)},
		{"-3.5", formula.Number(-3.5)},
		{"true", formula.Boolean(true)},
		{"FALSE", formula.Boolean(false)},
		{"epic", formula.Text("epic")},
		{"12 damage", formula.Text("12 damage")},
	} {
		got := literalValue(tt.input)
		if got.Kind != tt.want.Kind || got.Num != tt.want.Num ||
			got.Str != tt.want.Str || got.Flag != tt.want.Flag {
			t.Errorf("literalValue(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(formula.NewMapSheet(), "")
}

func TestAssignAndEvaluate(t *testing.T) {
	m := newTestModel(t)

	if out := m.assign("A1: 10"); !strings.Contains(out, "ok") {
		t.Fatalf("assign A1 = %q", out)
	}

	if out := m.assign("A2: =A1*3"); !strings.Contains(out, "ok") {
		t.Fatalf("assign A2 = %q", out)
	}

	if got := m.evaluate("=A2+1"); !strings.Contains(got, "31") {
		t.Fatalf("evaluate(=A2+1) = %q, want 31", got)
	}
}

func TestAssignCascadesToDependents(t *testing.T) {
	m := newTestModel(t)

	m.assign("A1: 10")
	m.assign("A2: =A1*2")

	out := m.assign("A1: 7")

	if !strings.Contains(out, "A2 = 14") {
		t.Fatalf("reassigning A1 reported %q, want refreshed A2 = 14", out)
	}
}

func TestAssignClearsCell(t *testing.T) {
	m := newTestModel(t)

	m.assign("A1: 10")
	m.assign("A1:")

	if _, ok := m.sheet.Cell("A1"); ok {
		t.Fatal("A1 still populated after clearing assignment")
	}
}

func TestEvaluateReportsErrors(t *testing.T) {
	m := newTestModel(t)

	out := m.evaluate("=NOPE(1)")

	if !strings.Contains(out, "unknown function") {
		t.Fatalf("evaluate(=NOPE(1)) = %q, want unknown function error", out)
	}
}

func TestDirectiveCellsListsSheet(t *testing.T) {
	m := newTestModel(t)

	if out := m.runDirective(":cells"); !strings.Contains(out, "empty sheet") {
		t.Fatalf(":cells on empty sheet = %q", out)
	}

	m.assign("A1: 5")
	m.assign("B1: =A1+1")

	out := m.runDirective(":cells")

	for _, want := range []string{"A1: 5", "B1: =A1+1"} {
		if !strings.Contains(out, want) {
			t.Errorf(":cells output %q missing %q", out, want)
		}
	}
}

func TestDirectiveUnknown(t *testing.T) {
	m := newTestModel(t)

	if out := m.runDirective(":bogus"); !strings.Contains(out, "unknown command") {
		t.Fatalf(":bogus = %q, want unknown command", out)
	}
}
