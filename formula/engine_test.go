package formula

import (
	"errors"
	"math"
	"testing"
)

func mustSheet(t *testing.T, cells map[string]any) *MapSheet {
	t.Helper()

	sheet := NewMapSheet()

	for ref, v := range cells {
		var err error

		switch cv := v.(type) {
		case float64:
			err = sheet.Set(ref, Number(cv))
		case int:
			err = sheet.Set(ref, Number(float64(cv)))
		case string:
			if len(cv) > 0 && cv[0] == '=' {
				err = sheet.SetFormula(ref, cv)
			} else {
				err = sheet.Set(ref, Text(cv))
			}
		case bool:
			err = sheet.Set(ref, Boolean(cv))
		default:
			t.Fatalf("unsupported cell value %T", v)
		}

		if err != nil {
			t.Fatal(err)
		}
	}

	return sheet
}

// valueEq compares scalar values field by field.
func valueEq(a, b Value) bool {
	return a.Kind == b.Kind &&
		a.Num == b.Num &&
		a.Str == b.Str &&
		a.Flag == b.Flag &&
		a.Time.Equal(b.Time)
}

func evalNumber(t *testing.T, e *Engine, formula string, sheet *MapSheet) float64 {
	t.Helper()

	v, err := e.Evaluate("Z99", formula, sheet)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", formula, err)
	}

	if v.Kind != KindNumber {
		t.Fatalf("Evaluate(%q) = %v, want number", formula, v)
	}

	return v.Num
}

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
	}{
		{"=2+3*4", 14},
		{"=(2+3)*4", 20},
		{"=2^3", 8},
		{"=2^3^2", 64}, // left associative, like the other operators
		{"=-3+5", 2},
		{"=10-2-3", 5},
		{"=9/3/3", 1},
		{"=1.5*4", 6},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			e := New()
			sheet := NewMapSheet()

			got := evalNumber(t, e, tt.formula, sheet)
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestEvaluateCoercion(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": "5",   // numeric text
		"A2": "abc", // non-numeric text
		"A3": true,
	})

	tests := []struct {
		formula string
		want    Value
	}{
		{`="5"+2`, Number(7)},
		{"=A1*2", Number(10)},
		{"=A2+1", Number(1)}, // unparseable text coerces to 0
		{"=A3+1", Number(2)}, // TRUE coerces to 1
		{`="a"&1`, Text("a1")},
		{`="a"&"b"&"c"`, Text("abc")},
		{`="b">"a"`, Boolean(true)},
		{`="a"="A"`, Boolean(false)},
		{"=1=1", Boolean(true)},
		{"=2<>2", Boolean(false)},
		{"=B99+1", Number(1)}, // missing cell is null, coerces to 0
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := e.Evaluate("Z99", tt.formula, sheet)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.formula, err)
			}

			if !valueEq(got, tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	for _, formula := range []string{"=10/0", "=0/0", "=1/(2-2)"} {
		t.Run(formula, func(t *testing.T) {
			e := New()

			_, err := e.Evaluate("A1", formula, NewMapSheet())
			if !errors.Is(err, ErrDivisionByZero) {
				t.Errorf("err = %v, want ErrDivisionByZero", err)
			}
		})
	}
}

func TestEvaluateUnknownFunction(t *testing.T) {
	e := New()

	_, err := e.Evaluate("A1", "=NOPE(1)", NewMapSheet())
	if !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("err = %v, want ErrUnknownFunction", err)
	}
}

func TestEvaluateTopLevelRange(t *testing.T) {
	e := New()

	_, err := e.Evaluate("D1", "=A1:B2", NewMapSheet())
	if !errors.Is(err, ErrInvalidRangeUsage) {
		t.Fatalf("err = %v, want ErrInvalidRangeUsage", err)
	}
}

func TestEvaluateSelfReference(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{"A1": "=A1"})

	_, err := e.Evaluate("A1", "=A1", sheet)
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("err = %v, want ErrCircularReference", err)
	}
}

func TestEvaluateMutualCycle(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": "=B1",
		"B1": "=A1",
	})

	_, err := e.Evaluate("A1", "=B1", sheet)
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("err = %v, want ErrCircularReference", err)
	}
}

func TestEvaluateCycleRecovery(t *testing.T) {
	// After a detected cycle the engine must keep working: breaking the
	// cycle by editing one formula makes the chain evaluable again.
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": "=B1",
		"B1": "=A1",
	})

	if _, err := e.Evaluate("A1", "=B1", sheet); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("err = %v, want ErrCircularReference", err)
	}

	if err := sheet.Set("B1", Number(4)); err != nil {
		t.Fatal(err)
	}

	v, err := e.Evaluate("A1", "=B1", sheet)
	if err != nil {
		t.Fatalf("Evaluate after breaking cycle: %v", err)
	}

	if v.Num != 4 {
		t.Errorf("A1 = %v, want 4", v.Num)
	}
}

func TestEvaluateMaxDepth(t *testing.T) {
	e := New(WithMaxDepth(1))
	sheet := mustSheet(t, map[string]any{"A2": "=1+1"})

	_, err := e.Evaluate("A1", "=A2", sheet)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("err = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestEvaluateFormulaChain(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": 10,
		"A2": "=A1*2",
		"A3": "=A2+5",
	})

	v, err := e.Evaluate("A3", "=A2+5", sheet)
	if err != nil {
		t.Fatal(err)
	}

	if v.Num != 25 {
		t.Errorf("A3 = %v, want 25", v.Num)
	}
}

func TestEvaluateParseCache(t *testing.T) {
	e := New()
	sheet := NewMapSheet()

	if _, err := e.Evaluate("A1", "=1+2", sheet); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Evaluate("B1", "=1+2", sheet); err != nil {
		t.Fatal(err)
	}

	stats := e.GetStats()
	if stats.MissCount != 1 || stats.HitCount != 1 {
		t.Errorf("parse cache hits=%d misses=%d, want 1 and 1",
			stats.HitCount, stats.MissCount)
	}
}

func TestEvaluateFailureLeavesNoCacheEntry(t *testing.T) {
	e := New()

	if _, err := e.Evaluate("A1", "=1/0", NewMapSheet()); err == nil {
		t.Fatal("expected error")
	}

	if _, ok := e.Get("A1"); ok {
		t.Error("failed evaluation must not cache a value")
	}
}

func TestRecalculationEndToEnd(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": 10,
		"A2": 20,
		"A3": "=A1+A2",
	})

	v, err := e.Evaluate("A3", "=A1+A2", sheet)
	if err != nil {
		t.Fatal(err)
	}

	if v.Num != 30 {
		t.Fatalf("A3 = %v, want 30", v.Num)
	}

	// Edit A1, cascade, and recalculate dependents without re-supplying
	// the formula text by hand.
	if err := sheet.Set("A1", Number(15)); err != nil {
		t.Fatal(err)
	}

	e.InvalidateCascade("A1")

	if _, ok := e.Get("A3"); ok {
		t.Fatal("A3 should have been invalidated")
	}

	deps := e.Dependents("A1")
	if _, ok := deps["A3"]; !ok {
		t.Fatalf("Dependents(A1) = %v, want to contain A3", deps)
	}

	ids := make([]string, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}

	failures := e.BatchRecalculate(ids, func(id string) error {
		cd, ok := sheet.Cell(id)
		if !ok || cd.Formula == "" {
			return nil
		}

		_, err := e.Evaluate(id, cd.Formula, sheet)

		return err
	})

	if failures != nil {
		t.Fatalf("failures = %v", failures)
	}

	got, ok := e.Get("A3")
	if !ok {
		t.Fatal("A3 missing from cache after recalculation")
	}

	if got.Num != 35 {
		t.Errorf("A3 = %v, want 35", got.Num)
	}
}

func TestRegisterCustomFunction(t *testing.T) {
	e := New()

	e.Register("double", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Null, errArgCount("DOUBLE", "1", len(args))
		}

		return Number(args[0].NumberOr(0) * 2), nil
	})

	v, err := e.Evaluate("A1", "=DOUBLE(21)", NewMapSheet())
	if err != nil {
		t.Fatal(err)
	}

	if v.Num != 42 {
		t.Errorf("DOUBLE(21) = %v, want 42", v.Num)
	}
}

func TestEvaluateFunctionOverCells(t *testing.T) {
	e := New()
	sheet := mustSheet(t, map[string]any{
		"A1": 1,
		"A2": 2,
		"A3": 3,
		"B1": 10,
	})

	got := evalNumber(t, e, "=SUM(A1:A3,B1)", sheet)
	if got != 16 {
		t.Errorf("SUM(A1:A3,B1) = %v, want 16", got)
	}

	avg := evalNumber(t, e, "=AVERAGE(A1:A3)", sheet)
	if math.Abs(avg-2) > 1e-12 {
		t.Errorf("AVERAGE(A1:A3) = %v, want 2", avg)
	}
}
