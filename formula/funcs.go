package formula

import (
	"log/slog"
	"math"
	"sort"
	"strings"
)

// Func is a formula function. Arguments arrive already evaluated; range
// arguments keep their Array shape so aggregates can flatten them.
type Func func(args []Value) (Value, error)

// flatten expands array arguments depth-first into a single slice of
// scalar values, preserving argument order.
func flatten(args []Value) []Value {
	out := make([]Value, 0, len(args))

	for _, arg := range args {
		if arg.Kind == KindArray {
			out = append(out, flatten(arg.List)...)

			continue
		}

		out = append(out, arg)
	}

	return out
}

// numbersOf flattens args and coerces each scalar to a number, empty
// values included as 0.
func numbersOf(args []Value) []float64 {
	flat := flatten(args)

	nums := make([]float64, 0, len(flat))
	for _, v := range flat {
		nums = append(nums, v.NumberOr(0))
	}

	return nums
}

func errArgCount(name string, want string, got int) error {
	return ErrParse.
		With(slog.String("function", name)).
		With(slog.String("want_args", want)).
		With(slog.Int("got_args", got))
}

// registerBuiltins installs the full standard function library.
func registerBuiltins(e *Engine) {
	// Aggregates.
	e.Register("SUM", fnSum)
	e.Register("AVERAGE", fnAverage)
	e.Register("MIN", fnMin)
	e.Register("MAX", fnMax)
	e.Register("COUNT", fnCount)
	e.Register("COUNTA", fnCountA)

	// Numeric.
	e.Register("ROUND", fnRound)
	e.Register("CEILING", fnCeiling)
	e.Register("FLOOR", fnFloor)
	e.Register("ABS", fnAbs)
	e.Register("SQRT", fnSqrt)
	e.Register("POWER", fnPower)

	// Logical.
	e.Register("IF", fnIf)
	e.Register("AND", fnAnd)
	e.Register("OR", fnOr)
	e.Register("NOT", fnNot)

	// Text.
	e.Register("CONCATENATE", fnConcatenate)
	e.Register("LEFT", fnLeft)
	e.Register("RIGHT", fnRight)
	e.Register("MID", fnMid)
	e.Register("UPPER", fnUpper)
	e.Register("LOWER", fnLower)
	e.Register("LEN", fnLen)

	// Statistics.
	e.Register("MEDIAN", fnMedian)
	e.Register("MODE", fnMode)
	e.Register("STDEV", fnStdev)
	e.Register("STDEVP", fnStdevP)
	e.Register("VAR", fnVar)
	e.Register("VARP", fnVarP)

	// Game balance.
	e.Register("DAMAGE_CALC", fnDamageCalc)
	e.Register("RARITY_BONUS", fnRarityBonus)
	e.Register("STAT_SCALE", fnStatScale)
	e.Register("DROP_RATE", fnDropRate)
	e.Register("EXP_CURVE", fnExpCurve)
	e.Register("GACHA_RATE", fnGachaRate)
}

// Functions returns the names of all registered functions in sorted order.
func (e *Engine) Functions() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func fnSum(args []Value) (Value, error) {
	total := 0.0
	for _, n := range numbersOf(args) {
		total += n
	}

	return Number(total), nil
}

// fnAverage divides the sum by the count of all supplied values, empty
// cells counted as zeros. An empty argument list averages to 0 rather
// than erroring.
func fnAverage(args []Value) (Value, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return Number(0), nil
	}

	total := 0.0
	for _, n := range nums {
		total += n
	}

	return Number(total / float64(len(nums))), nil
}

func fnMin(args []Value) (Value, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return Number(0), nil
	}

	low := nums[0]
	for _, n := range nums[1:] {
		low = math.Min(low, n)
	}

	return Number(low), nil
}

func fnMax(args []Value) (Value, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return Number(0), nil
	}

	high := nums[0]
	for _, n := range nums[1:] {
		high = math.Max(high, n)
	}

	return Number(high), nil
}

// fnCount counts numeric-coercible values: numbers, booleans, and text
// that parses as a number.
func fnCount(args []Value) (Value, error) {
	count := 0

	for _, v := range flatten(args) {
		if _, ok := v.AsNumber(); ok {
			count++
		}
	}

	return Number(float64(count)), nil
}

// fnCountA counts every non-empty value regardless of type.
func fnCountA(args []Value) (Value, error) {
	count := 0

	for _, v := range flatten(args) {
		if !v.IsEmpty() {
			count++
		}
	}

	return Number(float64(count)), nil
}

// fnRound rounds half away from zero at the given number of decimal
// places, defaulting to 0.
func fnRound(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, errArgCount("ROUND", "1..2", len(args))
	}

	v := args[0].NumberOr(0)
	decimals := 0.0

	if len(args) == 2 {
		decimals = args[1].NumberOr(0)
	}

	scale := math.Pow(10, math.Trunc(decimals))

	return Number(math.Round(v*scale) / scale), nil
}

func fnCeiling(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("CEILING", "1", len(args))
	}

	return Number(math.Ceil(args[0].NumberOr(0))), nil
}

func fnFloor(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("FLOOR", "1", len(args))
	}

	return Number(math.Floor(args[0].NumberOr(0))), nil
}

func fnAbs(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("ABS", "1", len(args))
	}

	return Number(math.Abs(args[0].NumberOr(0))), nil
}

// fnSqrt returns Null for negative input instead of NaN.
func fnSqrt(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("SQRT", "1", len(args))
	}

	n := args[0].NumberOr(0)
	if n < 0 {
		return Null, nil
	}

	return Number(math.Sqrt(n)), nil
}

func fnPower(args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArgCount("POWER", "2", len(args))
	}

	return Number(math.Pow(args[0].NumberOr(0), args[1].NumberOr(0))), nil
}

// fnIf selects between two eagerly evaluated branches. A missing else
// branch yields FALSE, matching the condition's own falsy result.
func fnIf(args []Value) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Null, errArgCount("IF", "2..3", len(args))
	}

	if args[0].AsBool() {
		return args[1], nil
	}

	if len(args) == 3 {
		return args[2], nil
	}

	return Boolean(false), nil
}

func fnAnd(args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, errArgCount("AND", "1+", len(args))
	}

	for _, v := range flatten(args) {
		if !v.AsBool() {
			return Boolean(false), nil
		}
	}

	return Boolean(true), nil
}

func fnOr(args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, errArgCount("OR", "1+", len(args))
	}

	for _, v := range flatten(args) {
		if v.AsBool() {
			return Boolean(true), nil
		}
	}

	return Boolean(false), nil
}

func fnNot(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("NOT", "1", len(args))
	}

	return Boolean(!args[0].AsBool()), nil
}

func fnConcatenate(args []Value) (Value, error) {
	var sb strings.Builder

	for _, v := range flatten(args) {
		sb.WriteString(v.AsText())
	}

	return Text(sb.String()), nil
}

// fnLeft returns the first n characters of the text, defaulting to 1.
func fnLeft(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, errArgCount("LEFT", "1..2", len(args))
	}

	s := []rune(args[0].AsText())

	n := 1
	if len(args) == 2 {
		n = int(args[1].NumberOr(0))
	}

	if n < 0 {
		n = 0
	}

	if n > len(s) {
		n = len(s)
	}

	return Text(string(s[:n])), nil
}

// fnRight returns the last n characters of the text, defaulting to 1.
func fnRight(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Null, errArgCount("RIGHT", "1..2", len(args))
	}

	s := []rune(args[0].AsText())

	n := 1
	if len(args) == 2 {
		n = int(args[1].NumberOr(0))
	}

	if n < 0 {
		n = 0
	}

	if n > len(s) {
		n = len(s)
	}

	return Text(string(s[len(s)-n:])), nil
}

// fnMid extracts count characters starting at a 1-based position. Out of
// range positions yield empty text.
func fnMid(args []Value) (Value, error) {
	if len(args) != 3 {
		return Null, errArgCount("MID", "3", len(args))
	}

	s := []rune(args[0].AsText())
	start := int(args[1].NumberOr(0)) - 1
	count := int(args[2].NumberOr(0))

	if start < 0 || start >= len(s) || count <= 0 {
		return Text(""), nil
	}

	end := start + count
	if end > len(s) {
		end = len(s)
	}

	return Text(string(s[start:end])), nil
}

func fnUpper(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("UPPER", "1", len(args))
	}

	return Text(strings.ToUpper(args[0].AsText())), nil
}

func fnLower(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("LOWER", "1", len(args))
	}

	return Text(strings.ToLower(args[0].AsText())), nil
}

func fnLen(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("LEN", "1", len(args))
	}

	return Number(float64(len([]rune(args[0].AsText())))), nil
}
