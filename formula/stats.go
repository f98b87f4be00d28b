package formula

import (
	"math"
	"sort"
)

// fnMedian returns the middle value of the sorted inputs, averaging the
// two central values when the count is even.
func fnMedian(args []Value) (Value, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return Number(0), nil
	}

	sort.Float64s(nums)

	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return Number(nums[mid]), nil
	}

	return Number((nums[mid-1] + nums[mid]) / 2), nil
}

// fnMode returns the most frequent value. Ties break toward the value
// seen first; if no value repeats, the result is Null.
func fnMode(args []Value) (Value, error) {
	nums := numbersOf(args)

	counts := make(map[float64]int, len(nums))
	best := 0.0
	bestCount := 1

	for _, n := range nums {
		counts[n]++

		if counts[n] > bestCount {
			best = n
			bestCount = counts[n]
		}
	}

	if bestCount < 2 {
		return Null, nil
	}

	return Number(best), nil
}

// variance computes the mean squared deviation, dividing by n-1 when
// sample is true and by n otherwise.
func variance(nums []float64, sample bool) (float64, bool) {
	n := len(nums)

	if sample && n < 2 {
		return 0, false
	}

	if !sample && n < 1 {
		return 0, false
	}

	mean := 0.0
	for _, v := range nums {
		mean += v
	}

	mean /= float64(n)

	sq := 0.0

	for _, v := range nums {
		d := v - mean
		sq += d * d
	}

	if sample {
		return sq / float64(n-1), true
	}

	return sq / float64(n), true
}

func fnVar(args []Value) (Value, error) {
	v, ok := variance(numbersOf(args), true)
	if !ok {
		return Null, nil
	}

	return Number(v), nil
}

func fnVarP(args []Value) (Value, error) {
	v, ok := variance(numbersOf(args), false)
	if !ok {
		return Null, nil
	}

	return Number(v), nil
}

func fnStdev(args []Value) (Value, error) {
	v, ok := variance(numbersOf(args), true)
	if !ok {
		return Null, nil
	}

	return Number(math.Sqrt(v)), nil
}

func fnStdevP(args []Value) (Value, error) {
	v, ok := variance(numbersOf(args), false)
	if !ok {
		return Null, nil
	}

	return Number(math.Sqrt(v)), nil
}
