package formula

import (
	"log/slog"
	"strconv"
	"strings"
)

// Cell references use 0-based column and row indices internally. The surface
// syntax is 1-based for rows ("A1" is column 0, row 0) and base-26 for
// columns with 1-offset digits (A=0, ..., Z=25, AA=26).

// ColumnIndex converts a column letter sequence to its 0-based index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, ErrInvalidReference.With(slog.String("column", letters))
	}

	index := 0

	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, ErrInvalidReference.With(slog.String("column", letters))
		}

		index = index*26 + int(r-'A') + 1
	}

	return index - 1, nil
}

// ColumnLetters converts a 0-based column index to its letter sequence.
func ColumnLetters(index int) string {
	n := index + 1

	var b []byte

	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}

	return string(b)
}

// ParseRef splits a cell reference like "B12" into its 0-based column and
// row indices. The input is case-insensitive.
func ParseRef(ref string) (col, row int, err error) {
	s := strings.ToUpper(strings.TrimSpace(ref))

	split := 0
	for split < len(s) && s[split] >= 'A' && s[split] <= 'Z' {
		split++
	}

	if split == 0 || split == len(s) {
		return 0, 0, ErrInvalidReference.With(slog.String("ref", ref))
	}

	col, err = ColumnIndex(s[:split])
	if err != nil {
		return 0, 0, err
	}

	row = 0

	for i := split; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, ErrInvalidReference.With(slog.String("ref", ref))
		}

		row = row*10 + int(s[i]-'0')
	}

	if row < 1 {
		return 0, 0, ErrInvalidReference.With(slog.String("ref", ref))
	}

	return col, row - 1, nil
}

// CellID builds the canonical cell identifier for 0-based column and row
// indices.
func CellID(col, row int) string {
	return ColumnLetters(col) + strconv.Itoa(row+1)
}

// NormalizeRef validates a cell reference and returns its canonical
// uppercase form.
func NormalizeRef(ref string) (string, error) {
	col, row, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	return CellID(col, row), nil
}

// isCellRef reports whether s matches the cell reference syntax
// ^[A-Z]+[0-9]+$ after uppercasing.
func isCellRef(s string) bool {
	_, _, err := ParseRef(s)

	return err == nil
}
