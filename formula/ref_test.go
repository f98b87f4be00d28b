package formula

import (
	"errors"
	"testing"
)

func TestColumnRoundTrip(t *testing.T) {
	tests := []struct {
		letters string
		index   int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AZ", 51},
		{"BA", 52},
		{"ZZ", 701},
		{"AAA", 702},
	}

	for _, tt := range tests {
		t.Run(tt.letters, func(t *testing.T) {
			idx, err := ColumnIndex(tt.letters)
			if err != nil {
				t.Fatal(err)
			}

			if idx != tt.index {
				t.Errorf("ColumnIndex(%s) = %d, want %d", tt.letters, idx, tt.index)
			}

			if got := ColumnLetters(tt.index); got != tt.letters {
				t.Errorf("ColumnLetters(%d) = %s, want %s", tt.index, got, tt.letters)
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref      string
		col, row int
	}{
		{"A1", 0, 0},
		{"B12", 1, 11},
		{"b12", 1, 11},
		{" AA100 ", 26, 99},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, row, err := ParseRef(tt.ref)
			if err != nil {
				t.Fatal(err)
			}

			if col != tt.col || row != tt.row {
				t.Errorf("ParseRef(%q) = (%d,%d), want (%d,%d)",
					tt.ref, col, row, tt.col, tt.row)
			}
		})
	}
}

func TestParseRefErrors(t *testing.T) {
	for _, ref := range []string{"", "A", "1", "1A", "A0", "A1B", "A-1"} {
		t.Run(ref, func(t *testing.T) {
			_, _, err := ParseRef(ref)
			if !errors.Is(err, ErrInvalidReference) {
				t.Errorf("ParseRef(%q) err = %v, want ErrInvalidReference", ref, err)
			}
		})
	}
}

func TestNormalizeRef(t *testing.T) {
	got, err := NormalizeRef(" b12 ")
	if err != nil {
		t.Fatal(err)
	}

	if got != "B12" {
		t.Errorf("NormalizeRef = %q, want B12", got)
	}
}

func TestCellID(t *testing.T) {
	if got := CellID(1, 11); got != "B12" {
		t.Errorf("CellID(1,11) = %q, want B12", got)
	}
}
