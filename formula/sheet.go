package formula

import (
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// CellData is the snapshot of a single cell as seen by the engine.
type CellData struct {
	Value   Value
	Formula string
	Type    Kind
}

// Sheet supplies cell snapshots to the engine during evaluation. The engine
// treats the sheet as immutable for the duration of one Evaluate call:
// column indices are 0-based with column A at index 0.
type Sheet interface {
	CellAt(col, row int) (CellData, bool)
}

// MapSheet is an in-memory Sheet keyed by canonical cell ID. It is the
// concrete collaborator used by the CLI and tests.
type MapSheet struct {
	cells map[string]CellData
}

// NewMapSheet creates an empty sheet.
func NewMapSheet() *MapSheet {
	return &MapSheet{cells: make(map[string]CellData)}
}

// Set stores a raw value in a cell. A previously set formula is cleared.
func (s *MapSheet) Set(ref string, v Value) error {
	id, err := NormalizeRef(ref)
	if err != nil {
		return err
	}

	s.cells[id] = CellData{Value: v, Type: v.Kind}

	return nil
}

// SetFormula stores a formula in a cell. The leading '=' is optional.
func (s *MapSheet) SetFormula(ref, formula string) error {
	id, err := NormalizeRef(ref)
	if err != nil {
		return err
	}

	s.cells[id] = CellData{Formula: formula}

	return nil
}

// Clear removes a cell.
func (s *MapSheet) Clear(ref string) {
	id, err := NormalizeRef(ref)
	if err != nil {
		return
	}

	delete(s.cells, id)
}

// Cell returns the cell data stored under the given reference.
func (s *MapSheet) Cell(ref string) (CellData, bool) {
	id, err := NormalizeRef(ref)
	if err != nil {
		return CellData{}, false
	}

	cd, ok := s.cells[id]

	return cd, ok
}

// CellAt implements Sheet.
func (s *MapSheet) CellAt(col, row int) (CellData, bool) {
	cd, ok := s.cells[CellID(col, row)]

	return cd, ok
}

// IDs returns every populated cell ID in lexicographic order.
func (s *MapSheet) IDs() []string {
	ids := make([]string, 0, len(s.cells))
	for id := range s.cells {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// FormulaIDs returns the IDs of every cell holding a formula, in
// lexicographic order.
func (s *MapSheet) FormulaIDs() []string {
	var ids []string

	for id, cd := range s.cells {
		if cd.Formula != "" {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	return ids
}

// Len returns the number of populated cells.
func (s *MapSheet) Len() int { return len(s.cells) }

// LoadSheet reads a YAML mapping of cell IDs to values. Scalar strings
// beginning with '=' are stored as formulas; every other scalar becomes the
// cell's raw value.
//
//	A1: 10
//	A2: 20
//	A3: "=A1+A2"
func LoadSheet(r io.Reader) (*MapSheet, error) {
	var raw map[string]any

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return NewMapSheet(), nil
		}

		return nil, ErrReadSheet.Wrap(err)
	}

	sheet := NewMapSheet()

	for ref, cell := range raw {
		var err error

		switch cv := cell.(type) {
		case string:
			if strings.HasPrefix(cv, "=") {
				err = sheet.SetFormula(ref, cv)
			} else {
				err = sheet.Set(ref, Text(cv))
			}

		case bool:
			err = sheet.Set(ref, Boolean(cv))

		case int:
			err = sheet.Set(ref, Number(float64(cv)))

		case int64:
			err = sheet.Set(ref, Number(float64(cv)))

		case uint64:
			err = sheet.Set(ref, Number(float64(cv)))

		case float64:
			err = sheet.Set(ref, Number(cv))

		case nil:
			err = sheet.Set(ref, Null)

		default:
			err = ErrReadSheet.With(
				slog.String("cell", ref),
				slog.String("issue", "unsupported value type"),
			)
		}

		if err != nil {
			return nil, ErrReadSheet.Wrap(err)
		}
	}

	return sheet, nil
}

// WriteYAML encodes a mapping of cell IDs to display values. Formula cells
// are written with their formula text unless a computed override is given
// in results.
func (s *MapSheet) WriteYAML(w io.Writer, results map[string]Value) error {
	out := make(map[string]any, len(s.cells))

	for id, cd := range s.cells {
		if v, ok := results[id]; ok {
			out[id] = yamlValue(v)

			continue
		}

		if cd.Formula != "" {
			out[id] = cd.Formula

			continue
		}

		out[id] = yamlValue(cd.Value)
	}

	return yaml.NewEncoder(w).Encode(out)
}

func yamlValue(v Value) any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Str
	case KindBool:
		return v.Flag
	case KindDate:
		return v.Time
	default:
		return nil
	}
}
