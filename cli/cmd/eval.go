package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okvern/cellform/formula"
	"github.com/okvern/cellform/log"
)

// Eval evaluates a single formula, optionally against a sheet file that
// provides cell values.
type Eval struct {
	Formula string `arg:"" help:"Formula to evaluate, with or without the leading '='" name:"formula"`
	Sheet   string `       help:"Sheet file providing cell values, or '-' for stdin"                 optional:"" short:"f"`
	Cell    string `       help:"Cell the formula is evaluated on behalf of"           default:"A1"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	sheet := formula.NewMapSheet()

	if e.Sheet != "" {
		loaded, err := OpenSheet(e.Sheet)
		if err != nil {
			return err
		}

		sheet = loaded

		log.DebugContext(ctx, "sheet loaded",
			slog.String("path", e.Sheet),
			slog.Int("cells", sheet.Len()),
		)
	}

	result, err := NewEngine().Evaluate(e.Cell, e.Formula, sheet)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout(ctx), result.AsText())

	return err
}
