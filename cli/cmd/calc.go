package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/okvern/cellform/formula"
	"github.com/okvern/cellform/log"
)

// Calc loads a sheet, recalculates every formula cell, and writes the
// sheet back out with formulas replaced by their computed values.
type Calc struct {
	Sheet  string `arg:"" help:"Sheet file to recalculate, or '-' for stdin" name:"sheet"`
	Output string `       help:"Write the result to a file instead of stdout" optional:"" short:"o" type:"path"`
	Stats  bool   `       help:"Log cache statistics after recalculation"`
}

// Run executes the calc command.
func (c *Calc) Run(ctx context.Context) error {
	sheet, err := OpenSheet(c.Sheet)
	if err != nil {
		return err
	}

	engine := NewEngine()
	ids := sheet.FormulaIDs()

	log.DebugContext(ctx, "recalculating sheet",
		slog.String("path", c.Sheet),
		slog.Int("cells", sheet.Len()),
		slog.Int("formulas", len(ids)),
	)

	// Evaluation pulls referenced formula cells recursively, so per-cell
	// order does not affect results; the batch keeps failures isolated.
	failures := engine.BatchRecalculate(ids, func(id string) error {
		cd, ok := sheet.Cell(id)
		if !ok || cd.Formula == "" {
			return nil
		}

		_, err := engine.Evaluate(id, cd.Formula, sheet)

		return err
	})

	results := make(map[string]formula.Value, len(ids))

	for _, id := range ids {
		if v, ok := engine.Get(id); ok {
			results[id] = v
		}
	}

	// Failed cells surface in the output grid rather than vanishing.
	for id, ferr := range failures {
		results[id] = formula.Text("#ERROR: " + ferr.Error())

		log.WarnContext(ctx, "cell failed",
			slog.String("cell", id),
			slog.Any("error", ferr),
		)
	}

	if c.Stats {
		stats := engine.GetStats()
		log.InfoContext(ctx, "recalculation stats",
			slog.Int("entries", stats.Entries),
			slog.Int("edges", stats.Edges),
			slog.Uint64("parse_hits", stats.HitCount),
			slog.Uint64("parse_misses", stats.MissCount),
		)
	}

	out := stdout(ctx)

	if c.Output != "" {
		file, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer file.Close()

		out = file
	}

	return sheet.WriteYAML(out, results)
}
