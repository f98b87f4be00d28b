package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/okvern/cellform/log"
)

// starterSheet demonstrates references, aggregates, and the game-balance
// functions.
const starterSheet = `# cellform starter sheet
#
# Scalar cells hold values; cells whose string value begins with '='
# hold formulas. Run "cellform calc" on this file to evaluate them.

# Unit stats
A1: 120       # attack
A2: 45        # defense
A3: "=DAMAGE_CALC(A1,A2)"

# Rarity scaling
B1: epic
B2: "=RARITY_BONUS(B1)"
B3: "=A3*B2"

# Leveling
C1: 10        # level
C2: "=STAT_SCALE(C1,100,12,\"exponential\")"
C3: "=EXP_CURVE(C1)"

# Aggregates
D1: "=SUM(A1:A2)"
D2: "=AVERAGE(A1:A2)"
`

// Init writes a starter sheet file.
type Init struct {
	Path  string `arg:"" help:"Destination file" default:"sheet.yaml" optional:"" type:"path"`
	Force bool   `       help:"Overwrite an existing file"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	if !i.Force {
		if _, err := os.Stat(i.Path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", i.Path)
		}
	}

	if err := os.WriteFile(i.Path, []byte(starterSheet), 0o644); err != nil {
		return err
	}

	log.InfoContext(ctx, "starter sheet written", slog.String("path", i.Path))

	return nil
}
