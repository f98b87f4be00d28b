package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/okvern/cellform/formula"
	"github.com/okvern/cellform/log"
)

// contextKey stores a [kong.Context] value in a [context.Context].
type contextKey struct{}

// WithContext returns a context carrying the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the output writer for command results.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special path indicating standard input.
const stdinSource = "-"

// OpenSheet loads a sheet from the named YAML file, or from stdin when
// the path is "-". File reads go through an asynchronous read-ahead
// buffer.
func OpenSheet(path string) (*formula.MapSheet, error) {
	if path == stdinSource {
		return formula.LoadSheet(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, formula.ErrReadSheet.Wrap(err)
	}
	defer file.Close()

	ra := readahead.NewReader(file)
	defer ra.Close()

	return formula.LoadSheet(ra)
}

// NewEngine builds an evaluation engine attached to the default logger.
func NewEngine() *formula.Engine {
	return formula.New(formula.WithLogger(log.Default()))
}
