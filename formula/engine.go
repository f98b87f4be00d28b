package formula

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/okvern/cellform/log"
)

// DefaultMaxDepth is the default maximum depth of nested evaluation. The
// recursion is bounded by formula nesting and dependency-chain length; the
// guard exists so a pathological sheet fails cleanly instead of overflowing
// the stack.
const DefaultMaxDepth = 100

// Engine evaluates formulas against a sheet snapshot while maintaining the
// dependency graph and value cache. Each Engine instance is fully
// independent: sessions own their engine, and tests never share state.
//
// The engine is single-threaded by contract. Callers must serialize
// Evaluate, cache mutations, and BatchRecalculate; no internal locking is
// provided.
type Engine struct {
	opts   options
	logger log.Logger
	clock  func() time.Time

	funcs map[string]Func
	graph *depGraph
	cache map[string]cacheEntry
	asts  map[uint64]*Node

	// inFlight marks cells currently mid-evaluation on the call stack.
	inFlight map[string]struct{}
	depth    int

	hits   uint64
	misses uint64
}

// options holds Engine configuration.
type options struct {
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the maximum nesting depth for recursive evaluation.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.opts.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock sets the time source used to stamp cache entries. Tests use a
// fake clock to exercise age-based eviction deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New creates an Engine with the full built-in function library registered.
func New(opts ...Option) *Engine {
	e := &Engine{
		opts:     options{maxDepth: DefaultMaxDepth},
		clock:    time.Now,
		funcs:    make(map[string]Func),
		graph:    newDepGraph(),
		cache:    make(map[string]cacheEntry),
		asts:     make(map[uint64]*Node),
		inFlight: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	registerBuiltins(e)

	return e
}

// Register adds or replaces a function in the engine's registry. Names are
// case-insensitive and stored uppercase.
func (e *Engine) Register(name string, fn Func) {
	e.funcs[strings.ToUpper(name)] = fn
}

// Evaluate parses and evaluates a formula on behalf of the given cell,
// resolving references against the sheet snapshot. On success the result is
// cached along with the cell's dependency set; on failure no cache entry is
// written and the error propagates to the caller.
func (e *Engine) Evaluate(cellID, formulaText string, sheet Sheet) (Value, error) {
	id, err := NormalizeRef(cellID)
	if err != nil {
		return Null, err
	}

	// Reentrancy guard: the cell is already mid-evaluation somewhere up the
	// current call stack.
	if _, busy := e.inFlight[id]; busy {
		return Null, ErrCircularReference.With(slog.String("cell", id))
	}

	if e.depth >= e.opts.maxDepth {
		return Null, ErrMaxDepthExceeded.
			With(slog.String("cell", id)).
			With(slog.Int("max_depth", e.opts.maxDepth))
	}

	e.inFlight[id] = struct{}{}
	e.depth++

	defer func() {
		delete(e.inFlight, id)
		e.depth--
	}()

	ast, err := e.parse(formulaText)
	if err != nil {
		return Null, err
	}

	// Rebuild this cell's forward edges wholesale, then scan the whole graph
	// from this cell. The scan is not redundant with the reentrancy guard:
	// it catches cycles the edge update itself introduced, before the call
	// stack ever walks them.
	refs := ExtractReferences(ast)
	e.graph.setEdges(id, refs)

	if e.graph.hasCycleFrom(id) {
		return Null, ErrCircularReference.
			With(slog.String("cell", id)).
			With(slog.String("detector", "graph"))
	}

	e.logger.Trace(
		"evaluate",
		slog.String("cell", id),
		slog.Int("refs", len(refs)),
		slog.Int("depth", e.depth),
	)

	result, err := e.eval(ast, sheet)
	if err != nil {
		return Null, err
	}

	// Arrays are only legal nested inside function calls.
	if result.Kind == KindArray {
		return Null, ErrInvalidRangeUsage.With(slog.String("cell", id))
	}

	deps := make([]string, 0, len(refs))
	for ref := range refs {
		deps = append(deps, ref)
	}

	e.cache[id] = cacheEntry{value: result, storedAt: e.clock(), deps: deps}

	return result, nil
}

// parse returns the AST for a formula, reusing a previous parse of the
// identical source when available.
func (e *Engine) parse(formulaText string) (*Node, error) {
	key := xxh3.HashString(formulaText)

	if ast, ok := e.asts[key]; ok {
		e.hits++

		return ast, nil
	}

	e.misses++

	ast, err := Parse(formulaText)
	if err != nil {
		return nil, err
	}

	e.asts[key] = ast

	return ast, nil
}

// eval walks the AST, resolving references against the sheet.
func (e *Engine) eval(n *Node, sheet Sheet) (Value, error) {
	switch n.Kind {
	case NodeLiteral:
		return n.Value, nil

	case NodeCellRef:
		return e.resolveCell(n.Ref, sheet)

	case NodeRangeRef:
		ids := expandRange(n.Start, n.End)
		items := make([]Value, 0, len(ids))

		for _, id := range ids {
			v, err := e.resolveCell(id, sheet)
			if err != nil {
				return Null, err
			}

			items = append(items, v)
		}

		return Array(items...), nil

	case NodeUnary:
		child, err := e.eval(n.Child, sheet)
		if err != nil {
			return Null, err
		}

		if n.Op == "-" {
			return Number(-child.NumberOr(0)), nil
		}

		return Number(child.NumberOr(0)), nil

	case NodeBinary:
		left, err := e.eval(n.Left, sheet)
		if err != nil {
			return Null, err
		}

		right, err := e.eval(n.Right, sheet)
		if err != nil {
			return Null, err
		}

		return applyBinary(n.Op, left, right)

	case NodeCall:
		fn, ok := e.funcs[n.Name]
		if !ok {
			return Null, ErrUnknownFunction.With(slog.String("function", n.Name))
		}

		args := make([]Value, 0, len(n.Args))

		for _, argNode := range n.Args {
			arg, err := e.eval(argNode, sheet)
			if err != nil {
				return Null, err
			}

			// Ranges keep their Array shape as direct arguments.
			args = append(args, arg)
		}

		return fn(args)

	default:
		return Null, ErrParse.With(slog.String("issue", "unknown node kind"))
	}
}

// resolveCell returns the live value of a referenced cell. Formula cells are
// re-evaluated recursively (pull semantics): a possibly-stale cached value
// is never trusted when resolving a live reference. Missing cells are Null.
func (e *Engine) resolveCell(ref string, sheet Sheet) (Value, error) {
	col, row, err := ParseRef(ref)
	if err != nil {
		return Null, err
	}

	cd, ok := sheet.CellAt(col, row)
	if !ok {
		return Null, nil
	}

	if cd.Formula != "" {
		return e.Evaluate(ref, cd.Formula, sheet)
	}

	return cd.Value, nil
}

// applyBinary applies an infix operator. Arithmetic and comparison coerce
// both operands to numbers, except that comparing two text values compares
// them lexicographically; '&' coerces both to text.
func applyBinary(op string, left, right Value) (Value, error) {
	if op == "&" {
		return Text(left.AsText() + right.AsText()), nil
	}

	if left.Kind == KindText && right.Kind == KindText {
		switch op {
		case "=":
			return Boolean(left.Str == right.Str), nil
		case "<>":
			return Boolean(left.Str != right.Str), nil
		case "<":
			return Boolean(left.Str < right.Str), nil
		case "<=":
			return Boolean(left.Str <= right.Str), nil
		case ">":
			return Boolean(left.Str > right.Str), nil
		case ">=":
			return Boolean(left.Str >= right.Str), nil
		}
	}

	l := left.NumberOr(0)
	r := right.NumberOr(0)

	switch op {
	case "+":
		return Number(l + r), nil

	case "-":
		return Number(l - r), nil

	case "*":
		return Number(l * r), nil

	case "/":
		if r == 0 {
			return Null, ErrDivisionByZero
		}

		return Number(l / r), nil

	case "^":
		return Number(math.Pow(l, r)), nil

	case "=":
		return Boolean(l == r), nil

	case "<>":
		return Boolean(l != r), nil

	case "<":
		return Boolean(l < r), nil

	case "<=":
		return Boolean(l <= r), nil

	case ">":
		return Boolean(l > r), nil

	case ">=":
		return Boolean(l >= r), nil

	default:
		return Null, ErrParse.With(slog.String("operator", op))
	}
}
