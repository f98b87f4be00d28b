package formula

// NodeKind indicates the variant of an AST node.
type NodeKind int

const (
	// NodeLiteral holds a constant value.
	NodeLiteral NodeKind = iota

	// NodeCellRef references a single cell.
	NodeCellRef

	// NodeRangeRef references a rectangular cell range.
	NodeRangeRef

	// NodeUnary applies a prefix operator to one operand.
	NodeUnary

	// NodeBinary applies an infix operator to two operands.
	NodeBinary

	// NodeCall invokes a registered function.
	NodeCall
)

// String returns a string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeLiteral:
		return "Literal"
	case NodeCellRef:
		return "CellRef"
	case NodeRangeRef:
		return "RangeRef"
	case NodeUnary:
		return "UnaryOp"
	case NodeBinary:
		return "BinaryOp"
	case NodeCall:
		return "FunctionCall"
	default:
		return "Unknown"
	}
}

// Node represents one node of a parsed formula. The meaningful fields depend
// on Kind. Nodes are created fresh per parse and never persisted.
type Node struct {
	Kind NodeKind

	Value Value  // NodeLiteral
	Ref   string // NodeCellRef: canonical cell ID

	// NodeRangeRef: canonical start and end cell IDs
	Start string
	End   string

	Op    string // NodeUnary, NodeBinary
	Child *Node  // NodeUnary

	// NodeBinary
	Left  *Node
	Right *Node

	// NodeCall
	Name string
	Args []*Node
}

// ExtractReferences traverses the AST and collects every referenced cell ID
// into a single order-independent set. Range references are expanded into
// their constituent cells column-major: the outer loop walks columns, the
// inner loop rows.
func ExtractReferences(n *Node) map[string]struct{} {
	refs := make(map[string]struct{})
	collectReferences(n, refs)

	return refs
}

func collectReferences(n *Node, refs map[string]struct{}) {
	if n == nil {
		return
	}

	switch n.Kind {
	case NodeLiteral:

	case NodeCellRef:
		refs[n.Ref] = struct{}{}

	case NodeRangeRef:
		for _, id := range expandRange(n.Start, n.End) {
			refs[id] = struct{}{}
		}

	case NodeUnary:
		collectReferences(n.Child, refs)

	case NodeBinary:
		collectReferences(n.Left, refs)
		collectReferences(n.Right, refs)

	case NodeCall:
		for _, arg := range n.Args {
			collectReferences(arg, refs)
		}
	}
}

// expandRange lists the cell IDs covered by a rectangular range in
// column-major order. Bounds are normalized so inverted ranges like B2:A1
// still cover the same rectangle.
func expandRange(start, end string) []string {
	startCol, startRow, err := ParseRef(start)
	if err != nil {
		return nil
	}

	endCol, endRow, err := ParseRef(end)
	if err != nil {
		return nil
	}

	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}

	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}

	ids := make([]string, 0, (endCol-startCol+1)*(endRow-startRow+1))

	for col := startCol; col <= endCol; col++ {
		for row := startRow; row <= endRow; row++ {
			ids = append(ids, CellID(col, row))
		}
	}

	return ids
}
