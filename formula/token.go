package formula

// TokenKind represents different types of tokens in formulas.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenString
	TokenBool
	TokenOperator
	TokenLParen
	TokenRParen
	TokenComma
	TokenCell
	TokenRange
	TokenFunction
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "Number"
	case TokenString:
		return "String"
	case TokenBool:
		return "Boolean"
	case TokenOperator:
		return "Operator"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	case TokenComma:
		return "Comma"
	case TokenCell:
		return "Cell"
	case TokenRange:
		return "Range"
	case TokenFunction:
		return "Function"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token of a formula.
type Token struct {
	Kind TokenKind
	Text string
}
