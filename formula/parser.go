package formula

import (
	"log/slog"
	"strconv"
	"strings"
)

// parser consumes a token stream using precedence climbing, lowest binding
// first: comparison, concatenation, additive, multiplicative, power, unary,
// primary. Parse errors carry no position information.
type parser struct {
	tokens []Token
	pos    int
}

// Parse parses a formula string into its AST.
func Parse(input string) (*Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		return nil, ErrParse.
			With(slog.String("issue", "unexpected token")).
			With(slog.String("token", p.tokens[p.pos].Text))
	}

	return node, nil
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}

	return p.tokens[p.pos], true
}

// parseComparison handles = <> < > <= >=.
func (p *parser) parseComparison() (*Node, error) {
	left, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOperator {
			return left, nil
		}

		switch tok.Text {
		case "=", "<>", "<", "<=", ">", ">=":
		default:
			return left, nil
		}

		p.pos++

		right, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: NodeBinary, Op: tok.Text, Left: left, Right: right}
	}
}

// parseConcatenation handles the string concatenation operator.
func (p *parser) parseConcatenation() (*Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOperator || tok.Text != "&" {
			return left, nil
		}

		p.pos++

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: NodeBinary, Op: "&", Left: left, Right: right}
	}
}

// parseAdditive handles addition and subtraction.
func (p *parser) parseAdditive() (*Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOperator || (tok.Text != "+" && tok.Text != "-") {
			return left, nil
		}

		p.pos++

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: NodeBinary, Op: tok.Text, Left: left, Right: right}
	}
}

// parseMultiplicative handles multiplication and division.
func (p *parser) parseMultiplicative() (*Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOperator || (tok.Text != "*" && tok.Text != "/") {
			return left, nil
		}

		p.pos++

		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: NodeBinary, Op: tok.Text, Left: left, Right: right}
	}
}

// parsePower handles exponentiation.
func (p *parser) parsePower() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOperator || tok.Text != "^" {
			return left, nil
		}

		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: NodeBinary, Op: "^", Left: left, Right: right}
	}
}

// parseUnary handles prefix minus and plus.
func (p *parser) parseUnary() (*Node, error) {
	tok, ok := p.peek()
	if ok && tok.Kind == TokenOperator && (tok.Text == "-" || tok.Text == "+") {
		p.pos++

		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Node{Kind: NodeUnary, Op: tok.Text, Child: child}, nil
	}

	return p.parsePrimary()
}

// parsePrimary handles literals, cell and range references, function calls,
// and parenthesized expressions.
func (p *parser) parsePrimary() (*Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, ErrParse.With(slog.String("issue", "unexpected end of input"))
	}

	switch tok.Kind {
	case TokenNumber:
		p.pos++

		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, ErrParse.
				With(slog.String("issue", "invalid number")).
				With(slog.String("token", tok.Text))
		}

		return &Node{Kind: NodeLiteral, Value: Number(f)}, nil

	case TokenString:
		p.pos++

		return &Node{Kind: NodeLiteral, Value: Text(tok.Text)}, nil

	case TokenBool:
		p.pos++

		return &Node{Kind: NodeLiteral, Value: Boolean(tok.Text == "TRUE")}, nil

	case TokenCell:
		p.pos++

		ref, err := NormalizeRef(tok.Text)
		if err != nil {
			return nil, ErrParse.Wrap(err)
		}

		return &Node{Kind: NodeCellRef, Ref: ref}, nil

	case TokenRange:
		p.pos++

		start, end, ok := strings.Cut(tok.Text, ":")
		if !ok {
			return nil, ErrParse.
				With(slog.String("issue", "malformed range")).
				With(slog.String("token", tok.Text))
		}

		startRef, err := NormalizeRef(start)
		if err != nil {
			return nil, ErrParse.Wrap(err)
		}

		endRef, err := NormalizeRef(end)
		if err != nil {
			return nil, ErrParse.Wrap(err)
		}

		return &Node{Kind: NodeRangeRef, Start: startRef, End: endRef}, nil

	case TokenFunction:
		return p.parseCall()

	case TokenLParen:
		p.pos++

		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}

		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}

		return inner, nil

	default:
		return nil, ErrParse.
			With(slog.String("issue", "unexpected token")).
			With(slog.String("token", tok.Text))
	}
}

// parseCall parses NAME '(' [expr {',' expr}] ')'.
func (p *parser) parseCall() (*Node, error) {
	name := p.tokens[p.pos].Text
	p.pos++

	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var args []*Node

	if tok, ok := p.peek(); ok && tok.Kind == TokenRParen {
		p.pos++

		return &Node{Kind: NodeCall, Name: name, Args: args}, nil
	}

	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		tok, ok := p.peek()
		if !ok {
			return nil, ErrParse.
				With(slog.String("issue", "unmatched parenthesis")).
				With(slog.String("function", name))
		}

		switch tok.Kind {
		case TokenComma:
			p.pos++

		case TokenRParen:
			p.pos++

			return &Node{Kind: NodeCall, Name: name, Args: args}, nil

		default:
			return nil, ErrParse.
				With(slog.String("issue", "unexpected token in argument list")).
				With(slog.String("token", tok.Text))
		}
	}
}

// expect consumes one token of the given kind or fails.
func (p *parser) expect(kind TokenKind) error {
	tok, ok := p.peek()
	if !ok {
		return ErrParse.
			With(slog.String("issue", "unexpected end of input")).
			With(slog.String("expected", kind.String()))
	}

	if tok.Kind != kind {
		return ErrParse.
			With(slog.String("issue", "unexpected token")).
			With(slog.String("expected", kind.String())).
			With(slog.String("token", tok.Text))
	}

	p.pos++

	return nil
}
