package formula

import (
	"log/slog"
	"strings"
)

// character classification constants. slightly easier to read.
const (
	charQuote     = '"'
	charAmpersand = '&'
	charLParen    = '('
	charRParen    = ')'
	charAsterisk  = '*'
	charPlus      = '+'
	charComma     = ','
	charMinus     = '-'
	charPeriod    = '.'
	charSlash     = '/'
	charColon     = ':'
	charLess      = '<'
	charEqual     = '='
	charGreater   = '>'
	charCaret     = '^'
)

// lexer tokenizes spreadsheet formula expressions.
type lexer struct {
	runes []rune
	pos   int
}

// Tokenize scans a formula string into a token stream. A leading '=' is
// stripped. Unrecognized characters produce an ErrLex.
func Tokenize(input string) ([]Token, error) {
	src := strings.TrimSpace(input)
	src = strings.TrimPrefix(src, "=")

	l := &lexer{runes: []rune(src)}

	var tokens []Token

	for {
		l.skipWhitespace()

		if l.pos >= len(l.runes) {
			return tokens, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}
}

func (l *lexer) current() rune {
	if l.pos >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos]
}

func (l *lexer) peek() rune {
	if l.pos+1 >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos+1]
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		switch l.runes[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r) || r == '_'
}

// next scans a single token. Whitespace has already been skipped and at
// least one rune remains.
func (l *lexer) next() (Token, error) {
	ch := l.current()

	switch {
	case isDigit(ch):
		return l.scanNumber(), nil

	case ch == charQuote:
		return l.scanString()

	case isAlpha(ch):
		return l.scanIdentifier(), nil
	}

	switch ch {
	case charLParen:
		l.pos++

		return Token{Kind: TokenLParen, Text: "("}, nil

	case charRParen:
		l.pos++

		return Token{Kind: TokenRParen, Text: ")"}, nil

	case charComma:
		l.pos++

		return Token{Kind: TokenComma, Text: ","}, nil

	case charPlus, charMinus, charAsterisk, charSlash, charCaret, charAmpersand, charEqual:
		l.pos++

		return Token{Kind: TokenOperator, Text: string(ch)}, nil

	case charLess:
		// one-character lookahead resolves <=, <>
		l.pos++

		switch l.current() {
		case charEqual:
			l.pos++

			return Token{Kind: TokenOperator, Text: "<="}, nil

		case charGreater:
			l.pos++

			return Token{Kind: TokenOperator, Text: "<>"}, nil
		}

		return Token{Kind: TokenOperator, Text: "<"}, nil

	case charGreater:
		l.pos++

		if l.current() == charEqual {
			l.pos++

			return Token{Kind: TokenOperator, Text: ">="}, nil
		}

		return Token{Kind: TokenOperator, Text: ">"}, nil
	}

	return Token{}, ErrLex.With(
		slog.String("char", string(ch)),
		slog.Int("pos", l.pos),
	)
}

// scanNumber scans a digit sequence with at most one decimal point.
func (l *lexer) scanNumber() Token {
	start := l.pos

	for l.pos < len(l.runes) && isDigit(l.current()) {
		l.pos++
	}

	if l.current() == charPeriod && isDigit(l.peek()) {
		l.pos++ // consume '.'

		for l.pos < len(l.runes) && isDigit(l.current()) {
			l.pos++
		}
	}

	return Token{Kind: TokenNumber, Text: string(l.runes[start:l.pos])}
}

// scanString scans a double-quoted run. There are no backslash escapes: a
// bare '"' always terminates the string. This is a known limitation of the
// grammar, kept deliberately.
func (l *lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote

	var b strings.Builder

	for l.pos < len(l.runes) {
		ch := l.current()
		if ch == charQuote {
			l.pos++ // consume closing quote

			return Token{Kind: TokenString, Text: b.String()}, nil
		}

		b.WriteRune(ch)
		l.pos++
	}

	return Token{}, ErrLex.
		With(slog.String("issue", "unterminated string literal")).
		With(slog.Int("pos", start))
}

// scanIdentifier scans cells, ranges, booleans, and function names.
func (l *lexer) scanIdentifier() Token {
	start := l.pos

	for l.pos < len(l.runes) && isAlphaNumeric(l.current()) {
		l.pos++
	}

	text := string(l.runes[start:l.pos])
	upper := strings.ToUpper(text)

	if upper == "TRUE" || upper == "FALSE" {
		return Token{Kind: TokenBool, Text: upper}
	}

	if isCellRef(text) {
		// check for range (A1:B2)
		if l.current() == charColon {
			saved := l.pos
			l.pos++ // consume ':'

			second := l.pos
			for l.pos < len(l.runes) && isAlphaNumeric(l.current()) {
				l.pos++
			}

			if isCellRef(string(l.runes[second:l.pos])) {
				return Token{
					Kind: TokenRange,
					Text: strings.ToUpper(string(l.runes[start:l.pos])),
				}
			}

			// not a valid range, restore and emit just the cell
			l.pos = saved
		}

		return Token{Kind: TokenCell, Text: upper}
	}

	// any other identifier is a function name, whether or not a '(' follows;
	// the parser rejects stray identifiers
	return Token{Kind: TokenFunction, Text: upper}
}
