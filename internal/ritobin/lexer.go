package ritobin

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return strconv.Quote(t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

// SyntaxError reports malformed text input.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ', c == '\t', c == '\r', c == '\n':
			l.advance()
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (l *lexer) next() (token, error) {
	l.skipSpace()
	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '"':
		return l.str(tok)
	case isLetter(c):
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.advance()
		}
		tok.kind = tokIdent
	case isDigit(c) || c == '.' || ((c == '-' || c == '+') && (isDigit(l.peekAt(1)) || l.peekAt(1) == '.' || isLetter(l.peekAt(1)))):
		l.advance()
		for l.pos < len(l.src) {
			d := l.src[l.pos]
			prev := l.src[l.pos-1]
			if isDigit(d) || isLetter(d) || d == '.' {
				l.advance()
				continue
			}
			hex := len(l.src[start:l.pos]) > 1 && (l.src[start+1] == 'x' || l.src[start+1] == 'X')
			if (d == '-' || d == '+') && (prev == 'e' || prev == 'E') && !hex {
				l.advance()
				continue
			}
			break
		}
		tok.kind = tokNumber
	case c == ':' || c == '=' || c == '{' || c == '}' || c == '[' || c == ']' || c == ',':
		l.advance()
		tok.kind = tokPunct
	default:
		return tok, &SyntaxError{Line: tok.line, Col: tok.col, Msg: fmt.Sprintf("unexpected character %q", c)}
	}
	tok.text = l.src[start:l.pos]
	return tok, nil
}

func (l *lexer) str(tok token) (token, error) {
	quote := l.advance()
	start := l.pos - 1
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return tok, &SyntaxError{Line: tok.line, Col: tok.col, Msg: "unterminated string"}
		}
		c := l.advance()
		if c == '\\' && l.pos < len(l.src) {
			l.advance()
			continue
		}
		if c == quote {
			break
		}
	}
	s, err := strconv.Unquote(l.src[start:l.pos])
	if err != nil {
		return tok, &SyntaxError{Line: tok.line, Col: tok.col, Msg: fmt.Sprintf("invalid string literal %s", l.src[start:l.pos])}
	}
	tok.kind = tokString
	tok.text = s
	return tok, nil
}
