package xfile

import (
	"fmt"
	"strconv"
	"strings"
)

// textLexer is the hand-written scanner for the text encoding.
type textLexer struct {
	c *cursor
}

func newTextLexer(body []byte) *textLexer {
	return &textLexer{c: newCursor(body)}
}

// Position implements TokenReader.
func (l *textLexer) Position() string {
	return fmt.Sprintf("line %d", l.c.line)
}

// Next implements TokenReader.
func (l *textLexer) Next() (Token, error) {
	l.skipWhitespace()

	tok := Token{Offset: l.c.off, Line: l.c.line}
	b, ok := l.c.peek()
	if !ok {
		tok.Kind = TokenEOF
		return tok, nil
	}

	switch {
	case b == '{':
		l.c.next()
		tok.Kind = TokenOpenBrace
	case b == '}':
		l.c.next()
		tok.Kind = TokenCloseBrace
	case b == '[':
		l.c.next()
		tok.Kind = TokenOpenBracket
	case b == ']':
		l.c.next()
		tok.Kind = TokenCloseBracket
	case b == ';':
		l.c.next()
		tok.Kind = TokenSemicolon
	case b == ',':
		l.c.next()
		tok.Kind = TokenComma
	case b == '.':
		l.c.next()
		tok.Kind = TokenDot
	case b == '"':
		return l.scanString(tok)
	case b == '<':
		return l.scanGUID(tok)
	case b == '-' || b == '+' || isDigit(b):
		return l.scanNumber(tok)
	case isNameStart(b):
		return l.scanName(tok), nil
	default:
		return tok, lexError(tok.Offset, "unexpected character %q", b)
	}
	return tok, nil
}

func (l *textLexer) skipWhitespace() {
	for {
		b, ok := l.c.peek()
		if !ok {
			return
		}
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.c.next()
		case b == '#':
			l.skipLine()
		case b == '/':
			if next, ok := l.c.peekAt(1); ok && next == '/' {
				l.skipLine()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *textLexer) skipLine() {
	for {
		b, ok := l.c.next()
		if !ok || b == '\n' {
			return
		}
	}
}

func (l *textLexer) scanString(tok Token) (Token, error) {
	l.c.next() // opening quote
	var sb strings.Builder
	for {
		b, ok := l.c.next()
		if !ok {
			return tok, lexError(tok.Offset, "unterminated string literal")
		}
		if b == '"' {
			break
		}
		sb.WriteByte(b)
	}
	tok.Kind = TokenString
	tok.Text = sb.String()
	return tok, nil
}

// scanGUID reads a <hex-hex-hex-hex-hex> literal; the text between the angle
// brackets is kept verbatim.
func (l *textLexer) scanGUID(tok Token) (Token, error) {
	l.c.next() // '<'
	var sb strings.Builder
	for {
		b, ok := l.c.next()
		if !ok {
			return tok, lexError(tok.Offset, "unterminated guid literal")
		}
		if b == '>' {
			break
		}
		if !isHex(b) && b != '-' {
			return tok, lexError(tok.Offset, "invalid guid character %q", b)
		}
		sb.WriteByte(b)
	}
	tok.Kind = TokenGUID
	tok.Text = sb.String()
	return tok, nil
}

// specialFloats are written by some faulty exporters for NaN/Inf values.
// They are read as zero, as the reference importer does.
var specialFloats = []string{"-1.#IND00", "1.#IND00", "1.#QNAN0"}

func (l *textLexer) scanNumber(tok Token) (Token, error) {
	for _, s := range specialFloats {
		if l.lookingAt(s) {
			l.c.advance(len(s))
			tok.Kind = TokenFloat
			return tok, nil
		}
	}

	start := l.c.off
	isFloat := false
	if b, ok := l.c.peek(); ok && (b == '-' || b == '+') {
		l.c.next()
	}
	for {
		b, ok := l.c.peek()
		if !ok {
			break
		}
		if isDigit(b) {
			l.c.next()
			continue
		}
		if b == '.' || b == 'e' || b == 'E' {
			isFloat = true
			l.c.next()
			if b != '.' {
				if s, ok := l.c.peek(); ok && (s == '-' || s == '+') {
					l.c.next()
				}
			}
			continue
		}
		break
	}

	text := string(l.c.buf[start:l.c.off])
	if isFloat {
		// strconv guarantees round-trip precision, unlike naive digit
		// accumulation.
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return tok, lexError(tok.Offset, "malformed float literal %q", text)
		}
		tok.Kind = TokenFloat
		tok.Float = f
		return tok, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return tok, lexError(tok.Offset, "malformed integer literal %q", text)
	}
	tok.Kind = TokenInt
	tok.Int = n
	return tok, nil
}

func (l *textLexer) scanName(tok Token) Token {
	start := l.c.off
	for {
		b, ok := l.c.peek()
		if !ok || !isNameByte(b) {
			break
		}
		l.c.next()
	}
	tok.Text = string(l.c.buf[start:l.c.off])
	if reservedWords[tok.Text] {
		tok.Kind = TokenKeyword
	} else {
		tok.Kind = TokenName
	}
	return tok
}

func (l *textLexer) lookingAt(s string) bool {
	if l.c.remaining() < len(s) {
		return false
	}
	return string(l.c.buf[l.c.off:l.c.off+len(s)]) == s
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || isDigit(b) || b == '-'
}
