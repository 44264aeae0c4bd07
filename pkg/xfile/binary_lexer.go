package xfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary token record tags, per the Direct3D token record encoding.
const (
	recName        = 0x01
	recString      = 0x02
	recInteger     = 0x03
	recGUID        = 0x05
	recIntegerList = 0x06
	recFloatList   = 0x07
	recOpenBrace   = 0x0a
	recCloseBrace  = 0x0b
	recOpenParen   = 0x0c
	recCloseParen  = 0x0d
	recOpenBracket = 0x0e
	recCloseBrackt = 0x0f
	recOpenAngle   = 0x10
	recCloseAngle  = 0x11
	recDot         = 0x12
	recComma       = 0x13
	recSemicolon   = 0x14
	recTemplate    = 0x1f
)

// binaryKeywords maps keyword record tags to their text spelling.
var binaryKeywords = map[uint16]string{
	0x28: "WORD",
	0x29: "DWORD",
	0x2a: "FLOAT",
	0x2b: "DOUBLE",
	0x2c: "CHAR",
	0x2d: "UCHAR",
	0x2e: "SWORD",
	0x2f: "SDWORD",
	0x30: "VOID",
	0x31: "STRING",
	0x32: "UNICODE",
	0x33: "CSTRING",
	0x34: "array",
}

// binaryLexer reads the 16-bit tagged record stream of the binary encoding.
// List records (INTEGER_LIST, FLOAT_LIST) are queued and surfaced one token
// at a time so the parser sees the same token stream shape as in text mode.
type binaryLexer struct {
	c         *cursor
	order     binary.ByteOrder
	floatSize int
	pending   []Token
}

func newBinaryLexer(body []byte, floatSize int) *binaryLexer {
	return &binaryLexer{
		c:         newCursor(body),
		order:     binary.LittleEndian,
		floatSize: floatSize,
	}
}

// Position implements TokenReader.
func (l *binaryLexer) Position() string {
	return fmt.Sprintf("offset %d", headerSize+l.c.off)
}

// Next implements TokenReader.
func (l *binaryLexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		return l.dequeue(), nil
	}

	for {
		tok := Token{Offset: l.c.off}
		if l.c.remaining() == 0 {
			tok.Kind = TokenEOF
			return tok, nil
		}

		tag, err := l.word(tok.Offset)
		if err != nil {
			return tok, err
		}

		switch tag {
		case recName:
			text, err := l.lengthPrefixed(tok.Offset)
			if err != nil {
				return tok, err
			}
			tok.Text = text
			if reservedWords[text] {
				tok.Kind = TokenKeyword
			} else {
				tok.Kind = TokenName
			}
		case recString:
			text, err := l.lengthPrefixed(tok.Offset)
			if err != nil {
				return tok, err
			}
			// a separator record terminates the string; it is part of the
			// string token, not a standalone separator
			if _, err := l.word(tok.Offset); err != nil {
				return tok, err
			}
			tok.Kind = TokenString
			tok.Text = text
		case recInteger:
			v, err := l.dword(tok.Offset)
			if err != nil {
				return tok, lexError(tok.Offset, "truncated integer record")
			}
			tok.Kind = TokenInt
			tok.Int = int64(int32(v))
		case recGUID:
			raw, err := l.c.readExact(16)
			if err != nil {
				return tok, lexError(tok.Offset, "truncated guid record")
			}
			tok.Kind = TokenGUID
			tok.Text = formatGUID(raw, l.order)
		case recIntegerList:
			if err := l.queueIntegerList(tok.Offset); err != nil {
				return tok, err
			}
			if len(l.pending) == 0 {
				continue // zero-length list
			}
			return l.dequeue(), nil
		case recFloatList:
			if err := l.queueFloatList(tok.Offset); err != nil {
				return tok, err
			}
			if len(l.pending) == 0 {
				continue
			}
			return l.dequeue(), nil
		case recOpenBrace:
			tok.Kind = TokenOpenBrace
		case recCloseBrace:
			tok.Kind = TokenCloseBrace
		case recOpenBracket:
			tok.Kind = TokenOpenBracket
		case recCloseBrackt:
			tok.Kind = TokenCloseBracket
		case recDot:
			tok.Kind = TokenDot
		case recComma:
			tok.Kind = TokenComma
		case recSemicolon:
			tok.Kind = TokenSemicolon
		case recTemplate:
			tok.Kind = TokenKeyword
			tok.Text = "template"
		case recOpenParen, recCloseParen, recOpenAngle, recCloseAngle:
			// only ever decoration around guid references
			continue
		default:
			if text, ok := binaryKeywords[tag]; ok {
				tok.Kind = TokenKeyword
				tok.Text = text
				return tok, nil
			}
			return tok, lexError(tok.Offset, "unknown record tag 0x%02x", tag)
		}
		return tok, nil
	}
}

func (l *binaryLexer) dequeue() Token {
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok
}

func (l *binaryLexer) queueIntegerList(offset int) error {
	count, err := l.dword(offset)
	if err != nil {
		return lexError(offset, "truncated integer list count")
	}
	for i := uint32(0); i < count; i++ {
		off := l.c.off
		v, err := l.dword(off)
		if err != nil {
			return lexError(off, "truncated integer list: %d of %d values", i, count)
		}
		l.pending = append(l.pending, Token{Kind: TokenInt, Int: int64(int32(v)), Offset: off})
	}
	return nil
}

func (l *binaryLexer) queueFloatList(offset int) error {
	count, err := l.dword(offset)
	if err != nil {
		return lexError(offset, "truncated float list count")
	}
	for i := uint32(0); i < count; i++ {
		off := l.c.off
		raw, err := l.c.readExact(l.floatSize)
		if err != nil {
			return lexError(off, "truncated float list: %d of %d values", i, count)
		}
		var f float64
		if l.floatSize == 8 {
			f = math.Float64frombits(l.order.Uint64(raw))
		} else {
			f = float64(math.Float32frombits(l.order.Uint32(raw)))
		}
		l.pending = append(l.pending, Token{Kind: TokenFloat, Float: f, Offset: off})
	}
	return nil
}

func (l *binaryLexer) word(offset int) (uint16, error) {
	raw, err := l.c.readExact(2)
	if err != nil {
		return 0, lexError(offset, "truncated record tag")
	}
	return l.order.Uint16(raw), nil
}

func (l *binaryLexer) dword(offset int) (uint32, error) {
	raw, err := l.c.readExact(4)
	if err != nil {
		return 0, err
	}
	return l.order.Uint32(raw), nil
}

func (l *binaryLexer) lengthPrefixed(offset int) (string, error) {
	n, err := l.dword(offset)
	if err != nil {
		return "", lexError(offset, "truncated record length")
	}
	raw, err := l.c.readExact(int(n))
	if err != nil {
		return "", lexError(offset, "truncated record payload: want %d bytes", n)
	}
	return string(raw), nil
}

// formatGUID renders the 16-byte wire layout (u32, u16, u16, 8 bytes) in the
// canonical hex-hex-hex-hex-hex form used by the text encoding.
func formatGUID(raw []byte, order binary.ByteOrder) string {
	return fmt.Sprintf("%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		order.Uint32(raw[0:4]), order.Uint16(raw[4:6]), order.Uint16(raw[6:8]),
		raw[8], raw[9], raw[10], raw[11], raw[12], raw[13], raw[14], raw[15])
}
