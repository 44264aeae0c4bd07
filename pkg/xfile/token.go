package xfile

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenName
	TokenKeyword
	TokenInt
	TokenFloat
	TokenString
	TokenGUID
	TokenOpenBrace
	TokenCloseBrace
	TokenOpenBracket
	TokenCloseBracket
	TokenSemicolon
	TokenComma
	TokenDot
)

// String returns a human-readable token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenName:
		return "name"
	case TokenKeyword:
		return "keyword"
	case TokenInt:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenGUID:
		return "guid"
	case TokenOpenBrace:
		return "'{'"
	case TokenCloseBrace:
		return "'}'"
	case TokenOpenBracket:
		return "'['"
	case TokenCloseBracket:
		return "']'"
	case TokenSemicolon:
		return "';'"
	case TokenComma:
		return "','"
	case TokenDot:
		return "'.'"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Token is one lexical unit of an .X document. Text carries the value for
// names, keywords, strings, and GUIDs; Int and Float carry numeric values.
// Offset is the byte position in the (decompressed) payload; Line is zero
// for the binary encoding.
type Token struct {
	Kind   TokenKind
	Text   string
	Int    int64
	Float  float64
	Offset int
	Line   int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenName, TokenKeyword, TokenString, TokenGUID:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case TokenInt:
		return fmt.Sprintf("integer %d", t.Int)
	case TokenFloat:
		return fmt.Sprintf("float %g", t.Float)
	default:
		return t.Kind.String()
	}
}

// TokenReader is the shared contract of the text and binary lexers. The
// document parser is oblivious to the physical encoding behind it.
type TokenReader interface {
	// Next returns the next token, or a token with Kind TokenEOF at end of
	// input. Lexing is not resumable past an error.
	Next() (Token, error)
	// Position describes the current read position for diagnostics.
	Position() string
}

// reservedWords are the keywords of the template definition grammar.
var reservedWords = map[string]bool{
	"template": true,
	"array":    true,
	"WORD":     true,
	"DWORD":    true,
	"FLOAT":    true,
	"DOUBLE":   true,
	"CHAR":     true,
	"UCHAR":    true,
	"SWORD":    true,
	"SDWORD":   true,
	"STRING":   true,
	"CSTRING":  true,
	"UNICODE":  true,
	"VOID":     true,
}
