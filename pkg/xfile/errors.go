package xfile

import (
	"errors"
	"fmt"
)

// Import pipeline errors. Every stage fails fast; errors are wrapped with
// positional context (byte offset or line number) on the way up.
var (
	ErrTruncated            = errors.New("unexpected end of file")
	ErrInvalidHeader        = errors.New("invalid xof header")
	ErrUnsupportedEncoding  = errors.New("unsupported file encoding")
	ErrUnsupportedFloatSize = errors.New("unsupported float size")
	ErrDecompression        = errors.New("decompression failed")
	ErrLex                  = errors.New("lex error")
	ErrUnknownTemplate      = errors.New("unknown template")
	ErrInvalidTemplate      = errors.New("invalid template definition")
	ErrDuplicateTemplate    = errors.New("conflicting template redefinition")
	ErrArityMismatch        = errors.New("member arity mismatch")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrSkinTopologyMismatch = errors.New("skin weight table exceeds vertex count")
	ErrInvalidKeyframeOrder = errors.New("keyframe times not monotonic")
)

// lexError wraps ErrLex with the byte offset of the fault.
func lexError(offset int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrLex, offset, fmt.Sprintf(format, args...))
}
