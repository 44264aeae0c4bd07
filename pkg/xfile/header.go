package xfile

import "fmt"

// headerSize is the fixed length of the "xof " file header.
const headerSize = 16

// Encoding is the physical encoding of the document body.
type Encoding uint8

const (
	EncodingText Encoding = iota
	EncodingBinary
)

// String returns a human-readable encoding name.
func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary"
	}
	return "text"
}

// Header is the decoded 16-byte file header: magic, format version, physical
// encoding signature, and float accuracy.
type Header struct {
	Major      int
	Minor      int
	Encoding   Encoding
	Compressed bool
	FloatSize  int // bytes per float in the binary encoding: 4 or 8
}

// Version returns the header version as "major.minor".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

// ParseHeader decodes the file header and returns it together with the
// document body that follows it.
func ParseHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerSize {
		return Header{}, nil, fmt.Errorf("reading header: %w", ErrTruncated)
	}
	if string(data[:4]) != "xof " {
		return Header{}, nil, fmt.Errorf("%w: magic %q", ErrInvalidHeader, data[:4])
	}

	h := Header{}
	var ok bool
	if h.Major, ok = twoDigits(data[4], data[5]); !ok {
		return Header{}, nil, fmt.Errorf("%w: version %q", ErrInvalidHeader, data[4:8])
	}
	if h.Minor, ok = twoDigits(data[6], data[7]); !ok {
		return Header{}, nil, fmt.Errorf("%w: version %q", ErrInvalidHeader, data[4:8])
	}

	switch string(data[8:12]) {
	case "txt ":
		h.Encoding = EncodingText
	case "bin ":
		h.Encoding = EncodingBinary
	case "tzip":
		h.Encoding, h.Compressed = EncodingText, true
	case "bzip":
		h.Encoding, h.Compressed = EncodingBinary, true
	default:
		return Header{}, nil, fmt.Errorf("%w: signature %q", ErrUnsupportedEncoding, data[8:12])
	}

	bits := 0
	for _, b := range data[12:16] {
		d, ok := digit(b)
		if !ok {
			return Header{}, nil, fmt.Errorf("%w: accuracy %q", ErrInvalidHeader, data[12:16])
		}
		bits = bits*10 + d
	}
	switch bits {
	case 32:
		h.FloatSize = 4
	case 64:
		h.FloatSize = 8
	default:
		return Header{}, nil, fmt.Errorf("%w: %d bits", ErrUnsupportedFloatSize, bits)
	}

	return h, data[headerSize:], nil
}

func digit(b byte) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	return int(b - '0'), true
}

func twoDigits(a, b byte) (int, bool) {
	hi, ok1 := digit(a)
	lo, ok2 := digit(b)
	return hi*10 + lo, ok1 && ok2
}
