package xfile

import (
	"errors"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		encoding   Encoding
		compressed bool
		floatSize  int
		version    string
	}{
		{"text single", "xof 0303txt 0032", EncodingText, false, 4, "3.3"},
		{"text double", "xof 0303txt 0064", EncodingText, false, 8, "3.3"},
		{"binary", "xof 0302bin 0032", EncodingBinary, false, 4, "3.2"},
		{"compressed text", "xof 0303tzip0032", EncodingText, true, 4, "3.3"},
		{"compressed binary", "xof 0303bzip0032", EncodingBinary, true, 4, "3.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(tt.header + "body")
			h, body, err := ParseHeader(data)
			if err != nil {
				t.Fatalf("ParseHeader: %v", err)
			}
			if h.Encoding != tt.encoding {
				t.Errorf("encoding: got %v, want %v", h.Encoding, tt.encoding)
			}
			if h.Compressed != tt.compressed {
				t.Errorf("compressed: got %v, want %v", h.Compressed, tt.compressed)
			}
			if h.FloatSize != tt.floatSize {
				t.Errorf("float size: got %d, want %d", h.FloatSize, tt.floatSize)
			}
			if h.Version() != tt.version {
				t.Errorf("version: got %s, want %s", h.Version(), tt.version)
			}
			if string(body) != "body" {
				t.Errorf("body: got %q", body)
			}
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"short", "xof 03", ErrTruncated},
		{"bad magic", "xofx0303txt 0032", ErrInvalidHeader},
		{"bad version", "xof 03x3txt 0032", ErrInvalidHeader},
		{"bad signature", "xof 0303xml 0032", ErrUnsupportedEncoding},
		{"bad accuracy digits", "xof 0303txt 00xx", ErrInvalidHeader},
		{"unsupported accuracy", "xof 0303txt 0016", ErrUnsupportedFloatSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseHeader([]byte(tt.header))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
