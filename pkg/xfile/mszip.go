package xfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Compressed .X bodies are a CAB-style MSZIP stream: after six bytes of
// unknown data (checksum and flags), a sequence of blocks follows. Each block
// is a 2-byte size covering the rest of the block, the magic 'CK', and raw
// deflate data. Blocks share one 32 KiB history window, so each block is
// inflated with the previous output as its dictionary.
const (
	mszipBlockSize  = 32786
	mszipWindowSize = 32768
)

var mszipMagic = []byte{'C', 'K'}

// decompress inflates an MSZIP block stream into a flat buffer. The input is
// the document body immediately following the file header.
func decompress(src []byte) ([]byte, error) {
	if len(src) < 6 {
		return nil, fmt.Errorf("%w: short compressed body", ErrDecompression)
	}
	src = src[6:] // checksum + flags, contents unknown

	var out []byte
	for len(src) > 0 {
		if len(src) < 4 {
			return nil, fmt.Errorf("%w: truncated block header", ErrDecompression)
		}
		size := int(binary.LittleEndian.Uint16(src[:2]))
		if size < 2 || size > mszipBlockSize {
			return nil, fmt.Errorf("%w: block size %d out of range", ErrDecompression, size)
		}
		if !bytes.Equal(src[2:4], mszipMagic) {
			return nil, fmt.Errorf("%w: bad block magic %q", ErrDecompression, src[2:4])
		}
		if len(src) < 2+size {
			return nil, fmt.Errorf("%w: truncated block payload", ErrDecompression)
		}

		block, err := inflateBlock(src[4:2+size], history(out))
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		src = src[2+size:]
	}
	return out, nil
}

func inflateBlock(data, dict []byte) ([]byte, error) {
	var r io.ReadCloser
	if len(dict) > 0 {
		r = flate.NewReaderDict(bytes.NewReader(data), dict)
	} else {
		r = flate.NewReader(bytes.NewReader(data))
	}
	defer r.Close()

	block, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return block, nil
}

func history(out []byte) []byte {
	if len(out) > mszipWindowSize {
		return out[len(out)-mszipWindowSize:]
	}
	return out
}
