// Package xfile reads DirectX .X scene files: text or binary encoding,
// optionally MSZIP-compressed, with template-driven validation. Import
// produces a scene graph ready for post-processing.
package xfile

import (
	"fmt"
	"os"

	"github.com/Faultbox/xscene/pkg/scene"
)

// Options control an import invocation.
type Options struct {
	// LenientKeyframes sorts out-of-order animation keys instead of failing.
	LenientKeyframes bool

	// DoublePrecision selects 64-bit floats when re-encoding a scene.
	DoublePrecision bool

	// PostProcess is the pass set applied after building the scene.
	PostProcess scene.Process
}

// Parse decodes a complete .X document into its object tree without building
// a scene. Inspection tools use this to look at the raw structure.
func Parse(data []byte) (*Document, error) {
	hdr, body, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.Compressed {
		if body, err = decompress(body); err != nil {
			return nil, err
		}
	}

	var tr TokenReader
	if hdr.Encoding == EncodingBinary {
		tr = newBinaryLexer(body, hdr.FloatSize)
	} else {
		tr = newTextLexer(body)
	}

	doc, err := NewParser(tr, NewRegistry()).ParseDocument()
	if err != nil {
		return nil, err
	}
	doc.Header = hdr
	return doc, nil
}

// Import parses data and builds the scene, applying the configured
// post-process passes.
func Import(data []byte, opts Options) (*scene.Scene, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s, err := NewSceneBuilder(opts.LenientKeyframes).Build(doc)
	if err != nil {
		return nil, err
	}
	if opts.PostProcess != 0 {
		if err := scene.Apply(s, opts.PostProcess); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ImportFile imports the named file.
func ImportFile(path string, opts Options) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Import(data, opts)
}
