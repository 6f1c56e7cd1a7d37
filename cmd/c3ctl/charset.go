package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var charsetFlag string

// charsets maps --charset names to single-byte encodings.
var charsets = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin9":       charmap.ISO8859_15,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"cp437":        charmap.CodePage437,
}

// payloadCodec converts between UTF-8 text on the command line and the bytes
// stored in the model.
type payloadCodec struct {
	enc encoding.Encoding // nil: UTF-8 passthrough
}

func newPayloadCodec(name string) (payloadCodec, error) {
	switch n := strings.ToLower(name); n {
	case "", "utf-8", "utf8":
		return payloadCodec{}, nil
	default:
		cm, ok := charsets[n]
		if !ok {
			return payloadCodec{}, fmt.Errorf("unknown charset %q", name)
		}
		return payloadCodec{enc: cm}, nil
	}
}

// Encode returns the stored form of s.
func (p payloadCodec) Encode(s string) ([]byte, error) {
	if p.enc == nil {
		return []byte(s), nil
	}
	b, err := p.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

// Decode renders stored bytes as UTF-8.
func (p payloadCodec) Decode(b []byte) string {
	if p.enc == nil {
		return string(b)
	}
	out, err := p.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
