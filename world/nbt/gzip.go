package nbt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/voxelforge/terragen/world"
)

// EncodeGzip serialises the compound as a named root tag and wraps the result
// in a gzip stream, the framing used for level metadata files.
func EncodeGzip(name string, root *Compound) ([]byte, error) {
	raw, err := Encode(name, root)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("nbt: gzip encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("nbt: gzip encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeGzip decompresses a gzip stream and parses the tag tree inside.
func DecodeGzip(b []byte) (name string, root *Compound, err error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", nil, corrupt("gzip header: %v", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("nbt: gzip stream: %w", world.ErrCorruptData)
	}
	return Decode(raw)
}
