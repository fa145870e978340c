package nbt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/voxelforge/terragen/world"
)

// Encode serialises the compound as a named root tag and returns the binary
// form. The root name is conventionally empty. Encoding is big-endian and
// order-sensitive: compound entries are written in insertion order. Strings
// and keys longer than the 2-byte length prefix can express are rejected.
func Encode(name string, root *Compound) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 512))
	w := &writer{buf: buf}
	w.named(name, root)
	if w.err != nil {
		return nil, w.err
	}
	return buf.Bytes(), nil
}

type writer struct {
	buf *bytes.Buffer
	err error
}

// named writes a full named tag: kind id, name and payload.
func (w *writer) named(name string, t Tag) {
	w.buf.WriteByte(byte(t.Kind()))
	w.str(name)
	w.payload(t)
}

func (w *writer) payload(t Tag) {
	switch t := t.(type) {
	case Byte:
		w.buf.WriteByte(byte(t))
	case Short:
		w.u16(uint16(t))
	case Int:
		w.u32(uint32(t))
	case Long:
		w.u64(uint64(t))
	case Float:
		w.u32(math.Float32bits(float32(t)))
	case Double:
		w.u64(math.Float64bits(float64(t)))
	case ByteArray:
		w.u32(uint32(len(t)))
		w.buf.Write(t)
	case String:
		w.str(string(t))
	case *List:
		w.buf.WriteByte(byte(t.elem))
		w.u32(uint32(len(t.tags)))
		for _, el := range t.tags {
			w.payload(el)
		}
	case *Compound:
		for _, key := range t.keys {
			w.named(key, t.values[key])
		}
		w.buf.WriteByte(byte(TagEnd))
	default:
		panic(fmt.Sprintf("nbt: encode unhandled tag %T", t))
	}
}

func (w *writer) str(s string) {
	if len(s) > math.MaxUint16 {
		if w.err == nil {
			w.err = fmt.Errorf("nbt: string of %d bytes exceeds the %d byte limit: %w",
				len(s), math.MaxUint16, world.ErrUnsupportedFormat)
		}
		return
	}
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}
