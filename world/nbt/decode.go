package nbt

import (
	"encoding/binary"
	"math"
)

// MaxDepth bounds list/compound nesting during decoding. Deeper trees are
// rejected as corrupt rather than risking unbounded recursion on crafted
// input.
const MaxDepth = 64

// Decode parses a binary tag tree produced by Encode. It returns the root
// compound and its name. Truncated input, unknown tag kinds and nesting
// beyond MaxDepth fail with world.ErrCorruptData.
func Decode(b []byte) (name string, root *Compound, err error) {
	r := &reader{b: b}
	kind, err := r.byte()
	if err != nil {
		return "", nil, err
	}
	if Kind(kind) != TagCompound {
		return "", nil, corrupt("root tag is %v, not Compound", Kind(kind))
	}
	if name, err = r.str(); err != nil {
		return "", nil, err
	}
	t, err := r.payload(TagCompound, 0)
	if err != nil {
		return "", nil, err
	}
	if r.off != len(r.b) {
		return "", nil, corrupt("%d trailing bytes after root tag", len(r.b)-r.off)
	}
	return name, t.(*Compound), nil
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) payload(kind Kind, depth int) (Tag, error) {
	if depth > MaxDepth {
		return nil, corrupt("nesting exceeds depth limit %d", MaxDepth)
	}
	switch kind {
	case TagByte:
		v, err := r.byte()
		return Byte(v), err
	case TagShort:
		v, err := r.u16()
		return Short(v), err
	case TagInt:
		v, err := r.u32()
		return Int(v), err
	case TagLong:
		v, err := r.u64()
		return Long(v), err
	case TagFloat:
		v, err := r.u32()
		return Float(math.Float32frombits(v)), err
	case TagDouble:
		v, err := r.u64()
		return Double(math.Float64frombits(v)), err
	case TagByteArray:
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		b, err := r.take(int(int32(n)))
		if err != nil {
			return nil, err
		}
		arr := make(ByteArray, len(b))
		copy(arr, b)
		return arr, nil
	case TagString:
		s, err := r.str()
		return String(s), err
	case TagList:
		return r.list(depth)
	case TagCompound:
		return r.compound(depth)
	default:
		return nil, corrupt("unknown tag kind %d at offset %d", byte(kind), r.off)
	}
}

func (r *reader) list(depth int) (*List, error) {
	elem, err := r.byte()
	if err != nil {
		return nil, err
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	count := int(int32(n))
	if count < 0 {
		return nil, corrupt("list declares negative length %d", count)
	}
	if Kind(elem) == TagEnd && count > 0 {
		return nil, corrupt("non-empty list of End tags")
	}
	if Kind(elem) > TagCompound {
		return nil, corrupt("unknown list element kind %d", elem)
	}
	l := NewList(Kind(elem))
	for i := 0; i < count; i++ {
		t, err := r.payload(Kind(elem), depth+1)
		if err != nil {
			return nil, err
		}
		l.tags = append(l.tags, t)
	}
	return l, nil
}

func (r *reader) compound(depth int) (*Compound, error) {
	c := NewCompound()
	for {
		kind, err := r.byte()
		if err != nil {
			return nil, err
		}
		if Kind(kind) == TagEnd {
			return c, nil
		}
		if Kind(kind) > TagCompound {
			return nil, corrupt("unknown tag kind %d at offset %d", kind, r.off-1)
		}
		key, err := r.str()
		if err != nil {
			return nil, err
		}
		t, err := r.payload(Kind(kind), depth+1)
		if err != nil {
			return nil, err
		}
		c.Set(key, t)
	}
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.b) {
		return nil, corrupt("truncated: need %d bytes at offset %d of %d", n, r.off, len(r.b))
	}
	b := r.b[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
