package nbt

import (
	"errors"
	"testing"

	"github.com/voxelforge/terragen/world"
)

func sampleCompound() *Compound {
	c := NewCompound()
	c.Set("zeta", Byte(-3))
	c.Set("alpha", Short(1024))
	c.Set("count", Int(-70000))
	c.Set("ticks", Long(1<<40))
	c.Set("temp", Float(0.25))
	c.Set("scale", Double(-1.5))
	c.Set("blob", ByteArray{0, 1, 2, 254, 255})
	c.Set("name", String("terragen"))

	l := NewList(TagInt)
	if err := l.Append(Int(3), Int(1), Int(2)); err != nil {
		panic(err)
	}
	c.Set("order", l)

	inner := NewCompound()
	inner.Set("x", Int(12))
	inner.Set("y", Int(-7))
	c.Set("pos", inner)
	return c
}

func mustEncode(t *testing.T, name string, c *Compound) []byte {
	t.Helper()
	b, err := Encode(name, c)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	c := sampleCompound()
	b := mustEncode(t, "", c)

	name, got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if name != "" {
		t.Fatalf("expected empty root name, got %q", name)
	}
	if !Equal(c, got) {
		t.Fatalf("decoded tree differs from original")
	}
	// Re-encoding must reproduce the exact bytes, including key order.
	if b2 := mustEncode(t, "", got); string(b) != string(b2) {
		t.Fatalf("re-encoded bytes differ from original encoding")
	}
}

func TestRoundTripNamedRoot(t *testing.T) {
	c := NewCompound()
	c.Set("v", Int(1))
	b := mustEncode(t, "Data", c)
	name, got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if name != "Data" {
		t.Fatalf("expected root name %q, got %q", "Data", name)
	}
	if !Equal(c, got) {
		t.Fatalf("decoded tree differs from original")
	}
}

func TestCompoundOrderPreserved(t *testing.T) {
	c := NewCompound()
	for _, k := range []string{"b", "a", "c"} {
		c.Set(k, Int(0))
	}
	c.Set("a", Int(1)) // replace keeps position

	_, got, err := Decode(mustEncode(t, "", c))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	keys := got.Keys()
	want := []string{"b", "a", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key order not preserved: got %v, want %v", keys, want)
		}
	}
	if v, _ := got.Int("a"); v != 1 {
		t.Fatalf("expected replaced value 1 for key a, got %d", v)
	}
}

func TestListElementKindEnforced(t *testing.T) {
	l := NewList(TagInt)
	if err := l.Append(Int(1)); err != nil {
		t.Fatalf("append of matching kind failed: %v", err)
	}
	if err := l.Append(String("nope")); err == nil {
		t.Fatalf("expected error appending String to Int list")
	}
	if l.Len() != 1 {
		t.Fatalf("failed append must not grow the list, len = %d", l.Len())
	}
}

func TestDecodeTruncated(t *testing.T) {
	b := mustEncode(t, "", sampleCompound())
	for _, cut := range []int{1, len(b) / 2, len(b) - 1} {
		if _, _, err := Decode(b[:cut]); !errors.Is(err, world.ErrCorruptData) {
			t.Fatalf("truncation at %d: expected ErrCorruptData, got %v", cut, err)
		}
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	b := mustEncode(t, "", sampleCompound())
	bad := append([]byte{}, b...)
	// First byte inside the root compound payload is a tag kind id.
	bad[3] = 0x7f
	if _, _, err := Decode(bad); !errors.Is(err, world.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData for unknown kind, got %v", err)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	b := mustEncode(t, "", sampleCompound())
	if _, _, err := Decode(append(b, 0)); !errors.Is(err, world.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData for trailing bytes, got %v", err)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	root := NewCompound()
	cur := root
	for i := 0; i < MaxDepth+4; i++ {
		next := NewCompound()
		cur.Set("n", next)
		cur = next
	}
	if _, _, err := Decode(mustEncode(t, "", root)); !errors.Is(err, world.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData past depth limit, got %v", err)
	}
}

func TestEncodeStringLengthLimit(t *testing.T) {
	longest := string(make([]byte, 65535))
	c := NewCompound()
	c.Set("s", String(longest))
	if _, _, err := Decode(mustEncode(t, "", c)); err != nil {
		t.Fatalf("65535-byte string must round trip: %v", err)
	}

	c = NewCompound()
	c.Set("s", String(longest+"x"))
	if _, err := Encode("", c); !errors.Is(err, world.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for oversized string, got %v", err)
	}

	// Keys share the 2-byte length prefix.
	c = NewCompound()
	c.Set(longest+"x", Int(1))
	if _, err := Encode("", c); !errors.Is(err, world.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for oversized key, got %v", err)
	}
}

func TestDecodeNegativeListCount(t *testing.T) {
	c := NewCompound()
	l := NewList(TagByte)
	if err := l.Append(Byte(1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	c.Set("l", l)
	b := mustEncode(t, "", c)

	// The list count sits after root header (3), entry header (1+2+1) and
	// the element kind byte.
	bad := append([]byte{}, b...)
	copy(bad[8:12], []byte{0xff, 0xff, 0xff, 0xff})
	if _, _, err := Decode(bad); !errors.Is(err, world.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData for negative list count, got %v", err)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	c := sampleCompound()
	b, err := EncodeGzip("Data", c)
	if err != nil {
		t.Fatalf("gzip encode failed: %v", err)
	}
	name, got, err := DecodeGzip(b)
	if err != nil {
		t.Fatalf("gzip decode failed: %v", err)
	}
	if name != "Data" || !Equal(c, got) {
		t.Fatalf("gzip round trip mismatch")
	}
	if _, _, err := DecodeGzip([]byte("not gzip")); !errors.Is(err, world.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData for invalid gzip stream, got %v", err)
	}
}

func TestEqualOrderSensitive(t *testing.T) {
	a := NewCompound()
	a.Set("x", Int(1))
	a.Set("y", Int(2))
	b := NewCompound()
	b.Set("y", Int(2))
	b.Set("x", Int(1))
	if Equal(a, b) {
		t.Fatalf("compounds with different key order must not compare equal")
	}
}
