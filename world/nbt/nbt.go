// Package nbt implements the hierarchical typed-value tree used to serialise
// chunk data, together with its big-endian binary codec.
package nbt

import (
	"fmt"
	"math"

	"github.com/voxelforge/terragen/world"
)

// Kind identifies the type of a Tag.
type Kind byte

const (
	TagEnd Kind = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
)

// String returns the conventional name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

var kindNames = [...]string{
	"End", "Byte", "Short", "Int", "Long", "Float", "Double",
	"ByteArray", "String", "List", "Compound",
}

// Tag is a value in the tree. Leaf kinds are plain Go values; List and
// Compound nest further tags.
type Tag interface {
	Kind() Kind
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
)

func (Byte) Kind() Kind      { return TagByte }
func (Short) Kind() Kind     { return TagShort }
func (Int) Kind() Kind       { return TagInt }
func (Long) Kind() Kind      { return TagLong }
func (Float) Kind() Kind     { return TagFloat }
func (Double) Kind() Kind    { return TagDouble }
func (ByteArray) Kind() Kind { return TagByteArray }
func (String) Kind() Kind    { return TagString }

// List is a homogeneous ordered sequence of tags. The element kind is fixed
// at creation and enforced on every append.
type List struct {
	elem Kind
	tags []Tag
}

// NewList creates an empty list holding tags of the element kind passed.
func NewList(elem Kind) *List {
	return &List{elem: elem}
}

func (l *List) Kind() Kind { return TagList }

// Elem returns the element kind the list was created with.
func (l *List) Elem() Kind { return l.elem }

// Len returns the number of tags in the list.
func (l *List) Len() int { return len(l.tags) }

// Index returns the tag at index i.
func (l *List) Index(i int) Tag { return l.tags[i] }

// Append adds tags to the end of the list. It returns an error if any tag
// does not match the element kind of the list.
func (l *List) Append(tags ...Tag) error {
	for _, t := range tags {
		if t.Kind() != l.elem {
			return fmt.Errorf("nbt: append %v tag to list of %v", t.Kind(), l.elem)
		}
		l.tags = append(l.tags, t)
	}
	return nil
}

// Compound is an ordered mapping from string keys to tags. Insertion order is
// preserved so that re-encoding a decoded compound reproduces the original
// bytes exactly.
type Compound struct {
	keys   []string
	values map[string]Tag
}

// NewCompound creates an empty compound tag.
func NewCompound() *Compound {
	return &Compound{values: make(map[string]Tag)}
}

func (c *Compound) Kind() Kind { return TagCompound }

// Len returns the number of entries in the compound.
func (c *Compound) Len() int { return len(c.keys) }

// Keys returns the keys of the compound in insertion order. The returned
// slice must not be modified.
func (c *Compound) Keys() []string { return c.keys }

// Set stores the tag under the key passed. Setting an existing key replaces
// its value but keeps its position.
func (c *Compound) Set(key string, t Tag) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = t
}

// Get returns the tag stored under the key, if any.
func (c *Compound) Get(key string) (Tag, bool) {
	t, ok := c.values[key]
	return t, ok
}

// Remove deletes the key from the compound, preserving the order of the
// remaining keys.
func (c *Compound) Remove(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Byte returns the Byte tag stored under the key.
func (c *Compound) Byte(key string) (int8, bool) {
	if t, ok := c.values[key].(Byte); ok {
		return int8(t), true
	}
	return 0, false
}

// Short returns the Short tag stored under the key.
func (c *Compound) Short(key string) (int16, bool) {
	if t, ok := c.values[key].(Short); ok {
		return int16(t), true
	}
	return 0, false
}

// Int returns the Int tag stored under the key.
func (c *Compound) Int(key string) (int32, bool) {
	if t, ok := c.values[key].(Int); ok {
		return int32(t), true
	}
	return 0, false
}

// Long returns the Long tag stored under the key.
func (c *Compound) Long(key string) (int64, bool) {
	if t, ok := c.values[key].(Long); ok {
		return int64(t), true
	}
	return 0, false
}

// String returns the String tag stored under the key.
func (c *Compound) String(key string) (string, bool) {
	if t, ok := c.values[key].(String); ok {
		return string(t), true
	}
	return "", false
}

// ByteArray returns the ByteArray tag stored under the key.
func (c *Compound) ByteArray(key string) ([]byte, bool) {
	if t, ok := c.values[key].(ByteArray); ok {
		return []byte(t), true
	}
	return nil, false
}

// List returns the List tag stored under the key.
func (c *Compound) List(key string) (*List, bool) {
	t, ok := c.values[key].(*List)
	return t, ok
}

// Compound returns the Compound tag stored under the key.
func (c *Compound) Compound(key string) (*Compound, bool) {
	t, ok := c.values[key].(*Compound)
	return t, ok
}

// Equal reports whether two tags are deeply equal. Compounds compare equal
// only when their key order matches, mirroring the order sensitivity of the
// binary encoding.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case Float:
		return math.Float32bits(float32(at)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(at)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		bt := b.(ByteArray)
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if at[i] != bt[i] {
				return false
			}
		}
		return true
	case *List:
		bt := b.(*List)
		if at.elem != bt.elem || len(at.tags) != len(bt.tags) {
			return false
		}
		for i := range at.tags {
			if !Equal(at.tags[i], bt.tags[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bt := b.(*Compound)
		if len(at.keys) != len(bt.keys) {
			return false
		}
		for i, k := range at.keys {
			if bt.keys[i] != k || !Equal(at.values[k], bt.values[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// corrupt wraps a decode failure in world.ErrCorruptData with context.
func corrupt(format string, args ...any) error {
	return fmt.Errorf("nbt: %s: %w", fmt.Sprintf(format, args...), world.ErrCorruptData)
}
