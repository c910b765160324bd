// Package content implements the recursive structured value stored in every
// revision: a tree of mappings, ordered lists, and scalars.
package content

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant of Content a value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Content is a tagged union of {Scalar | List[Content] | Map[String, Content]}.
// The zero value is Null. Values are immutable once built; mutating helpers
// (Set, DeleteField) return a new Content rather than modifying in place, since a
// Content is meant to be captured, byte-for-byte, inside a Revision.
type Content struct {
	kind Kind

	boolVal   bool
	numberVal float64
	stringVal string
	listVal   []Content
	mapVal    map[string]Content
}

// Null is the empty content value.
var Null = Content{kind: KindNull}

func Bool(b bool) Content     { return Content{kind: KindBool, boolVal: b} }
func Number(n float64) Content { return Content{kind: KindNumber, numberVal: n} }
func String(s string) Content { return Content{kind: KindString, stringVal: s} }

// List builds a Content holding an ordered list, preserving the order given.
func List(items ...Content) Content {
	cp := make([]Content, len(items))
	copy(cp, items)
	return Content{kind: KindList, listVal: cp}
}

// Map builds a Content holding a mapping. Key order is not significant.
func Map(fields map[string]Content) Content {
	cp := make(map[string]Content, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Content{kind: KindMap, mapVal: cp}
}

func (c Content) Kind() Kind { return c.kind }

func (c Content) IsNull() bool { return c.kind == KindNull }

// AsBool returns the scalar bool value. ok is false if c is not a bool.
func (c Content) AsBool() (v bool, ok bool) {
	return c.boolVal, c.kind == KindBool
}

// AsNumber returns the scalar numeric value. ok is false if c is not a number.
func (c Content) AsNumber() (v float64, ok bool) {
	return c.numberVal, c.kind == KindNumber
}

// AsString returns the scalar string value. ok is false if c is not a string.
func (c Content) AsString() (v string, ok bool) {
	return c.stringVal, c.kind == KindString
}

// AsList returns the underlying slice. ok is false if c is not a list.
// The returned slice must not be mutated by the caller.
func (c Content) AsList() (v []Content, ok bool) {
	return c.listVal, c.kind == KindList
}

// AsMap returns the underlying map. ok is false if c is not a map.
// The returned map must not be mutated by the caller.
func (c Content) AsMap() (v map[string]Content, ok bool) {
	return c.mapVal, c.kind == KindMap
}

// Get performs a single-level lookup: for a map, by key; for a list, by
// decimal index. Returns Null and false if the path segment doesn't apply.
func (c Content) Get(key string) (Content, bool) {
	switch c.kind {
	case KindMap:
		v, ok := c.mapVal[key]
		return v, ok
	case KindList:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(c.listVal) {
			return Null, false
		}
		return c.listVal[i], true
	}
	return Null, false
}

// Set returns a copy of c with key bound to val. c must be a map or Null
// (in which case an empty map is created first).
func (c Content) Set(key string, val Content) Content {
	fields := map[string]Content{}
	if c.kind == KindMap {
		for k, v := range c.mapVal {
			fields[k] = v
		}
	}
	fields[key] = val
	return Map(fields)
}

// DeleteField returns a copy of c with key removed. A no-op if c is not a
// map or the key is absent.
func (c Content) DeleteField(key string) Content {
	if c.kind != KindMap {
		return c
	}
	fields := map[string]Content{}
	for k, v := range c.mapVal {
		if k != key {
			fields[k] = v
		}
	}
	return Map(fields)
}

// Equal reports deep structural equality between two Content trees.
func Equal(a, b Content) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numberVal == b.numberVal
	case KindString:
		return a.stringVal == b.stringVal
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.mapVal) != len(b.mapVal) {
			return false
		}
		for k, av := range a.mapVal {
			bv, ok := b.mapVal[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// GoString renders a Content tree for debugging.
func (c Content) GoString() string {
	switch c.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", c.boolVal)
	case KindNumber:
		return fmt.Sprintf("%v", c.numberVal)
	case KindString:
		return fmt.Sprintf("%q", c.stringVal)
	case KindList:
		return fmt.Sprintf("%v", c.listVal)
	case KindMap:
		return fmt.Sprintf("%v", c.mapVal)
	default:
		return "<invalid content>"
	}
}
