package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Serialize renders c as UTF-8 JSON. This is the "straightforward tree ↔
// text converter" spec.md §1 explicitly puts out of scope for the core; it
// lives here only so Content has a canonical on-the-wire form the object
// store can hash and persist.
func Serialize(c Content) ([]byte, error) {
	v, err := toInterface(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Parse decodes UTF-8 JSON into a Content tree.
func Parse(data []byte) (Content, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return Null, fmt.Errorf("parse content: %w", err)
	}
	return fromInterface(v)
}

func toInterface(c Content) (interface{}, error) {
	switch c.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return c.boolVal, nil
	case KindNumber:
		return c.numberVal, nil
	case KindString:
		return c.stringVal, nil
	case KindList:
		out := make([]interface{}, len(c.listVal))
		for i, item := range c.listVal {
			v, err := toInterface(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindMap:
		out := make(map[string]interface{}, len(c.mapVal))
		for k, item := range c.mapVal {
			v, err := toInterface(item)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("content: unrepresentable kind %v", c.kind)
	}
}

func fromInterface(v interface{}) (Content, error) {
	switch val := v.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Null, fmt.Errorf("parse content: %w", err)
		}
		return Number(f), nil
	case float64:
		return Number(val), nil
	case string:
		return String(val), nil
	case []interface{}:
		items := make([]Content, len(val))
		for i, elem := range val {
			c, err := fromInterface(elem)
			if err != nil {
				return Null, err
			}
			items[i] = c
		}
		return List(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Content, len(val))
		for k, elem := range val {
			c, err := fromInterface(elem)
			if err != nil {
				return Null, err
			}
			fields[k] = c
		}
		return Map(fields), nil
	default:
		return Null, fmt.Errorf("content: unsupported JSON value %T", v)
	}
}

// CanonicalSerialize renders c as JSON with map keys sorted and no
// insignificant whitespace, so that byte-identical Content always produces
// byte-identical output. Revision identity (spec §3.2) depends on this:
// the commit id is a digest of the serialized tree plus its metadata, so
// the serialization must be deterministic in field order.
func CanonicalSerialize(c Content) ([]byte, error) {
	v, err := toInterface(c)
	if err != nil {
		return nil, err
	}
	return canonicalEncode(v)
}

func canonicalEncode(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyBytes...)
			buf = append(buf, ':')
			valBytes, err := canonicalEncode(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, valBytes...)
		}
		buf = append(buf, '}')
		return buf, nil

	case []interface{}:
		buf := []byte{'['}
		for i, item := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			itemBytes, err := canonicalEncode(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, itemBytes...)
		}
		buf = append(buf, ']')
		return buf, nil

	default:
		return json.Marshal(v)
	}
}
