package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// FromJSON parses raw JSON into a Value using the generic passthrough shape:
// objects become Dicts with keys in sorted order (the stdlib decoder drops
// source order), arrays become Lists, integral numbers become Ints.
func FromJSON(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("parse host response: %w", err)
	}
	return Decode(raw), nil
}

// Decode converts a decoded JSON value (map[string]any / []any / json.Number /
// string / bool / nil) into a Value. Unknown Go types degrade to their string
// form rather than failing.
func Decode(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case string:
		return Str(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		f, _ := x.Float64()
		return Float(f)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return Int(int64(x))
		}
		return Float(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case []any:
		items := make([]Value, len(x))
		for i, it := range x {
			items[i] = Decode(it)
		}
		return Value{Kind: KindList, Items: items}
	case map[string]any:
		keys := sortedKeys(x)
		pairs := make([]Pair, 0, len(x))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: Str(k), Val: Decode(x[k])})
		}
		return Value{Kind: KindDict, Pairs: pairs}
	default:
		return Str(fmt.Sprint(x))
	}
}

// JSON returns a plain-Go representation suitable for encoding/json: the
// exhaustive inverse of Decode. Records flatten to maps of their fields.
func (v Value) JSON() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.B
	case KindInt:
		return v.I
	case KindFloat:
		return v.F
	case KindStr:
		return v.S
	case KindList:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = it.JSON()
		}
		return out
	case KindDict:
		out := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			key := p.Key.S
			if p.Key.Kind != KindStr {
				key = p.Key.String()
			}
			out[key] = p.Val.JSON()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.Rec.Fields))
		for _, f := range v.Rec.Fields {
			out[f.Name] = f.Val.JSON()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler via JSON().
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.JSON())
}

// Go maps do not preserve key order, so Decode sorts object keys to keep the
// Dict representation deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
