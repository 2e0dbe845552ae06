// Package value defines the interpreter's runtime value model as a closed
// tagged union, together with the bidirectional bridge to JSON used when host
// responses are fed back into a paused execution.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindDict
	KindRecord
)

// String returns the variant name, for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// Pair is one ordered key/value entry of a Dict.
type Pair struct {
	Key Value
	Val Value
}

// Field is one ordered named field of a Record.
type Field struct {
	Name string
	Val  Value
}

// Record is a named, ordered bundle of fields. Records model values that
// deserve rich display (a normalized entity state, for example) so that
// presentation logic can match on the name tag instead of probing dict keys.
type Record struct {
	Name   string
	Fields []Field
}

// Get returns the named field's value.
func (r *Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Val, true
		}
	}
	return Value{}, false
}

// Value is the interpreter's runtime value: exactly one variant is active,
// selected by Kind. The zero value is Null.
type Value struct {
	Kind  Kind
	B     bool
	I     int64
	F     float64
	S     string
	Items []Value
	Pairs []Pair
	Rec   *Record
}

// Constructors.

func Null() Value            { return Value{Kind: KindNull} }
func Bool(b bool) Value      { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value      { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, F: f} }
func Str(s string) Value     { return Value{Kind: KindStr, S: s} }
func List(vs ...Value) Value { return Value{Kind: KindList, Items: vs} }
func Dict(ps ...Pair) Value  { return Value{Kind: KindDict, Pairs: ps} }

// NewRecord builds a Record value with the given name tag and ordered fields.
func NewRecord(name string, fields ...Field) Value {
	return Value{Kind: KindRecord, Rec: &Record{Name: name, Fields: fields}}
}

// IsNull reports whether the value is the Null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString returns the string payload when the value is a Str.
func (v Value) AsString() (string, bool) {
	if v.Kind == KindStr {
		return v.S, true
	}
	return "", false
}

// AsInt returns an integer for Int and integral Float values.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.I, true
	case KindFloat:
		return int64(v.F), true
	}
	return 0, false
}

// AsFloat returns a float for Int, Float, and numeric Str values.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	case KindStr:
		f, err := strconv.ParseFloat(v.S, 64)
		return f, err == nil
	}
	return 0, false
}

// Truthy reports Python-style truthiness.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	case KindFloat:
		return v.F != 0
	case KindStr:
		return v.S != ""
	case KindList:
		return len(v.Items) > 0
	case KindDict:
		return len(v.Pairs) > 0
	default:
		return true
	}
}

// DictGet returns the value stored under a string key of a Dict.
func (v Value) DictGet(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, p := range v.Pairs {
		if p.Key.Kind == KindStr && p.Key.S == key {
			return p.Val, true
		}
	}
	return Value{}, false
}

// String renders the value in display form: strings bare at the top level,
// quoted inside containers, records as Name(field=value, ...).
func (v Value) String() string {
	var b strings.Builder
	v.write(&b, false)
	return b.String()
}

func (v Value) write(b *strings.Builder, nested bool) {
	switch v.Kind {
	case KindNull:
		b.WriteString("None")
	case KindBool:
		if v.B {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.I, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.F, 'g', -1, 64))
	case KindStr:
		if nested {
			b.WriteByte('\'')
			for _, r := range v.S {
				switch r {
				case '\'', '\\':
					b.WriteByte('\\')
					b.WriteRune(r)
				case '\n':
					b.WriteString(`\n`)
				default:
					b.WriteRune(r)
				}
			}
			b.WriteByte('\'')
		} else {
			b.WriteString(v.S)
		}
	case KindList:
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.write(b, true)
		}
		b.WriteByte(']')
	case KindDict:
		b.WriteByte('{')
		for i, p := range v.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			p.Key.write(b, true)
			b.WriteString(": ")
			p.Val.write(b, true)
		}
		b.WriteByte('}')
	case KindRecord:
		b.WriteString(v.Rec.Name)
		b.WriteByte('(')
		for i, f := range v.Rec.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteByte('=')
			f.Val.write(b, true)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<invalid kind %d>", int(v.Kind))
	}
}
