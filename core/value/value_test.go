package value_test

import (
	"testing"

	"github.com/signaldeck/shell-engine/core/value"
)

func TestStringDisplayForms(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want string
	}{
		{"null", value.Null(), "None"},
		{"true", value.Bool(true), "True"},
		{"false", value.Bool(false), "False"},
		{"int", value.Int(42), "42"},
		{"float", value.Float(2.5), "2.5"},
		{"bare string", value.Str("hello"), "hello"},
		{"list", value.List(value.Int(1), value.Str("a")), "[1, 'a']"},
		{"dict", value.Dict(value.Pair{Key: value.Str("k"), Val: value.Int(1)}), "{'k': 1}"},
		{"nested list", value.List(value.List(value.Int(1))), "[[1]]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecordDisplay(t *testing.T) {
	rec := value.NewRecord("Point",
		value.Field{Name: "x", Val: value.Int(1)},
		value.Field{Name: "y", Val: value.Int(2)},
	)
	if got := rec.String(); got != "Point(x=1, y=2)" {
		t.Errorf("record display = %q", got)
	}
}

func TestRecordGet(t *testing.T) {
	rec := value.NewRecord("EntityState",
		value.Field{Name: "state", Val: value.Str("on")},
	)
	got, ok := rec.Rec.Get("state")
	if !ok || got.S != "on" {
		t.Errorf("Get(state) = %v, %v", got, ok)
	}
	if _, ok := rec.Rec.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Null(), false},
		{value.Bool(true), true},
		{value.Int(0), false},
		{value.Int(7), true},
		{value.Float(0), false},
		{value.Str(""), false},
		{value.Str("x"), true},
		{value.List(), false},
		{value.List(value.Int(1)), true},
		{value.Dict(), false},
	}
	for _, tc := range cases {
		if got := tc.v.Truthy(); got != tc.want {
			t.Errorf("Truthy(%s) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestAsFloatAcceptsNumericString(t *testing.T) {
	f, ok := value.Str("22.5").AsFloat()
	if !ok || f != 22.5 {
		t.Errorf("AsFloat = %v, %v", f, ok)
	}
	if _, ok := value.Str("warm").AsFloat(); ok {
		t.Error("AsFloat should fail for non-numeric strings")
	}
}

func TestDictGet(t *testing.T) {
	d := value.Dict(
		value.Pair{Key: value.Str("a"), Val: value.Int(1)},
		value.Pair{Key: value.Str("b"), Val: value.Int(2)},
	)
	got, ok := d.DictGet("b")
	if !ok || got.I != 2 {
		t.Errorf("DictGet(b) = %v, %v", got, ok)
	}
	if _, ok := d.DictGet("z"); ok {
		t.Error("DictGet(z) should report false")
	}
}
