package jsonenc

import (
	"testing"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/model"
)

func TestMarshalPrimitives(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{"hi", `"hi"`},
	}
	for _, c := range cases {
		got := MarshalString(c.in)
		if got != c.want {
			t.Errorf("Marshal(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMarshalStringEscaping(t *testing.T) {
	got := MarshalString("line1\nline2\ttab\"quote\\back")
	want := `"line1\nline2\ttab\"quote\\back"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshalControlCharEscaping(t *testing.T) {
	got := MarshalString(string(rune(0x01)))
	want := "\"\\u0001\""
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshalStructLowerCamelCase(t *testing.T) {
	type Widget struct {
		ID   int
		Name string
	}
	got := MarshalString(Widget{ID: 1, Name: "foo"})
	want := `{"iD":1,"name":"foo"}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshalEnumAsString(t *testing.T) {
	got := MarshalString(model.LevelWarning)
	want := `"Warning"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMarshalTimeUTCHasZ(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := MarshalString(ts)
	if got[len(got)-2:] != `Z"` {
		t.Fatalf("got %q, want trailing Z before closing quote", got)
	}
}

func TestMarshalSliceAndMap(t *testing.T) {
	got := MarshalString([]int{1, 2, 3})
	if got != "[1,2,3]" {
		t.Fatalf("got %q", got)
	}

	got = MarshalString(map[string]int{"b": 2, "a": 1})
	if got != `{"a":1,"b":2}` {
		t.Fatalf("got %q, want sorted keys", got)
	}
}

func TestMarshalPointerAndNil(t *testing.T) {
	var p *int
	if got := MarshalString(p); got != "null" {
		t.Fatalf("nil pointer: got %q", got)
	}
	n := 5
	if got := MarshalString(&n); got != "5" {
		t.Fatalf("pointer: got %q", got)
	}
}

func TestMarshalNestedStruct(t *testing.T) {
	type Inner struct{ Value string }
	type Outer struct {
		Inner Inner
		Items []string
	}
	got := MarshalString(Outer{Inner: Inner{Value: "x"}, Items: []string{"a", "b"}})
	want := `{"inner":{"value":"x"},"items":["a","b"]}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
