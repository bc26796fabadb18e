package value

import (
	"encoding/json"
	"math"
	"testing"
)

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Fatalf("expected zero value to be null, got %s", v.Kind())
	}
	if Canonical(v) != "null" {
		t.Fatalf("expected null rendering, got %q", Canonical(v))
	}
}

func TestCanonicalSortsKeys(t *testing.T) {
	a := Object(map[string]Value{"b": Number(2), "a": String("x")})
	got := Canonical(a)
	want := `{"a": "x", "b": 2}`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCanonicalListUsesNumericOrder(t *testing.T) {
	items := make([]any, 12)
	for i := range items {
		items[i] = float64(i)
	}
	v := FromAny(items)
	if !v.IsList() {
		t.Fatal("expected list flag")
	}
	want := "[0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11]"
	if got := Canonical(v); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected list to be an object, got %s", v.Kind())
	}
	if f, ok := v.Get("10"); !ok || !Equal(f, Number(10)) {
		t.Fatal("expected index key 10 to hold 10")
	}
}

func TestCanonicalEscapesStrings(t *testing.T) {
	got := Canonical(String("a\"b\\c\n\x01"))
	want := `"a\"b\\c\n\u0001"`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		10:          "10",
		10.5:        "10.5",
		-3:          "-3",
		0:           "0",
		1e21:        "1e+21",
		math.Inf(1): "Infinity",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v): expected %s, got %s", in, want, got)
		}
	}
	if got := FormatNumber(math.NaN()); got != "NaN" {
		t.Errorf("expected NaN, got %s", got)
	}
}

func TestEqualTreatsNaNAsSelf(t *testing.T) {
	n := Number(math.NaN())
	if !Equal(n, n) {
		t.Fatal("expected NaN to equal itself")
	}
	if Equal(Number(1), String("1")) {
		t.Fatal("expected differing kinds to be unequal")
	}
}

func TestEqualIgnoresListFlag(t *testing.T) {
	list := List(String("a"))
	obj := Object(map[string]Value{"0": String("a")})
	if !Equal(list, obj) {
		t.Fatal("expected list and index-keyed object to be equal")
	}
}

func TestFromAnyHandlesYAMLShapes(t *testing.T) {
	in := map[string]any{
		"count": 3,
		"tags":  []any{"x", "y"},
		"meta":  map[any]any{"k": true},
		"none":  nil,
	}
	got := FromMap(in)
	if n, ok := got["count"].AsNumber(); !ok || n != 3 {
		t.Fatalf("expected count=3, got %v", got["count"])
	}
	if !got["tags"].IsList() || got["tags"].Len() != 2 {
		t.Fatalf("expected 2-item list, got %s", Canonical(got["tags"]))
	}
	if k, _ := got["meta"].Get("k"); !Equal(k, Bool(true)) {
		t.Fatal("expected meta.k=true")
	}
	if !got["none"].IsNull() {
		t.Fatal("expected none to be null")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	raw := `{"query":"env vars","limit":10,"filters":{"tags":["a","b"],"strict":false},"cursor":null}`
	var args map[string]Value
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again map[string]Value
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if !EqualMaps(args, again) {
		t.Fatalf("round trip changed args: %s vs %s", CanonicalMap(args), CanonicalMap(again))
	}
	tags, _ := again["filters"].Get("tags")
	if !tags.IsList() {
		t.Fatal("expected tags to decode as a list")
	}
}

func TestProtoRoundTrip(t *testing.T) {
	args := map[string]Value{
		"name":   String("svc"),
		"port":   Number(8080),
		"tls":    Bool(true),
		"extra":  Null(),
		"routes": List(String("/a"), Object(map[string]Value{"p": Number(1)})),
	}
	back := FromProtoStruct(ToProtoStruct(args))
	if !EqualMaps(args, back) {
		t.Fatalf("proto round trip changed args: %s vs %s", CanonicalMap(args), CanonicalMap(back))
	}
	if !back["routes"].IsList() {
		t.Fatal("expected list flag to survive proto round trip")
	}
}

func TestFromProtoNil(t *testing.T) {
	if !FromProto(nil).IsNull() {
		t.Fatal("expected nil proto value to be null")
	}
}
