package toolcall

import (
	"encoding/json"
	"testing"
)

func TestPrefixFilterDropsOutOfScopeTools(t *testing.T) {
	tr := Trajectory{
		New("TodoWrite", map[string]any{"todos": []any{}}),
		New("mcp__proxy__search", map[string]any{"query": "hello"}),
		New("Bash", nil),
		New("mcp__proxy__list", nil),
	}

	got := Filter(tr, PrefixFilter(DefaultNamespacePrefix))

	if len(got) != 2 {
		t.Fatalf("expected 2 in-scope invocations, got %d", len(got))
	}
	if got[0].Name != "mcp__proxy__search" || got[1].Name != "mcp__proxy__list" {
		t.Fatalf("expected order preserved, got %v", got.Names())
	}
	if len(tr) != 4 {
		t.Fatal("expected input trajectory untouched")
	}
}

func TestFilterNilPredicateKeepsAll(t *testing.T) {
	tr := Trajectory{New("a", nil), New("b", nil)}
	if got := Filter(tr, nil); len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
}

func TestInvocationJSONShape(t *testing.T) {
	inv := New("mcp__proxy__search", map[string]any{"query": "x", "limit": 10})
	b, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"mcp__proxy__search","args":{"limit":10,"query":"x"}}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	var back Invocation
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(inv) {
		t.Fatalf("expected round trip to preserve invocation, got %s", back)
	}
}

func TestInvocationString(t *testing.T) {
	inv := New("ns.search", map[string]any{"b": 1, "a": "q"})
	if got := inv.String(); got != `ns.search({"a": "q", "b": 1})` {
		t.Fatalf("unexpected rendering %s", got)
	}
}
