package similarity

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestStringSimilarityJaccard(t *testing.T) {
	got := StringSimilarity("environment variables configuration", "env vars configuration")
	// {configuration} / {environment, variables, configuration, env, vars}
	if !approx(got, 0.2) {
		t.Fatalf("expected 0.2, got %f", got)
	}
	if got := StringSimilarity("Hello, World", "hello world"); got != 1.0 {
		t.Fatalf("expected case/punctuation-insensitive match, got %f", got)
	}
	if got := StringSimilarity("", ""); got != 1.0 {
		t.Fatalf("expected empty vs empty = 1, got %f", got)
	}
	if got := StringSimilarity("", "x"); got != 0.0 {
		t.Fatalf("expected empty vs non-empty = 0, got %f", got)
	}
	if got := StringSimilarity("snake_case name", "snake_case"); !approx(got, 0.5) {
		t.Fatalf("expected underscore to stay inside a word, got %f", got)
	}
}

func TestStringSimilarityPunctuationTokens(t *testing.T) {
	// 1. Distinct symbol-only strings share no words
	for _, pair := range [][2]string{{"/", "~"}, {".", "/"}, {"C++", "C#"}} {
		if got := StringSimilarity(pair[0], pair[1]); got != 0.0 {
			t.Errorf("expected %q vs %q = 0, got %f", pair[0], pair[1], got)
		}
	}

	// 2. Whitespace-only strings still count as empty
	if got := StringSimilarity("  ", "\t"); got != 1.0 {
		t.Errorf("expected whitespace vs whitespace = 1, got %f", got)
	}
	if got := StringSimilarity("/", " "); got != 0.0 {
		t.Errorf("expected symbol vs whitespace = 0, got %f", got)
	}

	// 3. Symbols inside a token survive, edge punctuation does not
	if got := StringSimilarity("learn C++.", "c++ learn"); got != 1.0 {
		t.Errorf("expected trailing period to be trimmed, got %f", got)
	}
}

func TestCompareInvocationsDistinctPaths(t *testing.T) {
	cfg := DefaultConfig()
	a := toolcall.New("ns.read", map[string]any{"path": "/"})
	b := toolcall.New("ns.read", map[string]any{"path": "~"})
	s := CompareInvocations(a, b, cfg)
	// key overlap only
	if !approx(s.Similarity, 0.3) {
		t.Fatalf("expected 0.3, got %f", s.Similarity)
	}
	if s.Kind == MatchExact {
		t.Fatalf("expected non-exact kind, got %s", s.Kind)
	}
}

func TestNumberSimilarity(t *testing.T) {
	if got := NumberSimilarity(10, 10, 0); got != 1.0 {
		t.Fatalf("expected identical numbers = 1 with zero threshold, got %f", got)
	}
	if got := NumberSimilarity(10, 20, 1000); !approx(got, 0.99) {
		t.Fatalf("expected 0.99, got %f", got)
	}
	if got := NumberSimilarity(0, 5000, 1000); got != 0.0 {
		t.Fatalf("expected 0 beyond max diff, got %f", got)
	}
	if got := NumberSimilarity(1, 2, 0); got != 0.0 {
		t.Fatalf("expected 0 with zero threshold, got %f", got)
	}
	if got := NumberSimilarity(math.Inf(1), 1, 1000); got != 0.0 {
		t.Fatalf("expected 0 for infinity, got %f", got)
	}
}

func TestCompareValuesNumericString(t *testing.T) {
	cfg := DefaultConfig()
	if got := CompareValues(value.Number(10), value.String("10"), cfg); got != 1.0 {
		t.Fatalf("expected parsed numeric string = 1, got %f", got)
	}
	if got := CompareValues(value.String(" 12 "), value.Number(10), cfg); !approx(got, 0.998) {
		t.Fatalf("expected 0.998, got %f", got)
	}
	got := CompareValues(value.Number(10), value.String("ten"), cfg)
	if got != cfg.TypeDriftFloor {
		t.Fatalf("expected floor %f, got %f", cfg.TypeDriftFloor, got)
	}
	for _, special := range []string{"NaN", "Inf", "-inf"} {
		if got := CompareValues(value.Number(5), value.String(special), cfg); got != cfg.TypeDriftFloor {
			t.Fatalf("expected %q to take the drift floor %f, got %f", special, cfg.TypeDriftFloor, got)
		}
	}
	got = CompareValues(value.Number(10), value.String("10 items"), cfg)
	if !approx(got, 0.45) {
		t.Fatalf("expected 0.5*0.9, got %f", got)
	}
}

func TestCompareValuesNull(t *testing.T) {
	cfg := DefaultConfig()
	if got := CompareValues(value.Null(), value.Null(), cfg); got != 1.0 {
		t.Fatalf("expected null vs null = 1, got %f", got)
	}
	if got := CompareValues(value.Null(), value.String(""), cfg); got != 0.0 {
		t.Fatalf("expected null vs string = 0, got %f", got)
	}
}

func TestCompareValuesObjectsIgnoreKeyOrder(t *testing.T) {
	cfg := DefaultConfig()
	a := value.FromAny(map[string]any{"a": 1, "b": []any{"x", "y"}})
	b := value.FromAny(map[string]any{"b": []any{"x", "y"}, "a": 1})
	if got := CompareValues(a, b, cfg); got != 1.0 {
		t.Fatalf("expected identical objects = 1, got %f", got)
	}
	c := value.FromAny(map[string]any{"a": 2, "b": []any{"y", "x"}})
	got := CompareValues(a, c, cfg)
	if got <= 0.5 || got >= 1.0 {
		t.Fatalf("expected high but imperfect cosine score, got %f", got)
	}
}

func TestCompareValuesMismatchedKindsDegrade(t *testing.T) {
	cfg := DefaultConfig()
	obj := value.FromAny(map[string]any{"query": "env"})
	got := CompareValues(obj, value.String("query env"), cfg)
	if !approx(got, 1.0) {
		t.Fatalf("expected canonical text to share all words, got %f", got)
	}
	if got := CompareValues(value.Bool(true), value.String("true"), cfg); got != 1.0 {
		t.Fatalf("expected bool vs matching text = 1, got %f", got)
	}
	if got := CompareValues(value.Bool(true), value.Bool(false), cfg); got != 0.0 {
		t.Fatalf("expected unequal bools = 0, got %f", got)
	}
}

func TestCompareArgs(t *testing.T) {
	cfg := DefaultConfig()
	if got := CompareArgs(nil, map[string]value.Value{}, cfg); got != 1.0 {
		t.Fatalf("expected empty args = 1, got %f", got)
	}

	a := value.FromMap(map[string]any{"query": "x", "limit": 10})
	b := value.FromMap(map[string]any{"query": "x"})
	// keys 1/2, values (1 + 0)/2
	want := 0.3*0.5 + 0.7*0.5
	if got := CompareArgs(a, b, cfg); !approx(got, want) {
		t.Fatalf("expected %f, got %f", want, got)
	}

	// Weights above 1 still clamp.
	heavy := cfg
	heavy.KeyWeight, heavy.ValueWeight = 1, 1
	if got := CompareArgs(a, a, heavy); got != 1.0 {
		t.Fatalf("expected clamped score 1, got %f", got)
	}
}

func TestCompareInvocationsReflexive(t *testing.T) {
	cfg := DefaultConfig()
	x := toolcall.New("mcp__proxy__add_server", map[string]any{
		"name":   "weather",
		"config": map[string]any{"port": 8080, "env": []any{"A=1"}},
		"ttl":    nil,
	})
	s := CompareInvocations(x, x, cfg)
	if s.Similarity != 1.0 || s.Kind != MatchExact {
		t.Fatalf("expected exact 1.0, got %f %s", s.Similarity, s.Kind)
	}
}

func TestCompareInvocationsNameGate(t *testing.T) {
	cfg := DefaultConfig()
	args := map[string]any{"query": "x"}
	s := CompareInvocations(toolcall.New("ns.search", args), toolcall.New("ns.find", args), cfg)
	if s.Similarity != 0.0 || s.Kind != MatchNameMismatch {
		t.Fatalf("expected name mismatch 0, got %f %s", s.Similarity, s.Kind)
	}
	if s.Describe() != "MISMATCH" {
		t.Fatalf("expected MISMATCH, got %s", s.Describe())
	}
}

func TestCompareInvocationsPartial(t *testing.T) {
	cfg := DefaultConfig()
	a := toolcall.New("ns.search", map[string]any{"query": "environment variables configuration"})
	b := toolcall.New("ns.search", map[string]any{"query": "env vars configuration"})
	s := CompareInvocations(a, b, cfg)
	want := 0.3 + 0.7*0.2
	if !approx(s.Similarity, want) || s.Kind != MatchPartial {
		t.Fatalf("expected partial %f, got %f %s", want, s.Similarity, s.Kind)
	}
	if s.Describe() != "PARTIAL MATCH" {
		t.Fatalf("expected PARTIAL MATCH, got %s", s.Describe())
	}
}

// #region property
func randomValue(r *rand.Rand, depth int) value.Value {
	n := r.Intn(6)
	if depth <= 0 && n >= 4 {
		n = r.Intn(4)
	}
	switch n {
	case 0:
		return value.Null()
	case 1:
		words := []string{"env", "vars", "Config", "", "10", "add server", "x_y", "ünï"}
		return value.String(words[r.Intn(len(words))] + " " + words[r.Intn(len(words))])
	case 2:
		if r.Intn(10) == 0 {
			return value.Number(math.NaN())
		}
		return value.Number(r.NormFloat64() * 2000)
	case 3:
		return value.Bool(r.Intn(2) == 0)
	case 4:
		items := make([]value.Value, r.Intn(4))
		for i := range items {
			items[i] = randomValue(r, depth-1)
		}
		return value.List(items...)
	default:
		fields := make(map[string]value.Value)
		for i := 0; i < r.Intn(4); i++ {
			fields["k"+strconv.Itoa(r.Intn(5))] = randomValue(r, depth-1)
		}
		return value.Object(fields)
	}
}

func randomArgs(r *rand.Rand) map[string]value.Value {
	args := make(map[string]value.Value)
	for i := 0; i < r.Intn(5); i++ {
		args["p"+strconv.Itoa(r.Intn(6))] = randomValue(r, 3)
	}
	return args
}

func TestComparatorsStayInBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	cfg := DefaultConfig()
	inRange := func(f float64) bool { return f >= 0 && f <= 1 && !math.IsNaN(f) }

	for i := 0; i < 2000; i++ {
		a := randomValue(r, 3)
		b := randomValue(r, 3)
		if got := CompareValues(a, b, cfg); !inRange(got) {
			t.Fatalf("CompareValues(%s, %s) = %f out of range", value.Canonical(a), value.Canonical(b), got)
		}
		if got := CompareValues(a, a, cfg); got != 1.0 {
			t.Fatalf("CompareValues(%s, self) = %f, expected 1", value.Canonical(a), got)
		}

		argsA := randomArgs(r)
		argsB := randomArgs(r)
		if got := CompareArgs(argsA, argsB, cfg); !inRange(got) {
			t.Fatalf("CompareArgs(%s, %s) = %f out of range", value.CanonicalMap(argsA), value.CanonicalMap(argsB), got)
		}

		inv := toolcall.Invocation{Name: "ns.tool", Args: argsA}
		if got := CompareInvocations(inv, inv, cfg); got.Similarity != 1.0 {
			t.Fatalf("reflexivity failed for %s: %f", inv, got.Similarity)
		}
	}
}

// #endregion property
