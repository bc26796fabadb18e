package similarity

import (
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region compare-values
// CompareValues scores two argument values in [0, 1]. It never fails: type
// drift is handled by coercion rather than a hard zero.
func CompareValues(a, b value.Value, cfg Config) float64 {
	if value.Equal(a, b) {
		return 1.0
	}
	if a.IsNull() || b.IsNull() {
		return 0.0
	}

	switch {
	case a.Kind() == value.KindString && b.Kind() == value.KindString:
		as, _ := a.AsString()
		bs, _ := b.AsString()
		return StringSimilarity(as, bs)
	case a.Kind() == value.KindNumber && b.Kind() == value.KindNumber:
		an, _ := a.AsNumber()
		bn, _ := b.AsNumber()
		return NumberSimilarity(an, bn, cfg.MaxNumericDiff)
	case a.Kind() == value.KindNumber && b.Kind() == value.KindString:
		return numberVsString(a, b, cfg)
	case a.Kind() == value.KindString && b.Kind() == value.KindNumber:
		return numberVsString(b, a, cfg)
	case a.Kind() == value.KindObject && b.Kind() == value.KindObject:
		return CosineSimilarity(value.Canonical(a), value.Canonical(b))
	case a.Kind() == value.KindBool && b.Kind() == value.KindBool:
		return 0.0 // unequal booleans
	}

	return StringSimilarity(value.Text(a), value.Text(b))
}

// numberVsString parses the string side first; a parse failure or a NaN/Inf
// result falls back to a scaled, floored lexical comparison of the decimal text.
func numberVsString(num, str value.Value, cfg Config) float64 {
	n, _ := num.AsNumber()
	s, _ := str.AsString()
	parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
		return NumberSimilarity(n, parsed, cfg.MaxNumericDiff)
	}
	sim := StringSimilarity(value.FormatNumber(n), s) * cfg.TypeDriftScale
	if sim < cfg.TypeDriftFloor {
		sim = cfg.TypeDriftFloor
	}
	return clamp(sim)
}

// #endregion compare-values

// #region string
// StringSimilarity is the Jaccard index of the lowercase word sets of a and b.
// Identical strings and two whitespace-only strings score 1; one
// whitespace-only side scores 0.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return jaccard(wordSet(a), wordSet(b))
}

// wordPunct is trimmed from the edges of each word. Symbols that carry
// meaning in a token ("c++", "c#", "/", "~") are left alone.
const wordPunct = `,.;:!?()[]{}"'`

// wordSet splits s on whitespace. A word made only of wordPunct is kept as is
// so punctuation-only strings still compare by content.
func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, wordPunct)
		if w == "" {
			w = f
		}
		set[w] = struct{}{}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|; two empty sets score 1.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// #endregion string

// #region number
// NumberSimilarity is max(0, 1 - min(1, |a-b|/maxDiff)). Identical numbers
// score 1 regardless of maxDiff; a non-positive maxDiff only accepts identity.
func NumberSimilarity(a, b, maxDiff float64) float64 {
	if a == b {
		return 1.0
	}
	if math.IsNaN(a) || math.IsNaN(b) || maxDiff <= 0 || math.IsNaN(maxDiff) {
		return 0.0
	}
	ratio := math.Abs(a-b) / maxDiff
	if math.IsNaN(ratio) {
		return 0.0
	}
	return math.Max(0, 1-math.Min(1, ratio))
}

// #endregion number

// #region structural
// CosineSimilarity compares the character-frequency vectors of two strings.
func CosineSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	fa := charFrequencies(a)
	fb := charFrequencies(b)
	if len(fa) == 0 || len(fb) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for r, ca := range fa {
		normA += ca * ca
		if cb, ok := fb[r]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range fb {
		normB += cb * cb
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0.0
	}
	return clamp(dot / denom)
}

func charFrequencies(s string) map[rune]float64 {
	freq := make(map[rune]float64)
	for _, r := range s {
		freq[r]++
	}
	return freq
}

// #endregion structural

// #region helpers
// clamp restricts v to [0, 1]; NaN maps to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
