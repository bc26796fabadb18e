package value

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// #region canonical
// Canonical renders v as deterministic JSON text: object keys sorted, items
// separated by ", " and keys by ": ". Two values that are Equal always render
// identically, independent of map iteration order.
func Canonical(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

// CanonicalMap renders an argument map the same way Canonical renders an object.
func CanonicalMap(m map[string]Value) string {
	return Canonical(Value{kind: KindObject, fields: m})
}

// Text renders v for lexical comparison: strings are returned raw, numbers in
// shortest decimal form, everything else canonically.
func Text(v Value) string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	default:
		return Canonical(v)
	}
}

// FormatNumber prints f in its shortest decimal form without exponent for
// ordinary magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeCanonical(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.flag {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(FormatNumber(v.num))
	case KindString:
		writeQuoted(b, v.str)
	case KindObject:
		keys := v.Keys()
		if v.list {
			b.WriteByte('[')
			for i, k := range keys {
				if i > 0 {
					b.WriteString(", ")
				}
				writeCanonical(b, v.fields[k])
			}
			b.WriteByte(']')
			return
		}
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuoted(b, k)
			b.WriteString(": ")
			writeCanonical(b, v.fields[k])
		}
		b.WriteByte('}')
	}
}

const hexDigits = "0123456789abcdef"

// writeQuoted writes s as a JSON string literal, escaping quotes, backslashes
// and control characters. Invalid UTF-8 is replaced with U+FFFD.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[r>>4])
			b.WriteByte(hexDigits[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// #endregion canonical
