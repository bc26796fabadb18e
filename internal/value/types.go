package value

// #region kind
// Kind enumerates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// #endregion kind

// #region value
// Value is a tool argument value: a closed union over string, number, bool,
// null and object. Sequences are objects keyed by decimal index; the list flag
// only affects canonical rendering. The zero Value is Null.
type Value struct {
	kind   Kind
	str    string
	num    float64
	flag   bool
	fields map[string]Value
	list   bool
}

// #endregion value
