package toolcall

import (
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region constructors
// New builds an invocation from decoded JSON/YAML arguments.
func New(name string, args map[string]any) Invocation {
	return Invocation{Name: name, Args: value.FromMap(args)}
}

// Equal reports whether two invocations share a name and deeply equal args.
func (inv Invocation) Equal(other Invocation) bool {
	return inv.Name == other.Name && value.EqualMaps(inv.Args, other.Args)
}

// String renders the invocation as name(canonical args).
func (inv Invocation) String() string {
	return inv.Name + "(" + value.CanonicalMap(inv.Args) + ")"
}

// #endregion constructors

// #region filters
// PrefixFilter keeps invocations whose name starts with prefix. An empty
// prefix keeps everything.
func PrefixFilter(prefix string) Predicate {
	return func(inv Invocation) bool {
		return strings.HasPrefix(inv.Name, prefix)
	}
}

// Filter returns the invocations of t accepted by keep, preserving order.
// A nil predicate keeps every invocation. t is not modified.
func Filter(t Trajectory, keep Predicate) Trajectory {
	out := make(Trajectory, 0, len(t))
	for _, inv := range t {
		if keep == nil || keep(inv) {
			out = append(out, inv)
		}
	}
	return out
}

// Names returns the tool names of t in order.
func (t Trajectory) Names() []string {
	names := make([]string, len(t))
	for i, inv := range t {
		names[i] = inv.Name
	}
	return names
}

// #endregion filters
