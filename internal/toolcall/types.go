package toolcall

import "github.com/danielpatrickdp/trajeval/internal/value"

// #region invocation
// Invocation is one recorded tool call. Name is the fully qualified,
// namespace-prefixed tool identifier.
type Invocation struct {
	Name string                 `json:"name"`
	Args map[string]value.Value `json:"args"`
}

// Trajectory is an ordered sequence of invocations in execution order.
type Trajectory []Invocation

// #endregion invocation

// #region predicate
// Predicate decides whether an invocation is in scope for scoring.
type Predicate func(Invocation) bool

// DefaultNamespacePrefix marks tools routed through an MCP server.
const DefaultNamespacePrefix = "mcp__"

// #endregion predicate
