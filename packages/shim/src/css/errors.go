package css

import (
	"fmt"

	"scopecss-go/packages/shim/src/selector"
)

// InvariantError reports an attempted mutation that would have produced an
// invalid compound selector. Rule carries the selector text of the
// originating rule when the error site can still reach it; a detached
// fragment yields a context-free error instead.
type InvariantError struct {
	Reason   string
	Node     string
	Compound string
	Rule     string
}

func (e *InvariantError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: cannot place %q in compound %q of rule %q", e.Reason, e.Node, e.Compound, e.Rule)
	}
	return fmt.Sprintf("%s: cannot place %q in compound %q", e.Reason, e.Node, e.Compound)
}

func invariantErr(reason string, sel *selector.Selector, at int, n selector.Node) error {
	rule := ""
	if len(sel.Nodes) > 0 {
		probe := at
		if probe >= len(sel.Nodes) {
			probe = len(sel.Nodes) - 1
		}
		if origin, ok := selector.Origin(sel.Nodes[probe]); ok {
			rule = origin
		}
	}
	return &InvariantError{
		Reason:   reason,
		Node:     n.String(),
		Compound: compoundText(sel, at),
		Rule:     rule,
	}
}

// compoundText serializes the compound selector containing position at.
func compoundText(sel *selector.Selector, at int) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	if at >= len(sel.Nodes) {
		at = len(sel.Nodes) - 1
	}
	start := 0
	for i := at; i >= 0; i-- {
		if _, ok := sel.Nodes[i].(*selector.Combinator); ok {
			start = i + 1
			break
		}
	}
	end := len(sel.Nodes)
	for i := at; i < len(sel.Nodes); i++ {
		if _, ok := sel.Nodes[i].(*selector.Combinator); ok {
			end = i
			break
		}
	}
	if start > end {
		return ""
	}
	text := ""
	for _, n := range sel.Nodes[start:end] {
		text += n.String()
	}
	return text
}
