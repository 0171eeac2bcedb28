package css

import "scopecss-go/packages/shim/src/selector"

// Pseudo-class names with special meaning to the engine. The unscoped
// marker is synthetic: it wraps compounds that represent ancestor or global
// context and must never be content-scoped. It only lives between the
// host-context rewrite and the shim pass, never in output.
const (
	hostPseudoName        = "host"
	hostContextPseudoName = "host-context"
	globalPseudoName      = "global"
	deepPseudoName        = "ng-deep"
	rootPseudoName        = "root"
	unscopedPseudoName    = "-shadowcss-unscoped"
)

// An arrangement is an ordered run of context compounds, implicitly joined
// by descendant combinators, ancestor side first.
type arrangement [][]selector.Node

// convertHostContext eliminates :host-context() and :global() from every
// selector of the list before shimming. A selector carrying n
// :host-context() pseudos expands into 2×OrderedBell(n) replacements.
func (sc *ShadowCss) convertHostContext(list *selector.SelectorList) error {
	out := make([]*selector.Selector, 0, len(list.Selectors))
	for _, sel := range list.Selectors {
		repl, err := sc.rewriteHostContext(sel)
		if err != nil {
			return err
		}
		for _, r := range repl {
			out = append(out, expandHostArgs(r)...)
		}
	}
	list.Replace(out)
	return nil
}

// expandHostArgs expands a :host() whose argument lists several
// alternatives into one selector per alternative, so the shim pass only
// ever merges a single compound into the host.
func expandHostArgs(sel *selector.Selector) []*selector.Selector {
	for i, n := range sel.Nodes {
		p, ok := n.(*selector.Pseudo)
		if !ok || p.Name != hostPseudoName || p.Arg == nil || len(p.Arg.Selectors) < 2 {
			continue
		}
		var out []*selector.Selector
		for _, alt := range p.Arg.Selectors {
			c := sel.Clone()
			cp := c.Nodes[i].(*selector.Pseudo)
			cp.SetArg(selector.NewSelectorList(alt.Clone()))
			out = append(out, expandHostArgs(c)...)
		}
		return out
	}
	return []*selector.Selector{sel}
}

// rewriteHostContext normalizes one selector. :global() becomes the
// unscoped marker with its argument intact; every :host-context(arg) is
// recorded and replaced in place by a bare :host. When at least one
// argument was collected the selector is expanded into its placement
// permutations.
//
// All :host-context() occurrences are assumed to sit in a single compound;
// input spreading them across compounds is undefined behavior and is not
// validated here.
func (sc *ShadowCss) rewriteHostContext(sel *selector.Selector) ([]*selector.Selector, error) {
	var args []*selector.Selector
	compound := 0
	hostCompound := -1

	for i, n := range sel.Nodes {
		switch v := n.(type) {
		case *selector.Combinator:
			compound++
		case *selector.Pseudo:
			switch v.Name {
			case globalPseudoName:
				if v.RawArg != "" {
					// Argument did not parse as a selector; leave the
					// pseudo alone rather than guess.
					continue
				}
				un := selector.NewPseudo(unscopedPseudoName)
				un.SetArg(v.Arg)
				sel.ReplaceAt(i, un)
			case hostContextPseudoName:
				if v.Arg != nil && len(v.Arg.Selectors) > 0 {
					args = append(args, v.Arg.Selectors[0])
					if hostCompound == -1 {
						hostCompound = compound
					}
				}
				sel.ReplaceAt(i, selector.NewPseudo(hostPseudoName))
			}
		}
	}

	if len(args) == 0 {
		return []*selector.Selector{sel}, nil
	}

	replacements := make([]*selector.Selector, 0, 2)
	for _, arr := range buildArrangements(args) {
		merged, err := mergedForm(sel, hostCompound, arr)
		if err != nil {
			return nil, err
		}
		replacements = append(replacements, merged, descendantForm(sel, arr))
	}
	return replacements, nil
}

// buildArrangements computes every placement of the collected context
// compounds relative to one another, via an explicit work list rather than
// recursion. Seeded with the last argument, each remaining argument
// (processed in reverse collection order) turns an arrangement of m
// compounds into 2m+1 new ones: inserted as a new compound before each
// position, merged into each existing compound, or appended at the tail.
// The resulting count is the Ordered Bell number for the argument count:
// 1, 3, 13, 75, ...
func buildArrangements(args []*selector.Selector) []arrangement {
	work := []arrangement{{cloneNodes(args[len(args)-1].Nodes)}}
	for i := len(args) - 2; i >= 0; i-- {
		arg := args[i].Nodes
		next := make([]arrangement, 0, 3*len(work))
		for _, arr := range work {
			m := len(arr)
			for pos := 0; pos <= m; pos++ {
				next = append(next, spliceCompound(arr, pos, cloneNodes(arg)))
			}
			for pos := 0; pos < m; pos++ {
				next = append(next, mergeCompound(arr, pos, cloneNodes(arg)))
			}
		}
		work = next
	}
	return work
}

func cloneArrangement(arr arrangement) arrangement {
	c := make(arrangement, len(arr))
	for i, compound := range arr {
		c[i] = cloneNodes(compound)
	}
	return c
}

func spliceCompound(arr arrangement, pos int, compound []selector.Node) arrangement {
	c := cloneArrangement(arr)
	c = append(c[:pos], append(arrangement{compound}, c[pos:]...)...)
	return c
}

func mergeCompound(arr arrangement, pos int, compound []selector.Node) arrangement {
	c := cloneArrangement(arr)
	c[pos] = append(compound, c[pos]...)
	return c
}

// wrapUnscoped wraps a context compound in the synthetic unscoped pseudo;
// the shim pass later unwraps it in place without content-scoping it.
func wrapUnscoped(compound []selector.Node) *selector.Pseudo {
	p := selector.NewPseudo(unscopedPseudoName)
	p.SetArg(selector.NewSelectorList(selector.NewSelector(compound...)))
	return p
}

// descendantForm reads the arrangement as "ancestors matching anywhere
// above the host": wrapped compounds joined by descendant combinators,
// followed by the rewritten original selector.
func descendantForm(orig *selector.Selector, arr arrangement) *selector.Selector {
	out := selector.NewSelector()
	for _, compound := range arr {
		out.Append(wrapUnscoped(cloneNodes(compound)), selector.NewCombinator(selector.Descendant))
	}
	out.Append(cloneNodes(orig.Nodes)...)
	return out
}

// mergedForm reads the arrangement as "the trailing context is the host
// itself": its last compound merges straight into the original selector's
// host compound, and any preceding compounds become additional ancestors
// immediately before it.
func mergedForm(orig *selector.Selector, hostCompound int, arr arrangement) (*selector.Selector, error) {
	out := orig.Clone()
	start := compoundStart(out, hostCompound)

	var prefix []selector.Node
	for _, compound := range arr[:len(arr)-1] {
		prefix = append(prefix, wrapUnscoped(cloneNodes(compound)), selector.NewCombinator(selector.Descendant))
	}
	out.InsertAt(start, prefix...)

	if _, err := insertNode(out, start+len(prefix), wrapUnscoped(cloneNodes(arr[len(arr)-1]))); err != nil {
		return nil, err
	}
	return out, nil
}

// compoundStart returns the node index where the compound with the given
// ordinal begins.
func compoundStart(sel *selector.Selector, compound int) int {
	if compound <= 0 {
		return 0
	}
	seen := 0
	for i, n := range sel.Nodes {
		if _, ok := n.(*selector.Combinator); ok {
			seen++
			if seen == compound {
				return i + 1
			}
		}
	}
	return 0
}

func cloneNodes(nodes []selector.Node) []selector.Node {
	out := make([]selector.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
