package css

import "scopecss-go/packages/shim/src/selector"

// shimSelector walks a normalized selector once, splicing the scope
// markers in and resolving the remaining special pseudo-classes. It expects
// host-context and global escapes to have been rewritten away already; the
// pass is not idempotent and must not run on an already-shimmed selector.
func (sc *ShadowCss) shimSelector(sel *selector.Selector) error {
	hasHost := containsHostPseudo(sel)

	// Selectors without a host are local from the start; with a host, the
	// part before the host compound matches global context.
	needsContent := !hasHost
	seenDeep := false
	seenHost := false
	hostMarked := false

	// End of the node range spliced from the last unscoped marker; every
	// compound inside it stays unscoped, combinators included.
	unscopedEnd := -1

	for i := 0; i < len(sel.Nodes); {
		n := sel.Nodes[i]

		if _, ok := n.(*selector.Combinator); ok {
			if sc.opts.Legacy && seenHost {
				// Legacy encapsulation never scopes past :host.
				seenDeep = true
			}
			needsContent = !seenDeep && seenHost == hasHost
			if i < unscopedEnd {
				needsContent = false
			}
			i++
			continue
		}

		if p, ok := n.(*selector.Pseudo); ok {
			switch p.Name {
			case hostPseudoName:
				seenHost = true
				if p.Arg != nil && len(p.Arg.Selectors) > 0 {
					if err := insertAllNodes(sel, i, cloneNodes(p.Arg.Selectors[0].Nodes)); err != nil {
						return err
					}
					i = sel.Index(n)
				}
				if !seenDeep && !hostMarked {
					if _, err := insertNode(sel, i, selector.NewAttribute(sc.opts.HostAttr)); err != nil {
						return err
					}
					hostMarked = true
					i = sel.Index(n)
				}
				sel.RemoveAt(i)
				continue

			case unscopedPseudoName:
				// Context/global compounds are never content-scoped.
				needsContent = false
				var inner []selector.Node
				if p.Arg != nil && len(p.Arg.Selectors) > 0 {
					inner = p.Arg.Selectors[0].Nodes
				}
				sel.RemoveAt(i)
				if len(inner) > 0 {
					sel.InsertAt(i, inner...)
					unscopedEnd = i + len(inner)
				}
				continue

			case deepPseudoName:
				seenDeep = true
				needsContent = false
				sel.RemoveAt(i)
				// Piercing swallows one implicit-descendant artifact.
				if i > 0 && isDescendant(sel.Nodes[i-1]) {
					i--
					sel.RemoveAt(i)
				} else if i < len(sel.Nodes) && isDescendant(sel.Nodes[i]) {
					sel.RemoveAt(i)
				}
				continue

			case rootPseudoName:
				needsContent = false
			}
		}

		if needsContent && atCompoundTail(sel, i) {
			if _, err := insertNode(sel, i, selector.NewAttribute(sc.opts.ContentAttr)); err != nil {
				return err
			}
			needsContent = false
		}
		i++
	}

	trimEdgeCombinators(sel)
	return nil
}

// atCompoundTail reports whether position i is where the content marker for
// the current compound belongs: before the compound's trailing
// pseudo-element, otherwise at its end.
func atCompoundTail(sel *selector.Selector, i int) bool {
	if selector.IsPseudoElement(sel.Nodes[i]) && i == 0 {
		return true
	}
	if i+1 >= len(sel.Nodes) {
		return true
	}
	next := sel.Nodes[i+1]
	if _, ok := next.(*selector.Combinator); ok {
		return true
	}
	return selector.IsPseudoElement(next)
}

func containsHostPseudo(sel *selector.Selector) bool {
	for _, n := range sel.Nodes {
		if p, ok := n.(*selector.Pseudo); ok && p.Name == hostPseudoName {
			return true
		}
	}
	return false
}

func isDescendant(n selector.Node) bool {
	c, ok := n.(*selector.Combinator)
	return ok && c.Op == selector.Descendant
}

// trimEdgeCombinators drops combinators stranded at either end of the
// selector by piercing or unscoped unwrapping.
func trimEdgeCombinators(sel *selector.Selector) {
	for len(sel.Nodes) > 0 {
		if _, ok := sel.Nodes[0].(*selector.Combinator); !ok {
			break
		}
		sel.RemoveAt(0)
	}
	for len(sel.Nodes) > 0 {
		if _, ok := sel.Nodes[len(sel.Nodes)-1].(*selector.Combinator); !ok {
			break
		}
		sel.RemoveAt(len(sel.Nodes) - 1)
	}
}
