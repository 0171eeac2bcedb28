package css

import "scopecss-go/packages/shim/src/selector"

// Safe insertion primitives. Every mutation of a compound selector in this
// package goes through these, which enforce the compound invariants: at
// most one type selector, placed first; at most one pseudo-element, placed
// last; combinators and comments never inside a compound.

// insertNode splices a simple selector node into the compound around the
// anchor position and returns the index it landed at. Scanning runs forward
// from the anchor to the first combinator or pseudo-element; the node is
// placed immediately before that boundary, or appended when the compound
// runs to the end of the selector.
func insertNode(sel *selector.Selector, anchor int, n selector.Node) (int, error) {
	switch n.(type) {
	case *selector.Combinator:
		return 0, invariantErr("combinator inside a compound", sel, anchor, n)
	case *selector.Comment:
		return 0, invariantErr("comment inside a compound", sel, anchor, n)
	case *selector.Element:
		return insertTag(sel, anchor, n.(*selector.Element))
	}

	for i := anchor; i < len(sel.Nodes); i++ {
		switch at := sel.Nodes[i].(type) {
		case *selector.Combinator:
			sel.InsertAt(i, n)
			return i, nil
		case *selector.Pseudo:
			if at.Element {
				if selector.IsPseudoElement(n) {
					return 0, invariantErr("second pseudo-element", sel, i, n)
				}
				sel.InsertAt(i, n)
				return i, nil
			}
		}
	}
	sel.Append(n)
	return len(sel.Nodes) - 1, nil
}

// insertTag places a type selector at the head of the compound around the
// anchor. Scanning runs backward: a combinator means the compound start was
// found, an existing type selector is a conflict, and a universal selector
// is replaced in place.
func insertTag(sel *selector.Selector, anchor int, tag *selector.Element) (int, error) {
	for i := anchor - 1; i >= 0; i-- {
		switch at := sel.Nodes[i].(type) {
		case *selector.Combinator:
			sel.InsertAt(i+1, tag)
			return i + 1, nil
		case *selector.Element:
			if at.IsUniversal() {
				sel.ReplaceAt(i, tag)
				return i, nil
			}
			return 0, invariantErr("duplicate type selector", sel, i, tag)
		}
	}
	sel.InsertAt(0, tag)
	return 0, nil
}

// insertAllNodes inserts a batch of simple selector nodes, threading each
// one in immediately after the previous insertion point. A leading type
// selector lands at the compound head, so the batch re-anchors past the
// original anchor in that case. The single-pseudo-element rule holds for
// the batch as a whole, not just pairwise.
func insertAllNodes(sel *selector.Selector, anchor int, nodes []selector.Node) error {
	pseudoElements := 0
	for _, n := range nodes {
		switch n.(type) {
		case *selector.Combinator:
			return invariantErr("combinator inside a compound", sel, anchor, n)
		case *selector.Comment:
			return invariantErr("comment inside a compound", sel, anchor, n)
		}
		if selector.IsPseudoElement(n) {
			pseudoElements++
			if pseudoElements > 1 {
				return invariantErr("second pseudo-element", sel, anchor, n)
			}
		}
	}

	at := anchor
	for i, n := range nodes {
		_, leadingTag := n.(*selector.Element)
		idx, err := insertNode(sel, at, n)
		if err != nil {
			return err
		}
		if i == 0 && leadingTag && idx <= anchor {
			// The tag landed ahead of the anchor; later nodes still belong
			// next to the (shifted) anchor, not next to the tag.
			at = anchor + 1
		} else {
			at = idx + 1
		}
	}
	return nil
}
