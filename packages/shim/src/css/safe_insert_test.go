package css

import (
	"errors"
	"testing"

	"scopecss-go/packages/shim/src/selector"
)

func pseudoElement(name string) *selector.Pseudo {
	p := selector.NewPseudo(name)
	p.Element = true
	p.Double = true
	return p
}

func TestInsertNode(t *testing.T) {
	t.Run("appends at the end of an open compound", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"))
		idx, err := insertNode(sel, 0, selector.NewAttribute("x"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 1 || sel.String() != ".a[x]" {
			t.Errorf("Expected .a[x] at 1, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("stops at a combinator", func(t *testing.T) {
		sel := selector.NewSelector(
			selector.NewClass("a"),
			selector.NewCombinator(selector.Descendant),
			selector.NewClass("b"),
		)
		idx, err := insertNode(sel, 0, selector.NewAttribute("x"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 1 || sel.String() != ".a[x] .b" {
			t.Errorf("Expected .a[x] .b at 1, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("stops before a pseudo-element", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"), pseudoElement("before"))
		idx, err := insertNode(sel, 0, selector.NewAttribute("x"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 1 || sel.String() != ".a[x]::before" {
			t.Errorf("Expected .a[x]::before at 1, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("rejects a second pseudo-element", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"), pseudoElement("before"))
		_, err := insertNode(sel, 0, pseudoElement("after"))
		var invErr *InvariantError
		if !errors.As(err, &invErr) {
			t.Fatalf("Expected InvariantError, got %v", err)
		}
	})

	t.Run("rejects combinators and comments", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"))
		if _, err := insertNode(sel, 0, selector.NewCombinator(selector.Child)); err == nil {
			t.Error("Expected error inserting a combinator")
		}
		if _, err := insertNode(sel, 0, &selector.Comment{Text: "c"}); err == nil {
			t.Error("Expected error inserting a comment")
		}
	})
}

func TestInsertTag(t *testing.T) {
	t.Run("lands at the compound head", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"), selector.NewClass("b"))
		idx, err := insertNode(sel, 1, selector.NewElement("div"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 0 || sel.String() != "div.a.b" {
			t.Errorf("Expected div.a.b at 0, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("lands after a combinator", func(t *testing.T) {
		sel := selector.NewSelector(
			selector.NewClass("a"),
			selector.NewCombinator(selector.Child),
			selector.NewClass("b"),
		)
		idx, err := insertNode(sel, 2, selector.NewElement("div"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 2 || sel.String() != ".a > div.b" {
			t.Errorf("Expected .a > div.b at 2, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("replaces a universal selector in place", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewElement("*"), selector.NewClass("x"))
		idx, err := insertNode(sel, 1, selector.NewElement("div"))
		if err != nil {
			t.Fatal(err)
		}
		if idx != 0 || sel.String() != "div.x" {
			t.Errorf("Expected div.x at 0, got %q at %d", sel.String(), idx)
		}
	})

	t.Run("rejects a duplicate type selector", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewElement("div"), selector.NewClass("x"))
		_, err := insertNode(sel, 1, selector.NewElement("p"))
		var invErr *InvariantError
		if !errors.As(err, &invErr) {
			t.Fatalf("Expected InvariantError, got %v", err)
		}
	})

	t.Run("attributes the error to the originating rule", func(t *testing.T) {
		list, err := selector.Parse("div p")
		if err != nil {
			t.Fatal(err)
		}
		sel := list.Selectors[0]
		_, err = insertNode(sel, 1, selector.NewElement("span"))
		var invErr *InvariantError
		if !errors.As(err, &invErr) {
			t.Fatalf("Expected InvariantError, got %v", err)
		}
		if invErr.Rule != "div p" {
			t.Errorf("Expected rule %q, got %q", "div p", invErr.Rule)
		}
	})
}

func TestInsertAllNodes(t *testing.T) {
	t.Run("keeps the batch contiguous", func(t *testing.T) {
		sel := selector.NewSelector(
			selector.NewClass("a"),
			selector.NewCombinator(selector.Descendant),
			selector.NewClass("b"),
		)
		err := insertAllNodes(sel, 0, []selector.Node{
			selector.NewClass("x"),
			selector.NewClass("y"),
		})
		if err != nil {
			t.Fatal(err)
		}
		if sel.String() != ".a.x.y .b" {
			t.Errorf("Expected .a.x.y .b, got %q", sel.String())
		}
	})

	t.Run("re-anchors after a leading tag", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"))
		err := insertAllNodes(sel, 0, []selector.Node{
			selector.NewElement("div"),
			selector.NewClass("x"),
		})
		if err != nil {
			t.Fatal(err)
		}
		if sel.String() != "div.a.x" {
			t.Errorf("Expected div.a.x, got %q", sel.String())
		}
	})

	t.Run("rejects a batch with two pseudo-elements", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"))
		err := insertAllNodes(sel, 0, []selector.Node{
			pseudoElement("before"),
			pseudoElement("after"),
		})
		var invErr *InvariantError
		if !errors.As(err, &invErr) {
			t.Fatalf("Expected InvariantError, got %v", err)
		}
	})

	t.Run("rejects combinators in the batch", func(t *testing.T) {
		sel := selector.NewSelector(selector.NewClass("a"))
		err := insertAllNodes(sel, 0, []selector.Node{
			selector.NewClass("x"),
			selector.NewCombinator(selector.Descendant),
			selector.NewClass("y"),
		})
		if err == nil {
			t.Error("Expected error inserting a combinator batch")
		}
	})
}
