// Package selector provides the mutable CSS selector tree the scoping
// engine operates on: a closed set of node variants, grouped into complex
// selectors and comma-separated selector lists.
//
// Parent links are non-owning back-references. They are read only during
// upward traversal (attributing an error to the rule it came from) and never
// drive ownership or mutation.
package selector

import "strings"

// Node is a single piece of a complex selector.
type Node interface {
	// Clone returns a deep, detached copy of the node.
	Clone() Node
	// String serializes the node back to CSS selector text.
	String() string

	parent() *Selector
	setParent(*Selector)
}

type base struct {
	sel *Selector
}

func (b *base) parent() *Selector     { return b.sel }
func (b *base) setParent(s *Selector) { b.sel = s }

// Element is a type selector. Name "*" is the universal selector.
type Element struct {
	base
	Name string
}

// NewElement creates a type selector node.
func NewElement(name string) *Element { return &Element{Name: name} }

// IsUniversal reports whether the node is the universal selector.
func (e *Element) IsUniversal() bool { return e.Name == "*" }

func (e *Element) Clone() Node    { return &Element{Name: e.Name} }
func (e *Element) String() string { return e.Name }

// Class is a class selector (".name").
type Class struct {
	base
	Name string
}

// NewClass creates a class selector node.
func NewClass(name string) *Class { return &Class{Name: name} }

func (c *Class) Clone() Node    { return &Class{Name: c.Name} }
func (c *Class) String() string { return "." + c.Name }

// ID is an id selector ("#name").
type ID struct {
	base
	Name string
}

// NewID creates an id selector node.
func NewID(name string) *ID { return &ID{Name: name} }

func (i *ID) Clone() Node    { return &ID{Name: i.Name} }
func (i *ID) String() string { return "#" + i.Name }

// Attribute is an attribute selector. Body is the raw text between the
// brackets, e.g. `a~="b"`.
type Attribute struct {
	base
	Body string
}

// NewAttribute creates an attribute selector node from its bracket body.
func NewAttribute(body string) *Attribute { return &Attribute{Body: body} }

func (a *Attribute) Clone() Node    { return &Attribute{Body: a.Body} }
func (a *Attribute) String() string { return "[" + a.Body + "]" }

// CombinatorOp enumerates the operators that join compound selectors.
type CombinatorOp int

const (
	Descendant CombinatorOp = iota
	Child
	NextSibling
	FollowingSibling
)

// Combinator separates two compound selectors.
type Combinator struct {
	base
	Op CombinatorOp
}

// NewCombinator creates a combinator node.
func NewCombinator(op CombinatorOp) *Combinator { return &Combinator{Op: op} }

func (c *Combinator) Clone() Node { return &Combinator{Op: c.Op} }

func (c *Combinator) String() string {
	switch c.Op {
	case Child:
		return " > "
	case NextSibling:
		return " + "
	case FollowingSibling:
		return " ~ "
	default:
		return " "
	}
}

// Comment is a CSS comment. The parser strips comments, so these never
// reach the scoping engine; the variant exists so splicing primitives can
// reject them explicitly.
type Comment struct {
	base
	Text string
}

func (c *Comment) Clone() Node    { return &Comment{Text: c.Text} }
func (c *Comment) String() string { return "/*" + c.Text + "*/" }

// Pseudo is a pseudo-class or pseudo-element. A functional pseudo whose
// argument is itself a selector carries it parsed in Arg; any other
// argument is carried verbatim in RawArg. Element marks pseudo-elements,
// which must terminate their compound. Double records whether the source
// used the two-colon form, so legacy spellings like ":before" serialize
// unchanged.
type Pseudo struct {
	base
	Name    string
	Element bool
	Double  bool
	Arg     *SelectorList
	RawArg  string
}

// NewPseudo creates a pseudo-class node.
func NewPseudo(name string) *Pseudo { return &Pseudo{Name: name} }

// SetArg attaches a nested selector-list argument, fixing up its owner
// back-reference.
func (p *Pseudo) SetArg(l *SelectorList) {
	p.Arg = l
	if l != nil {
		l.owner = p
	}
}

func (p *Pseudo) Clone() Node {
	c := &Pseudo{Name: p.Name, Element: p.Element, Double: p.Double, RawArg: p.RawArg}
	if p.Arg != nil {
		c.SetArg(p.Arg.cloneFor(c))
	}
	return c
}

func (p *Pseudo) String() string {
	var b strings.Builder
	b.WriteByte(':')
	if p.Double {
		b.WriteByte(':')
	}
	b.WriteString(p.Name)
	switch {
	case p.Arg != nil:
		b.WriteByte('(')
		b.WriteString(p.Arg.String())
		b.WriteByte(')')
	case p.RawArg != "":
		b.WriteByte('(')
		b.WriteString(p.RawArg)
		b.WriteByte(')')
	}
	return b.String()
}

// IsPseudoElement reports whether the node is a pseudo-element.
func IsPseudoElement(n Node) bool {
	p, ok := n.(*Pseudo)
	return ok && p.Element
}

// Selector is one complex selector: an ordered run of nodes where
// combinators separate the compound selectors.
type Selector struct {
	list  *SelectorList
	Nodes []Node
}

// NewSelector creates a detached selector from the given nodes.
func NewSelector(nodes ...Node) *Selector {
	s := &Selector{}
	s.Append(nodes...)
	return s
}

// Append adds nodes at the end of the selector.
func (s *Selector) Append(nodes ...Node) {
	for _, n := range nodes {
		n.setParent(s)
	}
	s.Nodes = append(s.Nodes, nodes...)
}

// InsertAt splices nodes in before position i.
func (s *Selector) InsertAt(i int, nodes ...Node) {
	for _, n := range nodes {
		n.setParent(s)
	}
	s.Nodes = append(s.Nodes[:i], append(append([]Node{}, nodes...), s.Nodes[i:]...)...)
}

// RemoveAt detaches and returns the node at position i.
func (s *Selector) RemoveAt(i int) Node {
	n := s.Nodes[i]
	n.setParent(nil)
	s.Nodes = append(s.Nodes[:i], s.Nodes[i+1:]...)
	return n
}

// ReplaceAt swaps the node at position i for a new one.
func (s *Selector) ReplaceAt(i int, n Node) {
	s.Nodes[i].setParent(nil)
	n.setParent(s)
	s.Nodes[i] = n
}

// Index returns the position of n in the selector, or -1.
func (s *Selector) Index(n Node) int {
	for i, m := range s.Nodes {
		if m == n {
			return i
		}
	}
	return -1
}

// Empty reports whether the selector has no nodes left.
func (s *Selector) Empty() bool { return len(s.Nodes) == 0 }

// Clone returns a deep, detached copy of the selector.
func (s *Selector) Clone() *Selector {
	c := &Selector{}
	for _, n := range s.Nodes {
		c.Append(n.Clone())
	}
	return c
}

func (s *Selector) String() string {
	var b strings.Builder
	for _, n := range s.Nodes {
		b.WriteString(n.String())
	}
	return b.String()
}

// SelectorList holds the comma-separated alternatives of one rule, or the
// alternatives of a nested pseudo argument. Origin keeps the source text
// the list was parsed from, for diagnostics.
type SelectorList struct {
	owner     *Pseudo
	Origin    string
	Selectors []*Selector
}

// NewSelectorList creates a detached list from the given selectors.
func NewSelectorList(sels ...*Selector) *SelectorList {
	l := &SelectorList{}
	l.Append(sels...)
	return l
}

// Append adds selectors at the end of the list.
func (l *SelectorList) Append(sels ...*Selector) {
	for _, s := range sels {
		s.list = l
	}
	l.Selectors = append(l.Selectors, sels...)
}

// Replace swaps the list contents for a new set of selectors.
func (l *SelectorList) Replace(sels []*Selector) {
	for _, s := range l.Selectors {
		s.list = nil
	}
	l.Selectors = nil
	l.Append(sels...)
}

func (l *SelectorList) String() string {
	parts := make([]string, len(l.Selectors))
	for i, s := range l.Selectors {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func (l *SelectorList) cloneFor(owner *Pseudo) *SelectorList {
	c := &SelectorList{owner: owner, Origin: l.Origin}
	for _, s := range l.Selectors {
		c.Append(s.Clone())
	}
	return c
}

// maxOriginHops bounds the upward walk used for error attribution, so a
// detached or cyclic structure yields a generic error instead of an
// unbounded traversal.
const maxOriginHops = 16

// Origin resolves the source text of the rule selector a node belongs to.
// It reports false when the node cannot reach a root list within the hop
// bound.
func Origin(n Node) (string, bool) {
	cur := n
	for hops := 0; hops < maxOriginHops; hops++ {
		sel := cur.parent()
		if sel == nil {
			return "", false
		}
		list := sel.list
		if list == nil {
			return "", false
		}
		if list.owner == nil {
			return list.Origin, true
		}
		cur = list.owner
	}
	return "", false
}
