package selector

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	css "github.com/tdewolff/parse/v2/css"
)

// legacyPseudoElements are the pseudo-elements that may still be written in
// the single-colon form.
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

// selectorArgPseudos are the functional pseudo-classes whose argument is
// itself a selector list and is parsed as such. Everything else keeps its
// argument verbatim.
var selectorArgPseudos = map[string]bool{
	"host":         true,
	"host-context": true,
	"not":          true,
	"is":           true,
	"where":        true,
	"global":       true,
}

type token struct {
	tt   css.TokenType
	text string
}

// Parse parses the selector text of one rule into a selector list. Comments
// are stripped. All scan state is local to the call.
func Parse(text string) (*SelectorList, error) {
	return parseList(text, nil)
}

func parseList(text string, owner *Pseudo) (*SelectorList, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	list := &SelectorList{owner: owner, Origin: text}
	cur := &Selector{}

	// Combinator state between two compounds: an explicit operator wins
	// over surrounding whitespace.
	spacePending := false
	opPending := false
	var op CombinatorOp

	flush := func() error {
		if len(cur.Nodes) > 0 && (spacePending || opPending) {
			o := Descendant
			if opPending {
				o = op
			}
			cur.Append(NewCombinator(o))
		} else if opPending {
			return fmt.Errorf("selector %q starts with a combinator", text)
		}
		spacePending = false
		opPending = false
		return nil
	}
	finish := func() error {
		if opPending {
			return fmt.Errorf("selector %q ends in a combinator", text)
		}
		if len(cur.Nodes) == 0 {
			return fmt.Errorf("empty selector in %q", text)
		}
		list.Append(cur)
		cur = &Selector{}
		spacePending = false
		return nil
	}

	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.tt {
		case css.WhitespaceToken:
			spacePending = true
			i++
		case css.CommentToken:
			i++
		case css.CommaToken:
			if err := finish(); err != nil {
				return nil, err
			}
			i++
		case css.DelimToken:
			switch t.text {
			case ">":
				opPending, op = true, Child
				i++
			case "+":
				opPending, op = true, NextSibling
				i++
			case "~":
				opPending, op = true, FollowingSibling
				i++
			case "*":
				if err := flush(); err != nil {
					return nil, err
				}
				cur.Append(NewElement("*"))
				i++
			case ".":
				if i+1 >= len(toks) || toks[i+1].tt != css.IdentToken {
					return nil, fmt.Errorf("expected class name after '.' in %q", text)
				}
				if err := flush(); err != nil {
					return nil, err
				}
				cur.Append(NewClass(toks[i+1].text))
				i += 2
			default:
				return nil, fmt.Errorf("unexpected %q in selector %q", t.text, text)
			}
		case css.IdentToken:
			if err := flush(); err != nil {
				return nil, err
			}
			cur.Append(NewElement(t.text))
			i++
		case css.HashToken:
			if err := flush(); err != nil {
				return nil, err
			}
			cur.Append(NewID(strings.TrimPrefix(t.text, "#")))
			i++
		case css.LeftBracketToken:
			if err := flush(); err != nil {
				return nil, err
			}
			var body strings.Builder
			i++
			closed := false
			for i < len(toks) {
				if toks[i].tt == css.RightBracketToken {
					closed = true
					i++
					break
				}
				body.WriteString(toks[i].text)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated attribute selector in %q", text)
			}
			cur.Append(NewAttribute(body.String()))
		case css.ColonToken:
			if err := flush(); err != nil {
				return nil, err
			}
			p, rest, err := parsePseudo(toks, i, text)
			if err != nil {
				return nil, err
			}
			cur.Append(p)
			i = rest
		default:
			return nil, fmt.Errorf("unexpected token %q in selector %q", t.text, text)
		}
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return list, nil
}

func parsePseudo(toks []token, i int, text string) (*Pseudo, int, error) {
	i++ // consume ':'
	double := false
	if i < len(toks) && toks[i].tt == css.ColonToken {
		double = true
		i++
	}
	if i >= len(toks) {
		return nil, 0, fmt.Errorf("dangling ':' in selector %q", text)
	}

	switch toks[i].tt {
	case css.IdentToken:
		name := toks[i].text
		p := &Pseudo{Name: name, Double: double, Element: double || legacyPseudoElements[name]}
		return p, i + 1, nil

	case css.FunctionToken:
		name := strings.TrimSuffix(toks[i].text, "(")
		i++
		var raw strings.Builder
		depth := 1
		for i < len(toks) {
			t := toks[i]
			switch t.tt {
			case css.LeftParenthesisToken, css.FunctionToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
			if depth == 0 {
				break
			}
			raw.WriteString(t.text)
			i++
		}
		if depth != 0 {
			return nil, 0, fmt.Errorf("unterminated %q argument in selector %q", name, text)
		}
		i++ // consume ')'

		p := &Pseudo{Name: name, Double: double, Element: double && !selectorArgPseudos[name]}
		arg := raw.String()
		if selectorArgPseudos[name] && strings.TrimSpace(arg) != "" {
			inner, err := parseList(strings.TrimSpace(arg), p)
			if err != nil {
				p.RawArg = arg
			} else {
				p.SetArg(inner)
			}
		} else {
			p.RawArg = arg
		}
		return p, i, nil

	default:
		return nil, 0, fmt.Errorf("unexpected token %q after ':' in selector %q", toks[i].text, text)
	}
}

func tokenize(text string) ([]token, error) {
	l := css.NewLexer(parse.NewInputString(text))
	var toks []token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("tokenizing selector %q: %w", text, err)
			}
			return toks, nil
		}
		toks = append(toks, token{tt: tt, text: string(data)})
	}
}
