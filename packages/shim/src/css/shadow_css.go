package css

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"scopecss-go/packages/shim/src/selector"
)

// Default attribute names for the two scope markers.
const (
	DefaultContentAttr = "content"
	DefaultHostAttr    = "host"
)

// At-rules whose bodies contain nested style rules that must be scoped.
var scopedAtRuleIdentifiers = []string{
	"@media",
	"@supports",
	"@document",
	"@layer",
	"@container",
	"@scope",
	"@starting-style",
}

var (
	commentRe         = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	commentWithHashRe = regexp.MustCompile(`/\*\s*#\s*source(Mapping)?URL=`)
	newLinesRe        = regexp.MustCompile(`\r?\n`)
	commentMarkerRe   = regexp.MustCompile(commentPlaceholder)
)

// ShadowCssOptions configures one scoping pass.
type ShadowCssOptions struct {
	// ContentAttr marks elements that belong to the component's template.
	ContentAttr string
	// HostAttr marks the component's host element.
	HostAttr string
	// Legacy reproduces the old encapsulation behavior: nothing to the
	// right of :host gets a content marker.
	Legacy bool
}

// ShadowCss rewrites stylesheets so their selectors only match inside one
// component's emulated shadow DOM.
type ShadowCss struct {
	opts ShadowCssOptions
	log  *zap.Logger
}

// NewShadowCss creates a scoper. A nil logger disables logging.
func NewShadowCss(opts ShadowCssOptions, log *zap.Logger) *ShadowCss {
	if opts.ContentAttr == "" {
		opts.ContentAttr = DefaultContentAttr
	}
	if opts.HostAttr == "" {
		opts.HostAttr = DefaultHostAttr
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ShadowCss{opts: opts, log: log.Named("shadow-css")}
}

// ShimCssText scopes every style rule of a stylesheet. Rules the engine has
// no business touching (keyframes, @font-face, @import, unparseable
// selectors) come out byte-identical. The first invariant violation aborts
// the pass.
func (sc *ShadowCss) ShimCssText(cssText string) (string, error) {
	// Comments are lifted out before splitting and restored afterwards;
	// only sourcemap comments keep their text, the rest collapse to their
	// newlines so line numbers survive.
	var comments []string
	cssText = commentRe.ReplaceAllStringFunc(cssText, func(m string) string {
		if commentWithHashRe.MatchString(m) {
			comments = append(comments, m)
		} else {
			comments = append(comments, strings.Join(newLinesRe.FindAllString(m, -1), "")+"\n")
		}
		return commentPlaceholder
	})

	scoped, err := sc.scopeRules(cssText)
	if err != nil {
		return "", err
	}

	commentIdx := 0
	scoped = commentMarkerRe.ReplaceAllStringFunc(scoped, func(string) string {
		if commentIdx < len(comments) {
			c := comments[commentIdx]
			commentIdx++
			return c
		}
		return ""
	})

	out := strings.TrimSpace(scoped)
	sc.log.Debug("shimmed stylesheet",
		zap.Int("inputLen", len(cssText)),
		zap.Int("outputLen", len(out)))
	return out, nil
}

// scopeRules walks the rules of one block, recursing into scoped at-rules.
func (sc *ShadowCss) scopeRules(cssText string) (string, error) {
	var firstErr error
	out := ProcessRules(cssText, func(rule *CssRule) *CssRule {
		if firstErr != nil {
			return rule
		}
		if strings.HasPrefix(rule.Selector, "@") {
			for _, atRule := range scopedAtRuleIdentifiers {
				if strings.HasPrefix(rule.Selector, atRule) {
					content, err := sc.scopeRules(rule.Content)
					if err != nil {
						firstErr = err
						return rule
					}
					return NewCssRule(rule.Selector, content)
				}
			}
			// @keyframes (any vendor prefix), @font-face, @page, @import
			// and the rest pass through untouched.
			return rule
		}

		scoped, err := sc.scopeRuleSelector(rule.Selector)
		if err != nil {
			firstErr = err
			return rule
		}
		return NewCssRule(scoped, rule.Content)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// scopeRuleSelector rewrites one rule's selector list. Text that does not
// parse as a selector is left alone so the stylesheet keeps working.
func (sc *ShadowCss) scopeRuleSelector(text string) (string, error) {
	// Comment placeholders inside the selector would break parsing. They
	// are lifted to the front of the rule so the restore pass still finds
	// one placeholder per collected comment, in order.
	prefix := ""
	parseText := text
	if n := strings.Count(text, commentPlaceholder); n > 0 {
		prefix = strings.Repeat(commentPlaceholder, n)
		parseText = strings.TrimSpace(strings.ReplaceAll(text, commentPlaceholder, " "))
	}

	list, err := selector.Parse(parseText)
	if err != nil {
		sc.log.Warn("selector did not parse, leaving rule unscoped",
			zap.String("selector", parseText), zap.Error(err))
		return text, nil
	}
	list.Origin = parseText

	if err := sc.convertHostContext(list); err != nil {
		return "", err
	}
	for _, sel := range list.Selectors {
		if err := sc.shimSelector(sel); err != nil {
			return "", err
		}
	}
	return prefix + list.String(), nil
}
