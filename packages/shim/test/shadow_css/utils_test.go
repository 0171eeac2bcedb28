package shadow_css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"scopecss-go/packages/shim/src/css"
)

// shim scopes CSS text with the given marker attributes.
func shim(t *testing.T, cssText string, contentAttr string, hostAttr ...string) string {
	t.Helper()
	host := ""
	if len(hostAttr) > 0 {
		host = hostAttr[0]
	}
	sc := css.NewShadowCss(css.ShadowCssOptions{
		ContentAttr: contentAttr,
		HostAttr:    host,
	}, zap.NewNop())
	out, err := sc.ShimCssText(cssText)
	if err != nil {
		t.Fatalf("ShimCssText(%q) failed: %v", cssText, err)
	}
	return out
}

// shimLegacy scopes CSS text with legacy encapsulation enabled.
func shimLegacy(t *testing.T, cssText string, contentAttr string, hostAttr string) string {
	t.Helper()
	sc := css.NewShadowCss(css.ShadowCssOptions{
		ContentAttr: contentAttr,
		HostAttr:    hostAttr,
		Legacy:      true,
	}, zap.NewNop())
	out, err := sc.ShimCssText(cssText)
	if err != nil {
		t.Fatalf("ShimCssText(%q) failed: %v", cssText, err)
	}
	return out
}

// extractCssContent normalizes whitespace for comparison.
func extractCssContent(css string) string {
	css = strings.TrimLeft(css, "\n\t ")
	css = strings.TrimRight(css, "\n\t ")
	re := strings.NewReplacer(
		"\n", " ",
		"\t", " ",
		"\r", " ",
	)
	css = re.Replace(css)
	for strings.Contains(css, "  ") {
		css = strings.ReplaceAll(css, "  ", " ")
	}
	css = strings.ReplaceAll(css, ": ", ":")
	css = strings.ReplaceAll(css, " }", "}")
	return css
}

// equalCss compares two CSS strings after normalization.
func equalCss(actual string, expected string) bool {
	return extractCssContent(actual) == extractCssContent(expected)
}
