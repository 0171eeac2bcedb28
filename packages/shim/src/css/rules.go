package css

import (
	"fmt"
	"regexp"
	"strings"
)

// Lossless rule splitting. A stylesheet is carved into (selector, content)
// pairs by escaping brace blocks and quoted strings into placeholders, so
// that everything the callback leaves alone is reassembled byte-identical.

const (
	commentPlaceholder = "%COMMENT%"
	blockPlaceholder   = "%BLOCK%"

	commaInPlaceholder = "%COMMA_IN_PLACEHOLDER%"
	semiInPlaceholder  = "%SEMI_IN_PLACEHOLDER%"
	colonInPlaceholder = "%COLON_IN_PLACEHOLDER%"
)

var (
	ruleRe = regexp.MustCompile(fmt.Sprintf(`(\s*(?:%s\s*)*)([^;\{\}]+?)(\s*)((?:{%s}?\s*;?)|(?:\s*;))`, commentPlaceholder, blockPlaceholder))

	commaInPlaceholderRe = regexp.MustCompile(commaInPlaceholder)
	semiInPlaceholderRe  = regexp.MustCompile(semiInPlaceholder)
	colonInPlaceholderRe = regexp.MustCompile(colonInPlaceholder)

	blockPairs = map[byte]byte{'{': '}'}
)

// CssRule is one carved-out rule: its selector text and, for rules with a
// body, the raw content between the braces.
type CssRule struct {
	Selector string
	Content  string
}

// NewCssRule creates a CssRule.
func NewCssRule(selector, content string) *CssRule {
	return &CssRule{Selector: selector, Content: content}
}

// RuleCallback rewrites one rule; returning the input unchanged leaves the
// rule byte-identical in the output.
type RuleCallback func(rule *CssRule) *CssRule

// ProcessRules applies the callback to every top-level rule of the input
// and reassembles the stylesheet around the results.
func ProcessRules(input string, ruleCallback RuleCallback) string {
	escaped := escapeInStrings(input)
	withBlocks := escapeBlocks(escaped)
	nextBlockIndex := 0

	escapedResult := ruleRe.ReplaceAllStringFunc(withBlocks.escapedString, func(match string) string {
		m := ruleRe.FindStringSubmatch(match)
		if len(m) < 5 {
			return match
		}
		suffix := m[4]
		content := ""
		contentPrefix := ""
		if strings.HasPrefix(suffix, "{"+blockPlaceholder) {
			if nextBlockIndex < len(withBlocks.blocks) {
				content = withBlocks.blocks[nextBlockIndex]
				nextBlockIndex++
			}
			suffix = suffix[len(blockPlaceholder)+1:]
			contentPrefix = "{"
		}

		rule := ruleCallback(NewCssRule(m[2], content))
		return m[1] + rule.Selector + m[3] + contentPrefix + rule.Content + suffix
	})

	return unescapeInStrings(escapedResult)
}

type stringWithEscapedBlocks struct {
	escapedString string
	blocks        []string
}

// escapeBlocks lifts every top-level brace block out of the input, leaving
// a placeholder behind. Backslash escapes are honored; nesting is tracked
// by depth.
func escapeBlocks(input string) *stringWithEscapedBlocks {
	var resultParts []string
	var escapedBlocks []string

	openCharCount := 0
	nonBlockStartIndex := 0
	blockStartIndex := -1
	var openChar, closeChar byte

	for i := 0; i < len(input); i++ {
		char := input[i]
		switch {
		case char == '\\':
			i++
		case closeChar != 0 && char == closeChar:
			openCharCount--
			if openCharCount == 0 {
				escapedBlocks = append(escapedBlocks, input[blockStartIndex:i])
				resultParts = append(resultParts, blockPlaceholder)
				nonBlockStartIndex = i
				blockStartIndex = -1
				openChar, closeChar = 0, 0
			}
		case openChar != 0 && char == openChar:
			openCharCount++
		case openCharCount == 0:
			if close, ok := blockPairs[char]; ok {
				openChar, closeChar = char, close
				openCharCount = 1
				blockStartIndex = i + 1
				resultParts = append(resultParts, input[nonBlockStartIndex:blockStartIndex])
			}
		}
	}

	if blockStartIndex != -1 {
		escapedBlocks = append(escapedBlocks, input[blockStartIndex:])
		resultParts = append(resultParts, blockPlaceholder)
	} else {
		resultParts = append(resultParts, input[nonBlockStartIndex:])
	}

	return &stringWithEscapedBlocks{
		escapedString: strings.Join(resultParts, ""),
		blocks:        escapedBlocks,
	}
}

// escapeInStrings hides rule-splitting metacharacters that occur inside
// quoted strings behind placeholders, so the rule regex cannot split on
// them.
func escapeInStrings(input string) string {
	result := []byte(input)
	var quote byte

	for i := 0; i < len(result); i++ {
		char := result[i]
		if char == '\\' {
			i++
			continue
		}
		if quote == 0 {
			if char == '\'' || char == '"' {
				quote = char
			}
			continue
		}
		if char == quote {
			quote = 0
			continue
		}
		var placeholder string
		switch char {
		case ';':
			placeholder = semiInPlaceholder
		case ',':
			placeholder = commaInPlaceholder
		case ':':
			placeholder = colonInPlaceholder
		}
		if placeholder != "" {
			result = append(result[:i], append([]byte(placeholder), result[i+1:]...)...)
			i += len(placeholder) - 1
		}
	}
	return string(result)
}

func unescapeInStrings(input string) string {
	result := commaInPlaceholderRe.ReplaceAllString(input, ",")
	result = semiInPlaceholderRe.ReplaceAllString(result, ";")
	return colonInPlaceholderRe.ReplaceAllString(result, ":")
}
