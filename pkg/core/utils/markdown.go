package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips the outer code fence a model often wraps its reply in,
// leaving pure markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown reports whether the input parses as markdown. Goldmark is
// extremely permissive, so this only catches gross breakage.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader([]byte(input)))
	return doc != nil
}
