package transform

import "strings"

// corporate suffixes that get folded into a plain " Company" tail.
var companySuffixes = []string{"COMPANY", "CO.", "LTD.", "INC."}

// NormalizeCompanyName canonicalizes an extracted company name: drops a
// leading "AL " article, folds a trailing corporate suffix into "Company",
// collapses whitespace, and title-cases the result. Pure ASCII transform,
// idempotent, and never empty ("Company" is the fallback).
func NormalizeCompanyName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Company"
	}

	if len(trimmed) > 3 && strings.EqualFold(trimmed[:3], "AL ") {
		trimmed = trimmed[3:]
	}

	words := strings.Fields(trimmed)
	if len(words) == 0 {
		return "Company"
	}

	last := strings.ToUpper(words[len(words)-1])
	for _, suffix := range companySuffixes {
		if last == suffix {
			words[len(words)-1] = "Company"
			break
		}
	}

	for i, w := range words {
		words[i] = titleCaseASCII(w)
	}
	return strings.Join(words, " ")
}

func titleCaseASCII(w string) string {
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
