package assessment

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// KeywordHits reports which rubric keyword hints the answer actually
// touches. Multi-word keywords match as contiguous token sequences; matching
// is case-insensitive.
func KeywordHits(answer string, keywords []string) []string {
	if answer == "" || len(keywords) == 0 {
		return nil
	}

	tokens := tokenize(answer)
	if len(tokens) == 0 {
		return nil
	}

	var hits []string
	for _, keyword := range keywords {
		parts := strings.Fields(strings.ToLower(keyword))
		if len(parts) == 0 {
			continue
		}
		if containsSequence(tokens, parts) {
			hits = append(hits, keyword)
		}
	}
	return hits
}

func tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		// Whitespace split is good enough when the tokenizer rejects the text.
		return strings.Fields(strings.ToLower(text))
	}

	proseTokens := doc.Tokens()
	tokens := make([]string, 0, len(proseTokens))
	for _, t := range proseTokens {
		tokens = append(tokens, strings.ToLower(t.Text))
	}
	return tokens
}

func containsSequence(tokens, parts []string) bool {
	if len(parts) > len(tokens) {
		return false
	}
	for i := 0; i+len(parts) <= len(tokens); i++ {
		matched := true
		for j, part := range parts {
			if tokens[i+j] != part {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// mergeKeywordHits unions newly matched keywords into the accumulated list,
// preserving first-seen order.
func mergeKeywordHits(existing, hits []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, k := range existing {
		seen[k] = struct{}{}
	}
	for _, k := range hits {
		if _, ok := seen[k]; !ok {
			existing = append(existing, k)
			seen[k] = struct{}{}
		}
	}
	return existing
}
