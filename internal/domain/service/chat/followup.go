package chat

import (
	"strings"

	"github.com/samber/lo"
)

//nolint:gochecknoglobals
var (
	// followUpPhrases mark questions about companies from the previous
	// answer.
	followUpPhrases = []string{
		"overview of", "details about", "tell me about", "information on",
		"contact details", "contacts for", "get me contact",
		"more about", "details for", "overview for",
	}

	// newSearchKeywords override the follow-up phrasing: the user wants a
	// fresh search, not the cards they already have.
	newSearchKeywords = []string{
		"top", "find", "search", "show me companies", "list", "get companies", "which companies",
	}
)

func isFollowUp(message string) bool {
	lower := strings.ToLower(message)

	hasPhrase := lo.SomeBy(followUpPhrases, func(phrase string) bool {
		return strings.Contains(lower, phrase)
	})
	if !hasPhrase {
		return false
	}

	return !lo.SomeBy(newSearchKeywords, func(keyword string) bool {
		return strings.Contains(lower, keyword)
	})
}
