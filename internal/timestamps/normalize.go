package timestamps

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultStopwords is the stop-word set used when none is configured.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from", "has", "have",
	"how", "i", "in", "into", "is", "it", "its", "of", "on", "or", "our", "so", "that",
	"the", "their", "this", "to", "was", "we", "were", "what", "when", "why", "with", "you",
	"your", "um", "uh",
}

var (
	// [label](target) keeps the label
	mdLinkRE = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	urlRE    = regexp.MustCompile(`https?://\S+`)
	htmlRE   = regexp.MustCompile(`<[^>]+>`)
)

// Normalizer turns heading and cue text into comparable token sets.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer creates a Normalizer. A nil stop-word list selects DefaultStopwords;
// an empty non-nil list disables stop-word removal.
func NewNormalizer(stopwords []string) *Normalizer {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &Normalizer{stopwords: set}
}

// Tokens lowercases text, strips markup and punctuation, and drops stop words.
// The result keeps token order and may contain duplicates.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	text = mdLinkRE.ReplaceAllString(text, "$1")
	text = urlRE.ReplaceAllString(text, " ")
	text = htmlRE.ReplaceAllString(text, " ")

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
		case r == '\'' || r == '’':
			// don't -> dont
		default:
			builder.WriteRune(' ')
		}
	}

	fields := strings.Fields(builder.String())
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := n.stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// TokenSet returns the distinct tokens of text.
func (n *Normalizer) TokenSet(text string) map[string]struct{} {
	tokens := n.Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
