// Package classifier decides whether a review looks authentic.
// prefilter.go holds the local rules; they need no network and always answer.
package classifier

import (
	"strings"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/visiona/review-classifier/internal/domain"
)

// Rule identifies which pre-filter rule decided a verdict.
type Rule string

const (
	RulePromotional     Rule = "promotional"
	RuleShortExtreme    Rule = "short_extreme_rating"
	RuleFormattingAbuse Rule = "formatting_abuse"
	RuleNone            Rule = "none"
)

// Reasons attached to pre-filter verdicts.
const (
	ReasonPromotional     = "contains promotional content or external links"
	ReasonShortExtreme    = "very short review with extreme rating"
	ReasonFormattingAbuse = "excessive punctuation or capitalization"
	ReasonNormal          = "review appears normal"
)

const (
	shortCommentRunes = 20
	maxExclamations   = 3
	maxUppercaseRatio = 0.3
)

// promotionalPhrases are matched against the lower-cased comment. They are
// literal: "code " keeps its trailing space.
var promotionalPhrases = []string{
	"buy now",
	"discount",
	"amazing deals",
	"www.",
	"http",
	".com",
	"code ",
}

// PreFilter applies the local rules in a fixed order; the first match wins.
// It is immutable after construction and safe for concurrent use.
type PreFilter struct {
	matcher *ahocorasick.Matcher
}

// NewPreFilter builds the promotional phrase automaton.
func NewPreFilter() *PreFilter {
	return &PreFilter{matcher: ahocorasick.NewStringMatcher(promotionalPhrases)}
}

// Evaluate returns the pre-filter verdict and the rule that produced it.
func (p *PreFilter) Evaluate(in domain.ReviewInput) (domain.Verdict, Rule) {
	comment := in.Comment

	if p.isPromotional(comment) {
		return domain.Suspicious(ReasonPromotional), RulePromotional
	}

	length := utf8.RuneCountInString(comment)
	if (in.Rating == domain.MinRating || in.Rating == domain.MaxRating) && length < shortCommentRunes {
		return domain.Suspicious(ReasonShortExtreme), RuleShortExtreme
	}

	if strings.Count(comment, "!") > maxExclamations || uppercaseRatio(comment, length) > maxUppercaseRatio {
		return domain.Suspicious(ReasonFormattingAbuse), RuleFormattingAbuse
	}

	return domain.Authentic(ReasonNormal), RuleNone
}

func (p *PreFilter) isPromotional(comment string) bool {
	if comment == "" {
		return false
	}
	// MatchThreadSafe leaves the shared automaton untouched.
	return len(p.matcher.MatchThreadSafe([]byte(strings.ToLower(comment)))) > 0
}

// uppercaseRatio is the share of ASCII A-Z among length runes, 0 for empty text.
func uppercaseRatio(comment string, length int) float64 {
	if length == 0 {
		return 0
	}
	upper := 0
	for i := 0; i < len(comment); i++ {
		if c := comment[i]; c >= 'A' && c <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(length)
}
