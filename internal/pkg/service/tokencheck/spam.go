package tokencheck

import (
	"regexp"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// Airdropped scam tokens advertise themselves through the symbol. Any match
// short-circuits classification so no request budget is spent on them.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)\.(com|org|xyz|live)\b`),
	regexp.MustCompile(`(?i)claim`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`\$`),
}

// IsSpamSymbol reports whether a token symbol matches a known scam
// indicator.
func IsSpamSymbol(symbol string) bool {
	for _, p := range spamPatterns {
		if p.MatchString(symbol) {
			return true
		}
	}
	return false
}

// SplitSpam partitions tokens into spam-flagged and clean. Spam-flagged
// tokens are burnable unconditionally.
func SplitSpam(tokens []model.Token) (spam, clean []model.Token) {
	for _, t := range tokens {
		if IsSpamSymbol(t.Symbol) {
			spam = append(spam, t)
		} else {
			clean = append(clean, t)
		}
	}
	return spam, clean
}
