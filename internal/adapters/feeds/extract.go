package feeds

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	dollarTickerExpr = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
	bareTickerExpr   = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
)

// tickerStopwords drops the worst false positives of the bare-token matcher:
// ordinary uppercase words and acronyms that appear in headlines constantly.
// The matcher stays otherwise permissive; symbols are not validated against
// the tickers table.
var tickerStopwords = map[string]struct{}{
	"A": {}, "AI": {}, "AM": {}, "AND": {}, "ARE": {}, "AS": {}, "AT": {},
	"BE": {}, "BIG": {}, "BUT": {}, "BUY": {}, "BY": {}, "CEO": {}, "CFO": {},
	"CPI": {}, "DO": {}, "EPS": {}, "ETF": {}, "EU": {}, "FAQ": {}, "FBI": {},
	"FED": {}, "FOR": {}, "FROM": {}, "GDP": {}, "HAS": {}, "HE": {}, "HOW": {},
	"IMF": {}, "IN": {}, "IPO": {}, "IS": {}, "IT": {}, "ITS": {}, "NEW": {},
	"NEWS": {}, "NO": {}, "NOT": {}, "NOW": {}, "OF": {}, "ON": {}, "OPEC": {},
	"OR": {}, "PM": {}, "RSS": {}, "SEC": {}, "SELL": {}, "THE": {}, "TO": {},
	"TOP": {}, "UK": {}, "UP": {}, "US": {}, "USA": {}, "WAS": {}, "WHO": {},
	"WHY": {}, "WILL": {}, "WITH": {}, "YOU": {},
}

// topicalTags maps lower-case keywords to tag names.
// "breaking" feeds the relevance bonus in persistence.
var topicalTags = map[string]string{
	"breaking":     "breaking",
	"earnings":     "earnings",
	"inflation":    "inflation",
	"federal reserve": "fed",
	"interest rate":   "rates",
	"rate hike":    "rates",
	"rate cut":     "rates",
	"regulation":   "regulation",
	"regulatory":   "regulation",
	"merger":       "m&a",
	"acquisition":  "m&a",
	"ipo":          "ipo",
	"etf":          "etf",
	"lawsuit":      "legal",
	"recession":    "recession",
	"jobs report":  "employment",
	"unemployment": "employment",
}

// GenerateHash computes the stable dedup key of an article. The digest is
// order-sensitive over (title, source name, published timestamp); two
// genuinely distinct articles sharing all three are treated as the same
// article on purpose.
func GenerateHash(title, sourceName string, publishedAt time.Time) string {
	input := fmt.Sprintf("%s|%s|%d", title, sourceName, publishedAt.Unix())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ExtractTickers pulls candidate market symbols from text: $TICKER forms
// plus bare 2-5 letter uppercase tokens. Deduplicated, stopword-filtered,
// not validated against known tickers.
func ExtractTickers(text string) []string {
	seen := make(map[string]struct{})
	tickers := make([]string, 0)

	add := func(symbol string) {
		symbol = strings.ToUpper(symbol)
		if _, stop := tickerStopwords[symbol]; stop {
			return
		}
		if _, dup := seen[symbol]; dup {
			return
		}
		seen[symbol] = struct{}{}
		tickers = append(tickers, symbol)
	}

	for _, m := range dollarTickerExpr.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	for _, m := range bareTickerExpr.FindAllString(text, -1) {
		add(m)
	}

	return tickers
}

// ExtractTags pulls topical labels from text by keyword lookup
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	tags := make([]string, 0)

	for keyword, tag := range topicalTags {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	sort.Strings(tags)
	return tags
}

// truncateRunes caps a string at max runes without splitting a character
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
