package ingest

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that vary between syndicated copies
// of the same article and never identify distinct content.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"ref":          {},
	"referrer":     {},
	"fbclid":       {},
	"gclid":        {},
	"mc_cid":       {},
	"mc_eid":       {},
	"cmpid":        {},
	"ncid":         {},
}

// NormalizeURL canonicalizes an article URL for duplicate grouping:
// tracking query parameters stripped, scheme/host lower-cased, fragment and
// trailing slash dropped. Unparseable URLs fall back to lower-case trimming
// so grouping still behaves deterministically.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimRight(trimmed, "/"))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for param := range query {
		if _, tracking := trackingParams[strings.ToLower(param)]; tracking {
			query.Del(param)
		}
	}
	parsed.RawQuery = query.Encode()

	normalized := parsed.String()
	return strings.TrimRight(normalized, "/")
}
