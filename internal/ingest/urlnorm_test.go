package ingest

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "tracking params stripped",
			raw:      "https://example.com/article?utm_source=rss&utm_medium=feed",
			expected: "https://example.com/article",
		},
		{
			name:     "meaningful params kept",
			raw:      "https://example.com/article?id=42&utm_campaign=daily",
			expected: "https://example.com/article?id=42",
		},
		{
			name:     "host lowercased",
			raw:      "HTTPS://Example.COM/Article",
			expected: "https://example.com/Article",
		},
		{
			name:     "fragment dropped",
			raw:      "https://example.com/article#comments",
			expected: "https://example.com/article",
		},
		{
			name:     "trailing slash dropped",
			raw:      "https://example.com/article/",
			expected: "https://example.com/article",
		},
		{
			name:     "fbclid stripped",
			raw:      "https://example.com/a?fbclid=abc123",
			expected: "https://example.com/a",
		},
		{
			name:     "unparseable falls back to lowercase trim",
			raw:      "Not A URL/",
			expected: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.raw); got != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNormalizeURL_GroupsSyndicatedCopies(t *testing.T) {
	variants := []string{
		"https://example.com/story?utm_source=feedly",
		"https://EXAMPLE.com/story",
		"https://example.com/story/",
		"https://example.com/story#top",
	}

	canonical := NormalizeURL(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeURL(v); got != canonical {
			t.Errorf("Expected %q to normalize to %q, got %q", v, canonical, got)
		}
	}
}
