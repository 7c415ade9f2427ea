package batch

import "strings"

var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"},
	{"‘", "’"},
}

// TrimProviderText strips whitespace, one surrounding code fence and matching
// surrounding quotes, repeating until nothing changes.
func TrimProviderText(s string) string {
	for {
		before := s
		s = strings.TrimSpace(s)
		s = stripFence(s)
		s = stripQuotes(s)
		if s == before {
			return s
		}
	}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	// drop a language tag such as ```text
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], " \t") {
		inner = inner[nl+1:]
	}
	return inner
}

func stripQuotes(s string) string {
	for _, p := range quotePairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			// leave text alone when the quotes are not a single wrapping pair
			if strings.Contains(inner, p[0]) || strings.Contains(inner, p[1]) {
				return s
			}
			return inner
		}
	}
	return s
}
