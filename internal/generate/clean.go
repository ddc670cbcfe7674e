package generate

import "strings"

// StripCodeFence unwraps a reply that arrived as a single fenced block, with
// or without a language tag. Anything else is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := s[3 : len(s)-3]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		lang := strings.TrimSpace(body[:nl])
		if lang == "" || !strings.ContainsAny(lang, " <>") {
			body = body[nl+1:]
		}
	}
	if strings.Contains(body, "```") {
		// More than one fence; leave it for the caller to see.
		return s
	}
	return strings.TrimSpace(body)
}
