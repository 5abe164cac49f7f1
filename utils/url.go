package utils

import (
	"net/url"
	"strings"
)

// EncodeURLWithSpaces re-encodes a URL whose path or query may contain raw
// spaces. Some image providers emit such URLs, which need %20 on the wire.
func EncodeURLWithSpaces(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(parsed.Host)
	b.WriteString(parsed.EscapedPath())
	if parsed.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(strings.ReplaceAll(parsed.RawQuery, " ", "%20"))
	}
	return b.String(), nil
}
