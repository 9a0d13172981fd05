package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// Provider RPC URLs carry the API key as the last path segment (…/v2/<key>)
// or as a query parameter.
var keySegmentRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{16,}$`)

// MaskURL hides credentials embedded in an RPC or API URL.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return MaskKey(raw)
	}
	if u.User != nil {
		u.User = url.User("***")
	}

	segments := strings.Split(u.Path, "/")
	for i, s := range segments {
		if keySegmentRegex.MatchString(s) {
			segments[i] = "***"
		}
	}
	u.Path = strings.Join(segments, "/")

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q.Set(k, "***")
		}
		u.RawQuery = q.Encode()
	}
	return strings.ReplaceAll(u.String(), "%2A%2A%2A", "***")
}

// MaskKey keeps the first four characters of a secret.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "***"
	}
	return key[:4] + "***"
}
