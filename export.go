package crumbshare

import (
	"encoding/json"
	"strings"
)

// ExportJSON renders cookies as the extension-style JSON array, the shape
// ReadCookiePayload accepts back.
func ExportJSON(cookies []Cookie) ([]byte, error) {
	return json.MarshalIndent(cookies, "", "  ")
}

// CookieHeader renders cookies as a single Cookie request header value:
// "name1=val1; name2=val2".
func CookieHeader(cookies []Cookie) string {
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}
