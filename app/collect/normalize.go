package collect

import (
	"net/url"
	"strings"
)

var trackingParams = map[string]bool{
	"ref":    true,
	"fbclid": true,
	"gclid":  true,
}

// NormalizeURL canonicalises an article link: https scheme, lower-case host,
// no fragment, no trailing slash, tracking parameters removed. Remaining
// query parameters keep their original order. Unusable input yields "".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = filterQuery(u.RawQuery)
	u.ForceQuery = false

	return u.String()
}

func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		key = strings.ToLower(key)
		if strings.HasPrefix(key, "utm_") || trackingParams[key] {
			continue
		}
		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}
