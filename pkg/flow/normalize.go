package flow

import "strings"

// NormalizeURL canonicalizes a user-entered site address: trims
// whitespace, rejects empty input, and prepends https:// when no scheme
// is present. Nothing else is validated here; malformed hosts are the
// analyzer's to reject, so users aren't blocked by an over-eager parser.
func NormalizeURL(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", errEmptyAddress()
	}
	lower := strings.ToLower(addr)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return addr, nil
	}
	return "https://" + addr, nil
}
