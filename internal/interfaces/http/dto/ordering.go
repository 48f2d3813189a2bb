package dto

import "strings"

// BatchKey returns the body field carrying the updates of resource, for
// example friend_link_orders for friend-links.
func BatchKey(resource string) string {
	return strings.ReplaceAll(strings.TrimSuffix(resource, "s"), "-", "_") + "_orders"
}

// ETag quotes a scope version for the ETag header.
func ETag(version string) string {
	return `"` + version + `"`
}

// ParseIfMatch returns the version named by an If-Match header. Quoted,
// bare and weak forms are accepted. Empty and "*" disable the check.
func ParseIfMatch(header string) string {
	v := strings.TrimSpace(header)
	if v == "*" {
		return ""
	}
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
