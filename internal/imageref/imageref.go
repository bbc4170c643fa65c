// Package imageref normalizes the storage references held in the news table's
// image_url column. The column's format changed three times over the system's
// life (direct hosting URLs, bare object identifiers, then proxy-relative
// paths) and no migration was ever run against old rows, so every read and
// write passes through this package instead of trusting the stored shape.
package imageref

import (
	"regexp"
	"strings"
)

// ProxyPrefix is the application-controlled path under which image fetches are
// served, so the backend (not the storage provider) mediates all access.
const ProxyPrefix = "/proxy-image/"

// bareTokenPattern matches a bare object identifier: Drive file IDs are at
// least 25 characters of this alphabet.
var bareTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{25,}$`)

// ToExternal maps a stored image_url value to the external proxy path served
// to clients. Legacy absolute URLs point at retired hosting and cannot be
// recovered, so they map to nil and the UI shows no image rather than a
// broken link. Unrecognized junk also maps to nil.
func ToExternal(stored *string) *string {
	if stored == nil || *stored == "" {
		return nil
	}
	s := *stored
	if strings.HasPrefix(s, ProxyPrefix) {
		return &s
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return nil
	}
	if bareTokenPattern.MatchString(s) {
		external := ProxyPrefix + s
		return &external
	}
	return nil
}

// ToStored encodes a freshly uploaded blob token into the column value written
// to the database. All new writes go through here so the stored format stops
// drifting: only the proxy-relative shape is ever written going forward.
func ToStored(token string) string {
	return ProxyPrefix + token
}

// ExtractToken strips any leading path segments and trailing query string,
// leaving the bare token used for backend lookups. Idempotent: applying it to
// its own output returns the same token.
func ExtractToken(pathOrID string) string {
	s := pathOrID
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
