package payload

import (
	"net/url"
	"path"
	"strings"
)

// Protocol returns the lower-cased scheme of a locator ("file", "https", ...),
// or "" for a bare path.
func Protocol(loc string) string {
	idx := strings.Index(loc, "://")
	if idx <= 0 {
		return ""
	}
	scheme := loc[:idx]
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return strings.ToLower(scheme)
}

// IsLocal reports whether a locator refers to the local filesystem.
func IsLocal(loc string) bool {
	p := Protocol(loc)
	return p == "" || p == "file"
}

// IsWeb reports whether a locator is an http(s) URL.
func IsWeb(loc string) bool {
	p := Protocol(loc)
	return p == "http" || p == "https"
}

// EraseProtocol strips the scheme from a locator. file:// URLs become local
// paths with percent-escapes decoded.
func EraseProtocol(loc string) string {
	p := Protocol(loc)
	if p == "" {
		return loc
	}
	rest := loc[len(p)+len("://"):]
	if p == "file" {
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		// file:///C:/x -> C:/x on Windows-style paths
		if len(rest) >= 3 && rest[0] == '/' && rest[2] == ':' {
			rest = rest[1:]
		}
	}
	return rest
}

// FileType returns the lower-cased extension of a locator without the dot.
// Query strings and fragments of URLs are ignored.
func FileType(loc string) string {
	clean := loc
	if i := strings.IndexAny(clean, "?#"); i >= 0 && Protocol(loc) != "" {
		clean = clean[:i]
	}
	ext := path.Ext(strings.ReplaceAll(clean, `\`, "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileName returns the last path element of a locator.
func FileName(loc string) string {
	clean := EraseProtocol(loc)
	if i := strings.IndexAny(clean, "?#"); i >= 0 && Protocol(loc) != "" && Protocol(loc) != "file" {
		clean = clean[:i]
	}
	clean = strings.ReplaceAll(clean, `\`, "/")
	return path.Base(path.Clean("/" + clean))
}
