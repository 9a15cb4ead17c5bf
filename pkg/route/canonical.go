package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Path canonicalization errors.
var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrBackslashInPath   = errors.New("path contains backslash")
	ErrControlByteInPath = errors.New("path contains control byte")
	ErrPathEscapesRoot   = errors.New("path escapes root via ..")
)

// Canonicalize normalizes a navigation target into a matchable path.
//
// It accepts a plain path ("/users/1?tab=posts#bio"), a hash-form target
// ("#/users/1"), or an absolute URL (only path, query, and fragment are
// kept). The pathname is URL-decoded, repeated slashes collapse, "." and
// ".." segments resolve, and a trailing slash is stripped except for the
// root path.
//
// Backslashes, control bytes, and ".." walking above the root are
// rejected. Callers treat a canonicalization error as "no match".
func Canonicalize(path string) (canon string, query url.Values, hash string, err error) {
	if strings.HasPrefix(path, "#") {
		path = path[1:]
	}
	if path == "" {
		return "/", url.Values{}, "", nil
	}

	u, err := url.Parse(path)
	if err != nil {
		return "", nil, "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	p := u.Path
	if strings.Contains(p, "\\") {
		return "", nil, "", ErrBackslashInPath
	}
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return "", nil, "", ErrControlByteInPath
		}
	}

	var segments []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", nil, "", ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	return "/" + strings.Join(segments, "/"), u.Query(), u.Fragment, nil
}

// FullPath joins a canonical path with its query and hash back into the
// single-string form stored on MatchResult and used for idempotence and
// link-highlighting comparisons.
func FullPath(path string, query url.Values, hash string) string {
	var b strings.Builder
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(query.Encode())
	}
	if hash != "" {
		b.WriteString("#")
		b.WriteString(hash)
	}
	return b.String()
}

// splitPath splits a canonical path into its non-empty segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
