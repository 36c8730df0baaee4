package security

import "strings"

// IsProhibitedKey reports whether key could be read as a query operator or
// a nested path by a document store: keys starting with '$' or containing '.'.
func IsProhibitedKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

// Sanitize removes prohibited keys from v in place, descending into nested
// objects and arrays. It returns v and whether anything was removed.
func Sanitize(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		removed := false
		for k, child := range t {
			if IsProhibitedKey(k) {
				delete(t, k)
				removed = true
				continue
			}
			if _, r := Sanitize(child); r {
				removed = true
			}
		}
		return t, removed
	case []any:
		removed := false
		for _, child := range t {
			if _, r := Sanitize(child); r {
				removed = true
			}
		}
		return t, removed
	default:
		return v, false
	}
}

// SanitizeValues removes prohibited keys from url.Values-shaped maps.
// Bracketed keys such as "password[$ne]" are checked segment by segment.
func SanitizeValues(values map[string][]string) bool {
	removed := false
	for k := range values {
		for _, seg := range SplitFormKey(k) {
			if IsProhibitedKey(seg) {
				delete(values, k)
				removed = true
				break
			}
		}
	}
	return removed
}

// SplitFormKey splits a form key written in bracket notation into its path
// segments: "user[address][city]" becomes [user address city] and "tags[]"
// becomes [tags ""]. Keys without well-formed brackets are returned whole.
func SplitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return segments
}
