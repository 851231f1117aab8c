package entity

import (
	"regexp"
	"strings"
)

// Keys a user may set on their own profile besides name.
var selfEditableKeys = map[string]bool{
	"bio":         true,
	"deactivated": true,
}

var searchDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// SanitizeSearch strips everything but ASCII letters, digits and
// whitespace, so the term is safe inside a PostgREST ilike pattern.
func SanitizeSearch(q string) string {
	return strings.TrimSpace(searchDisallowed.ReplaceAllString(q, ""))
}

// SplitProfilePatch separates "name" from the profile columns and rejects
// any other key.
func SplitProfilePatch(patch map[string]any) (name string, columns map[string]any, err error) {
	columns = make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "name" {
			s, ok := v.(string)
			if !ok && v != nil {
				return "", nil, &ValidationError{Field: "name", Message: "must be a string"}
			}
			name = s
			continue
		}
		if !selfEditableKeys[k] {
			return "", nil, &ValidationError{Field: k, Message: "cannot be set"}
		}
		columns[k] = v
	}
	return name, columns, nil
}
