package validation

import "strings"

// TranslatesPropertyPaths is implemented by validators that delegate to a
// sub-validator and need to map its paths onto their own.
type TranslatesPropertyPaths interface {
	TranslatePath(path string) string
}

// Join concatenates path segments with dots, skipping empty ones.
func Join(segments ...string) string {
	var parts []string
	for _, s := range segments {
		s = strings.Trim(s, ".")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// Normalize converts index notation into dot-separated segments:
// "[0][inputs][text]" and "0[inputs].text" both become "0.inputs.text".
func Normalize(path string) string {
	r := strings.NewReplacer("][", ".", "[", ".", "]", "")
	return Join(strings.Split(r.Replace(path), ".")...)
}

// TranslatePath normalizes path and prefixes it with base, unless path
// already starts with base, in which case the prefix is not repeated.
func TranslatePath(base, path string) string {
	path = Normalize(path)
	base = Normalize(base)
	if base == "" {
		return path
	}
	if path == base || strings.HasPrefix(path, base+".") {
		return path
	}
	return Join(base, path)
}
