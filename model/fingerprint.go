package model

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
)

// Fingerprint is the printable identity tuple of a node or endpoint. Equal
// fingerprints denote the same architectural element regardless of which
// scanner produced them. Renderers sort nodes by this string.
type Fingerprint string

// ComponentFingerprint derives the identity of a component-like node from
// its kind, canonical name and language tag.
func ComponentFingerprint(kind Kind, name string, language ast.LanguageTag) Fingerprint {
	return Fingerprint(string(kind) + "|" + name + "|" + string(language))
}

// EndpointFingerprint derives the identity of an endpoint from its owning
// component, verb and normalized path.
func EndpointFingerprint(component Fingerprint, verb, path string) Fingerprint {
	return Fingerprint(string(component) + "|" + strings.ToUpper(verb) + "|" + NormalizePath(path))
}

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizePath canonicalizes a route path template: consecutive slashes
// collapse, a trailing slash is stripped except for the root, any scheme
// prefix is lowercased, and path-parameter placeholders ({id}, :id) are
// preserved verbatim.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	scheme := ""
	if m := schemePrefix.FindString(path); m != "" {
		scheme = strings.ToLower(m)
		path = path[len(m):]
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if scheme == "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return scheme + path
}

// ParseFingerprint splits a component-level fingerprint back into its kind,
// canonical name and language tag. Endpoint fingerprints and other composite
// identities report ok=false.
func ParseFingerprint(fp Fingerprint) (kind Kind, name string, language ast.LanguageTag, ok bool) {
	parts := strings.Split(string(fp), "|")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return Kind(parts[0]), parts[1], ast.LanguageTag(parts[2]), true
}

// JoinPaths concatenates a prefix and a suffix route segment, normalizing
// the seam between them.
func JoinPaths(prefix, suffix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if suffix != "" && !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return NormalizePath(prefix + suffix)
}
