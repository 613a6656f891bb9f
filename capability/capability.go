// Package capability defines the namespaced keys under which generator
// plugins publish and look up symbols.
//
// A capability is written as a colon-delimited path, for example
// "queries:kysely:User:findById". The segment before the first colon is the
// category; a category may be owned by exactly one provider plugin, in which
// case the provider's name appears as the second segment of the fully
// qualified form. Keys are immutable values: qualification produces a new
// key and never mutates the original.
package capability

import "strings"

// Sep separates capability segments in the string form.
const Sep = ":"

// Key is a parsed capability. The zero value is the empty capability.
//
// Provider is empty until the key has been qualified against a category
// provider binding; a key carrying a non-empty Provider is fully qualified
// and is never rewritten again.
type Key struct {
	Category string
	Provider string
	Path     []string
}

// Parse splits a capability string into a Key. A string without a colon
// becomes a bare key whose Category is empty and whose Path holds the whole
// string. Parse never fails: capability strings have no invalid forms, only
// unresolvable ones.
func Parse(s string) Key {
	if s == "" {
		return Key{}
	}
	i := strings.Index(s, Sep)
	if i < 0 {
		return Key{Path: []string{s}}
	}
	return Key{
		Category: s[:i],
		Path:     strings.Split(s[i+1:], Sep),
	}
}

// String renders the key back to its colon-delimited form.
func (k Key) String() string {
	segs := make([]string, 0, len(k.Path)+2)
	if k.Category != "" {
		segs = append(segs, k.Category)
	}
	if k.Provider != "" {
		segs = append(segs, k.Provider)
	}
	segs = append(segs, k.Path...)
	return strings.Join(segs, Sep)
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k.Category == "" && k.Provider == "" && len(k.Path) == 0
}

// IsBare reports whether the key has no category, i.e. the source string
// contained no colon. Bare keys resolve to themselves.
func (k Key) IsBare() bool {
	return k.Category == "" && len(k.Path) == 1
}

// Qualified reports whether a provider segment has been bound into the key.
func (k Key) Qualified() bool {
	return k.Provider != ""
}

// Qualify returns a copy of the key with the provider segment set. Calling
// Qualify on an already qualified key returns the key unchanged.
func (k Key) Qualify(provider string) Key {
	if k.Qualified() {
		return k
	}
	q := k
	q.Provider = provider
	q.Path = append([]string(nil), k.Path...)
	return q
}

// MarkQualified returns a copy of the key whose leading path segment is
// recognized as the provider name and promoted out of the path. It is used
// when a plugin mints a capability that already spells out its provider.
func (k Key) MarkQualified() Key {
	if k.Qualified() || len(k.Path) == 0 {
		return k
	}
	q := k
	q.Provider = k.Path[0]
	q.Path = append([]string(nil), k.Path[1:]...)
	return q
}

// First returns the first path segment, or "" for an empty path.
func (k Key) First() string {
	if len(k.Path) == 0 {
		return ""
	}
	return k.Path[0]
}

// Last returns the final path segment, or "" for an empty path.
func (k Key) Last() string {
	if len(k.Path) == 0 {
		return ""
	}
	return k.Path[len(k.Path)-1]
}

// HasPrefix reports whether the key's string form starts with pattern.
// Layout rules and log filters match capabilities by string prefix; this is
// the single place that comparison lives.
func (k Key) HasPrefix(pattern string) bool {
	return strings.HasPrefix(k.String(), pattern)
}

// Equal reports structural equality of two keys.
func (k Key) Equal(other Key) bool {
	if k.Category != other.Category || k.Provider != other.Provider || len(k.Path) != len(other.Path) {
		return false
	}
	for i := range k.Path {
		if k.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}
