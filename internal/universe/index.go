// Package universe holds the catalog of qualified type names that class and
// package name completion draws from.
package universe

import (
	"sort"
	"strings"
)

// Index is an immutable, sorted and de-duplicated set of qualified type names.
type Index struct {
	names []string
}

// New builds an index from names. Blank entries are dropped and surrounding
// whitespace is trimmed.
func New(names ...string) *Index {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return &Index{names: out}
}

// Names returns the entries in ascending order. The slice must not be modified.
func (x *Index) Names() []string {
	if x == nil {
		return nil
	}
	return x.names
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.names)
}

// Contains reports whether name is an entry.
func (x *Index) Contains(name string) bool {
	if x == nil {
		return false
	}
	i := sort.SearchStrings(x.names, name)
	return i < len(x.names) && x.names[i] == name
}

// WithSuffix returns the first entry ending in "." + simple.
func (x *Index) WithSuffix(simple string) (string, bool) {
	if x == nil || simple == "" {
		return "", false
	}
	suffix := "." + simple
	for _, n := range x.names {
		if strings.HasSuffix(n, suffix) {
			return n, true
		}
	}
	return "", false
}

// Merge returns a new index holding the entries of both indexes.
func (x *Index) Merge(other *Index) *Index {
	return New(append(append([]string{}, x.Names()...), other.Names()...)...)
}

// Packages returns the distinct package prefixes of all entries.
func (x *Index) Packages() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, n := range x.Names() {
		i := strings.LastIndex(n, ".")
		if i <= 0 {
			continue
		}
		pkg := n[:i]
		if _, ok := seen[pkg]; !ok {
			seen[pkg] = struct{}{}
			out = append(out, pkg)
		}
	}
	sort.Strings(out)
	return out
}
