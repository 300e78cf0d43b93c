package completion

import (
	"reflect"
	"sort"

	"github.com/dop251/goja"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

// DefaultMaxSignatureVariants caps the argument lists bound from live
// bindings for one signature.
const DefaultMaxSignatureVariants = 64

// binder proposes argument lists for a parameter list, filling each
// parameter with the bindings whose value has exactly the parameter's type.
type binder struct {
	byType map[reflect.Type][]string
	max    int
}

func newBinder(bindings map[string]goja.Value, max int) *binder {
	b := &binder{byType: make(map[reflect.Type][]string), max: max}
	for name, v := range bindings {
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		rt := v.ExportType()
		if rt == nil {
			continue
		}
		b.byType[rt] = append(b.byType[rt], name)
	}
	for _, names := range b.byType {
		sort.Strings(names)
	}
	return b
}

// expand returns head followed by every bound argument list plus the list of
// placeholder names, each closed with ')'. Bound lists multiply across
// parameters; truncated reports whether the cap cut them short.
func (b *binder) expand(head string, params []reflect.Type) (texts []string, truncated bool) {
	names := hosttype.ParamNames(params)
	branches := []string{head}
	placeholder := head
	for i, p := range params {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		placeholder += sep + names[i]
		matches := b.byType[p]
		if len(matches) == 0 {
			for j := range branches {
				branches[j] += sep + names[i]
			}
			continue
		}
		next := make([]string, 0, len(branches)*len(matches))
	grow:
		for _, br := range branches {
			for _, m := range matches {
				if b.max > 0 && len(next) >= b.max {
					truncated = true
					break grow
				}
				next = append(next, br+sep+m)
			}
		}
		branches = next
	}
	if len(branches) != 1 || branches[0] != placeholder {
		texts = append(texts, branches...)
	}
	texts = append(texts, placeholder)
	for i := range texts {
		texts[i] += ")"
	}
	return texts, truncated
}
