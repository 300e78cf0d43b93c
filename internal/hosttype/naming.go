package hosttype

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// JSName maps a Go identifier to the name scripts see. It matches
// goja.UncapFieldNameMapper, which lower-cases the first byte only.
func JSName(goName string) string {
	if goName == "" {
		return ""
	}
	return strings.ToLower(goName[0:1]) + goName[1:]
}

// SimpleTypeName returns the bare name used to derive placeholder parameter
// names: pointers are dereferenced and unnamed types fall back to their kind.
func SimpleTypeName(rt reflect.Type) string {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Name() != "" {
		return rt.Name()
	}
	switch rt.Kind() {
	case reflect.Func:
		return "fn"
	case reflect.Interface:
		return "value"
	default:
		return rt.Kind().String()
	}
}

// ParamName derives a parameter name from its type: the simple type name with
// a lower-cased first letter. Slice and array types use their element name
// with a plural suffix.
func ParamName(rt reflect.Type) string {
	if rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array {
		return ParamName(rt.Elem()) + "s"
	}
	return lowerFirst(SimpleTypeName(rt))
}

// ParamNames derives names for a whole parameter list, appending "I" to a
// generated name until it no longer collides with an earlier one.
func ParamNames(params []reflect.Type) []string {
	seen := make(map[string]bool, len(params))
	out := make([]string, len(params))
	for i, p := range params {
		name := ParamName(p)
		for seen[name] {
			name += "I"
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
