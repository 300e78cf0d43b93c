package completion

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Delimiter separates the fields of an encoded candidate. It is stripped from
// every field when a candidate is created, so it never occurs inside one.
const Delimiter = "\x1f"

// ErrMalformedCandidate is returned when decoding a string that was not
// produced by Candidate.Encode.
var ErrMalformedCandidate = errors.New("malformed encoded candidate")

// Kind classifies a candidate.
type Kind int

const (
	KindField         Kind = iota // instance field
	KindMethod                    // instance method
	KindStaticField               // static field of a host type
	KindStaticMethod              // static method of a host type
	KindConstructor               // constructor argument list
	KindClass                     // constructible host type
	KindInterface                 // host interface, implemented by scripts
	KindPackage                   // qualified name prefix
	KindObject                    // non-callable script binding
	KindFunction                  // callable script binding
	KindInterfaceStub             // object literal implementing an interface
)

var kindNames = [...]string{
	KindField:         "Field",
	KindMethod:        "Method",
	KindStaticField:   "Static field",
	KindStaticMethod:  "Static method",
	KindConstructor:   "Constructor",
	KindClass:         "Class",
	KindInterface:     "Interface",
	KindPackage:       "Package",
	KindObject:        "Object",
	KindFunction:      "Function",
	KindInterfaceStub: "Interface implementation",
}

// String returns the display label of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, errors.Newf("unknown candidate kind %q", s)
}

// MarshalText renders the kind as its display label.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, errors.Newf("invalid candidate kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a display label.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Candidate is a single completion proposal.
type Candidate struct {
	Text    string `json:"text"` // inserted at Result.ReplaceFrom
	Kind    Kind   `json:"kind"`
	Context string `json:"context"` // where the proposal comes from, e.g. a signature
}

// NewCandidate creates a candidate, removing the delimiter from every field.
func NewCandidate(text string, kind Kind, context string) Candidate {
	return Candidate{
		Text:    strings.ReplaceAll(text, Delimiter, ""),
		Kind:    kind,
		Context: strings.ReplaceAll(context, Delimiter, ""),
	}
}

// Encode flattens the candidate into text, kind and context joined by Delimiter.
func (c Candidate) Encode() string {
	return c.Text + Delimiter + c.Kind.String() + Delimiter + c.Context
}

// Decode parses a string produced by Encode.
func Decode(s string) (Candidate, error) {
	parts := strings.Split(s, Delimiter)
	if len(parts) != 3 {
		return Candidate{}, errors.Wrapf(ErrMalformedCandidate, "%d fields", len(parts))
	}
	kind, err := ParseKind(parts[1])
	if err != nil {
		return Candidate{}, errors.Mark(err, ErrMalformedCandidate)
	}
	return Candidate{Text: parts[0], Kind: kind, Context: parts[2]}, nil
}

// EncodeAll encodes candidates in order.
func EncodeAll(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Encode()
	}
	return out
}
