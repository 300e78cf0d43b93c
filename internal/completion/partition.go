package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Partition is the dotted expression that ends at the cursor.
type Partition struct {
	Segments []string // dot-separated fragments; a trailing "" means the text ends with '.'
	Text     string   // the scanned text
	Start    int      // byte offset of Text within the buffer
}

// PartitionBuffer scans backward from cursor over identifier characters,
// dots and open parens, then splits the scanned text on dots. Empty fragments
// are dropped except for a trailing one.
func PartitionBuffer(buffer string, cursor int) Partition {
	start := cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(buffer[:start])
		if !isIdentRune(r) && r != '.' && r != '(' {
			break
		}
		start -= size
	}
	text := buffer[start:cursor]
	var segs []string
	for _, s := range strings.Split(text, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if strings.HasSuffix(text, ".") {
		segs = append(segs, "")
	}
	return Partition{Segments: segs, Text: text, Start: start}
}

// Last returns the trailing fragment, the part being typed.
func (p Partition) Last() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Receiver returns every fragment but the last.
func (p Partition) Receiver() []string {
	if len(p.Segments) < 2 {
		return nil
	}
	return p.Segments[:len(p.Segments)-1]
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isIdentifier reports whether s can be written after a dot.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// anchor splits line at the last space or open paren before cursor. The
// prefix keeps that character; the buffer is the rest up to the cursor.
func anchor(line string, cursor int) (prefix, buffer string) {
	i := strings.LastIndexAny(line[:cursor], " (")
	return line[:i+1], line[i+1 : cursor]
}

// callToken returns the call expression at the end of prefix, e.g. "a.b(" for
// "x = foo(a.b(". It is empty unless prefix ends with an open paren.
func callToken(prefix string) string {
	t := strings.TrimSpace(prefix)
	if !strings.HasSuffix(t, "(") {
		return ""
	}
	if i := strings.LastIndex(t, " "); i >= 0 {
		t = t[i+1:]
	}
	if i := strings.LastIndex(t[:len(t)-1], "("); i >= 0 {
		t = t[i+1:]
	}
	return t
}
