package universe

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Format selects how a universe file is decoded.
type Format string

const (
	// FormatText is one qualified name per line; '#' starts a comment.
	FormatText Format = "text"
	// FormatYAML is a document with a top-level "types" list.
	FormatYAML Format = "yaml"
)

type yamlUniverse struct {
	Types []string `yaml:"types"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// LoadFile reads an index from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening universe file")
	}
	defer f.Close()
	idx, err := Read(f, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading universe file %s", path)
	}
	return idx, nil
}

// Read decodes an index from r.
func Read(r io.Reader, format Format) (*Index, error) {
	switch format {
	case FormatYAML:
		var doc yamlUniverse
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return New(), nil
			}
			return nil, errors.Wrap(err, "decoding yaml")
		}
		return New(doc.Types...), nil
	case FormatText:
		var names []string
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := sc.Text()
			if i := strings.Index(line, "#"); i >= 0 {
				line = line[:i]
			}
			names = append(names, line)
		}
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "scanning text")
		}
		return New(names...), nil
	default:
		return nil, errors.Newf("unknown universe format %q", format)
	}
}
