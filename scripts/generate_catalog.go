package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/jsassist/internal/hostlib"
	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

// Writes catalog.md and catalog.html describing the host types scripts see.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <out-dir>\n", os.Args[0])
		os.Exit(1)
	}
	outDir := os.Args[1]

	r, err := hostlib.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building catalog: %v\n", err)
		os.Exit(1)
	}
	md := catalogMarkdown(r)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}
	mdPath := filepath.Join(outDir, "catalog.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", mdPath, err)
		os.Exit(1)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(p.Parse([]byte(md)), renderer)

	htmlPath := filepath.Join(outDir, "catalog.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", htmlPath, err)
		os.Exit(1)
	}
	writeHeader(f)
	if _, err := f.Write(body); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", htmlPath, err)
		os.Exit(1)
	}
	writeFooter(f)
	f.Close()

	fmt.Fprintf(os.Stderr, "Generated %s and %s\n", mdPath, htmlPath)
}

func catalogMarkdown(r *hosttype.Registry) string {
	var b strings.Builder
	b.WriteString("# Host types\n\nTypes installed into every script runtime, by package.\n")
	pkg := ""
	for _, t := range r.Types() {
		if t.Package() != pkg {
			pkg = t.Package()
			fmt.Fprintf(&b, "\n## %s\n", pkg)
		}
		kind := "class"
		if t.IsInterface() {
			kind = "interface"
		}
		fmt.Fprintf(&b, "\n### %s (%s)\n\n", t.SimpleName(), kind)
		section(&b, r, "Constructors", t.Constructors)
		section(&b, r, "Static fields", t.StaticFields)
		section(&b, r, "Static methods", t.StaticMethods)
		section(&b, r, "Fields", t.Fields())
		section(&b, r, "Methods", t.Methods())
	}
	return b.String()
}

func section(b *strings.Builder, r *hosttype.Registry, title string, members []hosttype.Member) {
	if len(members) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n\n", title)
	for _, m := range members {
		fmt.Fprintf(b, "- `%s`\n", m.Signature(r.TypeName))
	}
	b.WriteString("\n")
}

func writeHeader(w io.Writer) {
	fmt.Fprint(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>jsassist - Host types</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
    h2 { color: #1e40af; margin-top: 30px; }
    h3 { color: #1e3a8a; margin-top: 20px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
  </style>
</head>
<body>
`)
}

func writeFooter(w io.Writer) {
	fmt.Fprint(w, `</body>
</html>
`)
}
