// Package markdown renders the reporter's markdown documents as HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"znkr.io/conflicts/reporter/markdown/admonitions"
)

type Option func(*options)

type options struct {
	tocDepth int // 0 means no table of contents
}

// TOC inserts a table of contents with headings up to the given level after the first heading.
func TOC(maxDepth int) Option {
	return func(o *options) {
		o.tocDepth = maxDepth
	}
}

// Render converts markdown to HTML. Fenced code blocks are syntax highlighted, code blocks with
// the language "diff" or "patch" are rendered as unified patches.
func Render(data []byte, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Footnote,
			admonitions.Extension,
			CodeBlocks,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	root := md.Parser().Parse(text.NewReader(data))
	if o.tocDepth > 0 {
		if err := insertTOC(root, data, o.tocDepth); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, data, root); err != nil {
		return nil, fmt.Errorf("rendering markdown: %v", err)
	}

	return buf.Bytes(), nil
}

func insertTOC(root ast.Node, src []byte, maxDepth int) error {
	tree, err := toc.Inspect(root, src, toc.MaxDepth(maxDepth))
	if err != nil {
		return fmt.Errorf("building table of contents: %v", err)
	}

	// A single top level heading is the document title, it's not part of the list.
	items := tree.Items
	if len(items) == 1 {
		items = items[0].Items
	}
	if len(items) == 0 {
		return nil
	}
	list := toc.RenderList(&toc.TOC{Items: items})

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			root.InsertAfter(root, n, list)
			return nil
		}
	}
	root.InsertBefore(root, root.FirstChild(), list)
	return nil
}
