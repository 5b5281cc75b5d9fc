// Package admonitions is a goldmark extension that turns paragraphs starting with "NOTE: ",
// "TIP: ", or "WARNING: " into admonition boxes.
package admonitions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Label is the kind of an admonition.
type Label string

const (
	Note    Label = "NOTE"
	Tip     Label = "TIP"
	Warning Label = "WARNING"
)

var titles = map[Label]string{
	Note:    "Note",
	Tip:     "Tip",
	Warning: "Warning",
}

var prefix = regexp.MustCompile(`^(NOTE|TIP|WARNING): `)

// Node wraps the paragraph of an admonition.
type Node struct {
	ast.BaseBlock
	Label Label
}

var Kind = ast.NewNodeKind("Admonition")

func (n *Node) Kind() ast.NodeKind { return Kind }

func (n *Node) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": string(n.Label)}, nil)
}

var Extension goldmark.Extender = &extension{}

type extension struct{}

func (e *extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(&transformer{}, 999),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&nodeRenderer{}, 500),
		),
	)
}

type transformer struct{}

var _ parser.ASTTransformer = (*transformer)(nil)

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()

	var paras []*ast.Paragraph
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if p, ok := n.(*ast.Paragraph); ok && entering {
			paras = append(paras, p)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, p := range paras {
		first, ok := p.FirstChild().(*ast.Text)
		if !ok {
			continue
		}
		m := prefix.FindSubmatch(first.Segment.Value(src))
		if m == nil {
			continue
		}
		first.Segment = first.Segment.WithStart(first.Segment.Start + len(m[0]))

		n := &Node{Label: Label(m[1])}
		parent := p.Parent()
		parent.ReplaceChild(parent, p, n)
		n.AppendChild(n, p)
	}
}

type nodeRenderer struct{}

var _ renderer.NodeRenderer = (*nodeRenderer)(nil)

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(Kind, r.render)
}

func (r *nodeRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Node)
	if !entering {
		w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}
	title, ok := titles[n.Label]
	if !ok {
		return ast.WalkStop, fmt.Errorf("unknown admonition label: %q", n.Label)
	}
	fmt.Fprintf(w, `<div class="admonition %s"><p class="admonition-title">%s</p>`, strings.ToLower(string(n.Label)), title)
	return ast.WalkContinue, nil
}
