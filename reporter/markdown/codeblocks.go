package markdown

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"znkr.io/conflicts/reporter/highlight"
)

var fragments = template.Must(template.New("").Funcs(template.FuncMap{
	"class":  lineClass,
	"lineno": lineNo,
}).Parse(`
{{- define "patch" -}}
<pre class="patch"><code>
{{- range . -}}
<span class="{{class .Type}}"><span class="ln">{{lineno .OldLineNo}}</span><span class="ln">{{lineno .NewLineNo}}</span>{{.Prefix}}{{.Content}}</span>
{{end -}}
</code></pre>
{{end -}}

{{- define "code" -}}
<pre class="code"><code>
{{- range . -}}
<span class="line"><span class="ln">{{.LineNo}}</span>{{.Content}}</span>
{{- end -}}
</code></pre>
{{end -}}
`))

// CodeBlocks replaces goldmark's rendering of fenced code blocks with highlighted ones.
var CodeBlocks goldmark.Extender = &codeBlocks{}

type codeBlocks struct{}

func (e *codeBlocks) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&codeBlockRenderer{}, 100),
		),
	)
}

type codeBlockRenderer struct{}

var _ renderer.NodeRenderer = (*codeBlockRenderer)(nil)

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	switch lang := string(n.Language(source)); lang {
	case "diff", "patch":
		pl, err := highlight.ParsePatch(code.String())
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkSkipChildren, fragments.ExecuteTemplate(w, "patch", pl)
	default:
		var opt highlight.Option
		if lang != "" {
			opt = highlight.Lang(lang)
		}
		hl, err := highlight.Highlight(code.String(), opt)
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkSkipChildren, fragments.ExecuteTemplate(w, "code", hl)
	}
}

func lineClass(t highlight.LineType) string {
	switch t {
	case highlight.HunkHeader:
		return "line hunk"
	case highlight.Added:
		return "line insert"
	case highlight.Removed:
		return "line delete"
	case highlight.NoNewline:
		return "line no-newline"
	case highlight.Context:
		return "line context"
	default:
		return "line header"
	}
}

func lineNo(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
