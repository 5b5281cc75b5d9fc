package report

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"znkr.io/conflicts/diff"
	"znkr.io/conflicts/reporter/highlight"
	"znkr.io/conflicts/reporter/site"
)

//go:embed templates static
var assets embed.FS

// SiteOptions configure the report site.
type SiteOptions struct {
	BaseURL string // Absolute URL the site is served at, used in the Atom feed
}

// NewSite returns the report as a site:
//
//   - /              the report as HTML
//   - /report.md     the report as markdown
//   - /report.patch  all patches as a single unified diff
//   - /feed.atom     an Atom feed with one entry per conflict
//   - /conflicts/... a side by side page for every conflict
//
// and the static files (stylesheet).
func NewSite(r *Report, opts SiteOptions) (*site.Site, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %v", err)
	}

	docs := []site.Doc{
		{
			Path:     "/",
			MimeType: "text/html;charset=UTF-8",
			Title:    r.Title,
			Renderer: site.RendererFunc(func(*site.Site, *site.Doc) ([]byte, error) {
				return r.page(templates)
			}),
		},
		{
			Path:     "/report.md",
			MimeType: "text/markdown;charset=utf-8",
			Data:     []byte(r.Markdown()),
		},
		{
			Path:     "/report.patch",
			MimeType: "text/x-diff;charset=utf-8",
			Data:     []byte(r.Patches()),
		},
		{
			Path:     "/feed.atom",
			MimeType: "application/atom+xml;charset=utf-8",
			Title:    r.Title,
			Renderer: site.RendererFunc(func(*site.Site, *site.Doc) ([]byte, error) {
				return r.Feed(opts.BaseURL)
			}),
		},
	}

	for i := range r.Entries {
		e := &r.Entries[i]
		docs = append(docs, site.Doc{
			Path:     pagePath(e),
			MimeType: "text/html;charset=UTF-8",
			Title:    e.Conflict.Copy,
			Renderer: site.RendererFunc(func(*site.Site, *site.Doc) ([]byte, error) {
				return r.conflictPage(templates, e)
			}),
		})
	}

	static, err := staticDocs()
	if err != nil {
		return nil, err
	}
	docs = append(docs, static...)

	return site.New(docs)
}

func pagePath(e *Entry) string {
	return "/conflicts/" + e.Conflict.Copy + ".html"
}

type conflictData struct {
	Title    string
	Updated  time.Time
	Original string
	Copy     string
	Edits    []highlight.Edit
	Err      error
}

func (r *Report) conflictPage(t *template.Template, e *Entry) ([]byte, error) {
	data := conflictData{
		Title:    fmt.Sprintf("%s - %s", e.Conflict.Original, e.Conflict.Copy),
		Updated:  e.Conflict.Modified,
		Original: e.Conflict.Original,
		Copy:     e.Conflict.Copy,
	}

	edits, err := highlight.Diff(e.original, e.conflicting,
		highlight.LangFromFilename(e.Conflict.Original),
		highlight.DiffOptions(r.diffOpts...),
	)
	switch {
	case errors.Is(err, diff.ErrAbandoned):
		data.Err = err
	case err != nil:
		return nil, err
	default:
		data.Edits = edits
	}
	return execute(t, "conflict", data)
}

// loadTemplates parses all embedded templates, a template is named by its path in the templates
// directory without the .html extension.
func loadTemplates() (*template.Template, error) {
	const dir = "templates"
	root := template.New("").Funcs(template.FuncMap{
		"lineno": func(n int) string {
			if n < 0 {
				return ""
			}
			return fmt.Sprint(n)
		},
	})
	err := fs.WalkDir(assets, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}

		b, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}

		t := root.New(path[len(dir)+1 : len(path)-len(".html")])
		if _, err = t.Parse(string(b)); err != nil {
			return err
		}
		return nil
	})
	return root, err
}

func staticDocs() ([]site.Doc, error) {
	const dir = "static"
	var docs []site.Doc
	err := fs.WalkDir(assets, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		docs = append(docs, site.Doc{
			Path:     strings.TrimPrefix(path, dir),
			MimeType: mimeType(path),
			Data:     b,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading static files: %v", err)
	}
	return docs, nil
}

func mimeType(path string) string {
	switch {
	case strings.HasSuffix(path, ".css"):
		return "text/css;charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
