// Package site holds the in-memory set of documents served or packed by the reporter.
package site

import (
	"cmp"
	"fmt"
	"slices"
)

// Renderer renders a document to the bytes served for it.
type Renderer interface {
	RenderPage(s *Site, doc *Doc) ([]byte, error)
}

// RendererFunc adapts a function to the [Renderer] interface.
type RendererFunc func(s *Site, doc *Doc) ([]byte, error)

func (f RendererFunc) RenderPage(s *Site, doc *Doc) ([]byte, error) { return f(s, doc) }

// Passthrough serves a document's data as is.
var Passthrough Renderer = RendererFunc(func(_ *Site, doc *Doc) ([]byte, error) {
	return doc.Data, nil
})

// Site is an in-memory representation of the report site.
type Site struct {
	docs map[string]*Doc
}

// Doc is a single document of the site, that is anything that can be served as a static file.
type Doc struct {
	Path     string
	MimeType string
	Title    string
	Data     []byte
	Renderer Renderer
}

// New creates a site from docs. Every path must be unique.
func New(docs []Doc) (*Site, error) {
	s := &Site{docs: make(map[string]*Doc, len(docs))}
	for i := range docs {
		d := &docs[i]
		if _, ok := s.docs[d.Path]; ok {
			return nil, fmt.Errorf("duplicate document path: %s", d.Path)
		}
		if d.Renderer == nil {
			d.Renderer = Passthrough
		}
		s.docs[d.Path] = d
	}
	return s, nil
}

// Doc returns the document for the given path, or nil if the document cannot be found.
func (s *Site) Doc(path string) *Doc {
	return s.docs[path]
}

// AllDocs returns all documents sorted by path.
func (s *Site) AllDocs() []*Doc {
	ret := make([]*Doc, 0, len(s.docs))
	for _, d := range s.docs {
		ret = append(ret, d)
	}
	slices.SortFunc(ret, func(a, b *Doc) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return ret
}

// RenderPage renders doc as a page.
func (s *Site) RenderPage(d *Doc) ([]byte, error) {
	b, err := d.Renderer.RenderPage(s, d)
	if err != nil {
		return nil, fmt.Errorf("rendering page for %s: %v", d.Path, err)
	}
	return b, nil
}
