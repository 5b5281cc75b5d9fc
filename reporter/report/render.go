package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/tools/blog/atom"

	"znkr.io/conflicts/reporter/markdown"
)

// Markdown renders the report as a markdown page with one ```diff block per conflict.
func (r *Report) Markdown() string {
	return r.markdown(false)
}

func (r *Report) markdown(links bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if len(r.Entries) == 0 {
		b.WriteString("No sync conflicts found!\n")
		return b.String()
	}
	b.WriteString("The following sync conflicts were found\n")
	for i := range r.Entries {
		b.WriteByte('\n')
		r.Entries[i].markdown(&b, links)
	}
	return b.String()
}

func (e *Entry) markdown(b *strings.Builder, links bool) {
	if e.Err != nil {
		fmt.Fprintf(b, "## diff %s - %s\n\n", e.Conflict.Original, e.Conflict.Copy)
		fmt.Fprintf(b, "NOTE: The diff was not computed: %v\n", e.Err)
		return
	}

	fmt.Fprintf(b, "## diff %s - %s (%d lines)\n\n", e.Conflict.Original, e.Conflict.Copy, e.Lines())
	if links {
		fmt.Fprintf(b, "[Side by side](<%s>)\n\n", pagePath(e))
	}
	f := fence(e.Text)
	fmt.Fprintf(b, "%sdiff\n%s%s\n", f, e.Text, f)
}

// fence returns a code fence that is longer than any run of backticks in text.
func fence(text string) string {
	longest, run := 0, 0
	for _, c := range []byte(text) {
		if c != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

// HTML renders the report as a complete HTML page.
func (r *Report) HTML() ([]byte, error) {
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return r.page(t)
}

func (r *Report) page(t *template.Template) ([]byte, error) {
	content, err := markdown.Render([]byte(r.markdown(true)), markdown.TOC(2))
	if err != nil {
		return nil, err
	}
	return execute(t, "page", pageData{
		Title:   r.Title,
		Updated: r.Updated(),
		Content: template.HTML(content),
	})
}

// Feed renders the report as an Atom feed with one entry per conflict. Links are only included if
// baseURL is set.
func (r *Report) Feed(baseURL string) ([]byte, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	id := "urn:sync-conflicts"
	if baseURL != "" {
		id = baseURL + "/"
	}

	feed := atom.Feed{
		Title:   r.Title,
		ID:      id,
		Updated: atom.Time(r.Updated()),
	}
	if baseURL != "" {
		feed.Link = []atom.Link{{
			Rel:  "self",
			Href: baseURL + "/feed.atom",
		}}
	}

	for i := range r.Entries {
		e := &r.Entries[i]

		var b strings.Builder
		e.markdown(&b, false)
		html, err := markdown.Render([]byte(b.String()))
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %v", e.Conflict.Copy, err)
		}

		entry := &atom.Entry{
			Title:     fmt.Sprintf("%s - %s", e.Conflict.Original, e.Conflict.Copy),
			ID:        strings.TrimSuffix(id, "/") + pagePath(e),
			Published: atom.Time(e.Conflict.Modified),
			Updated:   atom.Time(e.Conflict.Modified),
			Content: &atom.Text{
				Type: "html",
				Body: string(html),
			},
		}
		if baseURL != "" {
			entry.Link = []atom.Link{{
				Rel:  "alternate",
				Href: baseURL + pagePath(e),
			}}
		}
		feed.Entry = append(feed.Entry, entry)
	}

	b, err := xml.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %v", err)
	}
	return b, nil
}

type pageData struct {
	Title   string
	Updated time.Time
	Content template.HTML
}

func execute(t *template.Template, name string, data any) ([]byte, error) {
	tmpl := t.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("template not found %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template: %v", err)
	}
	return buf.Bytes(), nil
}
