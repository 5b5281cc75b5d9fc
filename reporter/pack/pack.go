// Package pack writes the report site into a tar archive that can be served by any static file
// server.
package pack

import (
	"archive/tar"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"github.com/tdewolff/minify/v2/xml"

	"znkr.io/conflicts/reporter/site"
)

// PackFile writes the site as tar file to filename.
func PackFile(filename string, s *site.Site, modTime time.Time) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %v", err)
	}
	if err := Pack(file, s, modTime); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file: %v", err)
	}
	return nil
}

// Pack renders every document of the site, minifies it if possible, and writes it to w as tar
// archive. HTML documents without extension are written as index.html files.
func Pack(w io.Writer, s *site.Site, modTime time.Time) error {
	minifier := minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFunc("image/svg+xml", svg.Minify)
	minifier.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	minifier.AddFuncRegexp(regexp.MustCompile("[/+]xml$"), xml.Minify)

	tw := tar.NewWriter(w)
	dirs := make(map[string]bool)

	for _, d := range s.AllDocs() {
		b, err := s.RenderPage(d)
		if err != nil {
			return err
		}

		mimeType, _, err := mime.ParseMediaType(d.MimeType)
		if err != nil {
			return fmt.Errorf("invalid mime type for %s: %v", d.Path, err)
		}

		switch mimeType {
		case "text/html", "text/css", "image/svg+xml", "application/atom+xml", "text/javascript":
			b, err = minifier.Bytes(mimeType, b)
			if err != nil {
				return fmt.Errorf("minification failed for %s: %v", d.Path, err)
			}
		}

		name := d.Path
		if name == "/" {
			name = "index.html"
		} else if mimeType == "text/html" && path.Ext(name) == "" {
			name += "/index.html"
		}
		name = strings.TrimPrefix(name, "/")

		if err := writeDirs(tw, dirs, path.Dir(name), modTime); err != nil {
			return err
		}

		hdr := &tar.Header{
			Name:    "./" + name,
			Mode:    int64(0644),
			Size:    int64(len(b)),
			ModTime: modTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
		if _, err := tw.Write(b); err != nil {
			return fmt.Errorf("writing body: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing archive: %v", err)
	}
	return nil
}

// writeDirs writes headers for dir and all its parents that haven't been written yet.
func writeDirs(tw *tar.Writer, dirs map[string]bool, dir string, modTime time.Time) error {
	if dirs[dir] {
		return nil
	}
	if dir != "." {
		if err := writeDirs(tw, dirs, path.Dir(dir), modTime); err != nil {
			return err
		}
	}

	name := "./" + dir + "/"
	if dir == "." {
		name = "./"
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name,
		Mode:     int64(0755),
		ModTime:  modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header: %v", err)
	}
	dirs[dir] = true
	return nil
}
