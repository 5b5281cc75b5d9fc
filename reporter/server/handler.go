package server

import (
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"znkr.io/conflicts/reporter/site"
)

type handler struct {
	site   atomic.Pointer[site.Site]
	logger zerolog.Logger
}

func newHandler(s *site.Site, logger zerolog.Logger) *handler {
	h := &handler{logger: logger}
	h.site.Store(s)
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s := h.site.Load()

	switch req.Method {
	case http.MethodGet:
	case http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Conflict copies can have any name, documents are keyed by the unescaped path.
	doc := s.Doc(req.URL.Path)
	if doc == nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		if req.Method == http.MethodGet {
			w.Write([]byte("not found"))
		}
		return
	}

	b, err := s.RenderPage(doc)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		if req.Method == http.MethodGet {
			w.Write([]byte(err.Error()))
		}
		h.logger.Error().Err(err).Str("path", req.URL.Path).Msg("Failed to serve")
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(b); err != nil {
		h.logger.Warn().Err(err).Str("path", req.URL.Path).Msg("Failed to write response")
	}
}
