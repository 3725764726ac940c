package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnyUserName/blurtune/internal/options"
)

// schemaResponse describes the editable fields of one options group.
type schemaResponse struct {
	Format string          `json:"format,omitempty"`
	Fields []options.Field `json:"fields"`
}

func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, images)
}

func (s *Server) encodeSchema(w http.ResponseWriter, r *http.Request) {
	f, err := options.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schemaResponse{Format: string(f), Fields: options.SchemaFor(f)})
}

func (s *Server) resizeSchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, schemaResponse{Fields: options.ResizeSchema()})
}

func (s *Server) encodeDefaults(w http.ResponseWriter, r *http.Request) {
	f, err := options.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, options.DefaultsFor(f))
}

func (s *Server) resizeDefaults(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, options.DefaultResize())
}

// previewRequest is the body of a one-shot generation. Omitted options
// take their defaults.
type previewRequest struct {
	Image   string                    `json:"image"`
	Options options.ProcessingOptions `json:"options"`
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	req := previewRequest{Options: options.DefaultProcessing()}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.gen.Generate(r.Context(), req.Image, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	etag := strconv.Quote(res.Hash)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
