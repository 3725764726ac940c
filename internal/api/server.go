// Package api exposes the catalog, the option schema and tuning sessions
// over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/session"
)

// Server implements the HTTP handlers.
type Server struct {
	catalog  catalog.Catalog
	gen      session.Generator
	sessions *Store
	log      *zap.Logger
}

// New creates a server. maxSessions bounds the number of live sessions.
func New(cat catalog.Catalog, gen session.Generator, maxSessions int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")
	return &Server{
		catalog:  cat,
		gen:      gen,
		sessions: NewStore(gen, maxSessions, log),
		log:      log,
	}
}

// Close stops every session controller.
func (s *Server) Close() {
	s.sessions.Close()
}

// Routes returns the chi router serving the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/images", s.listImages)
		r.Get("/schema/resize", s.resizeSchema)
		r.Get("/schema/{format}", s.encodeSchema)
		r.Get("/defaults/resize", s.resizeDefaults)
		r.Get("/defaults/{format}", s.encodeDefaults)
		r.Post("/preview", s.preview)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Put("/image", s.putImage)
				r.Put("/format", s.putFormat)
				r.Put("/encode", s.putEncode)
				r.Put("/resize", s.putResize)
				r.Put("/options", s.putOptions)
				r.Post("/refresh", s.refresh)
				r.Get("/svg", s.svg)
			})
		})
	})
	return r
}

// requestLogger logs one line per request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
