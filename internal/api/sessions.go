package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
	"github.com/AnyUserName/blurtune/internal/session"
)

// sessionView is the JSON shape of a session.
type sessionView struct {
	ID      string                    `json:"id"`
	Image   string                    `json:"image"`
	Options options.ProcessingOptions `json:"options"`
	State   string                    `json:"state"`
	Seq     uint64                    `json:"seq"`
	Current *snapshotView             `json:"current,omitempty"`
	Stats   session.Stats             `json:"stats"`
}

// snapshotView is the published completion of a session.
type snapshotView struct {
	Seq     uint64                    `json:"seq"`
	Image   string                    `json:"image"`
	Options options.ProcessingOptions `json:"options"`
	Result  *preview.Result           `json:"result,omitempty"`
	Error   *errorBody                `json:"error,omitempty"`
}

// seqResponse acknowledges a change with the request it issued.
type seqResponse struct {
	Seq uint64 `json:"seq"`
}

func viewOf(id uuid.UUID, s *session.Session) sessionView {
	ctrl := s.Controller()
	state, seq := ctrl.State()
	v := sessionView{
		ID:      id.String(),
		Image:   s.Image(),
		Options: s.Options(),
		State:   state.String(),
		Seq:     seq,
		Stats:   ctrl.Stats(),
	}
	if snap, ok := ctrl.Current(); ok {
		v.Current = snapshotOf(snap)
	}
	return v
}

func snapshotOf(snap session.Snapshot) *snapshotView {
	sv := &snapshotView{
		Seq:     snap.Seq,
		Image:   snap.ImageName,
		Options: snap.Options,
		Result:  snap.Result,
	}
	if snap.Err != nil {
		sv.Error = newErrorBody(snap.Err)
	}
	return sv
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if req.Image == "" {
		images, err := s.catalog.List(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if len(images) == 0 {
			s.writeError(w, apperr.Errorf(apperr.NotFound, "sessions.create", "catalog is empty"))
			return
		}
		req.Image = images[0].Name
	}

	id, sess, err := s.sessions.Create(req.Image)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id.String())
	s.writeJSON(w, http.StatusCreated, viewOf(id, sess))
}

// withSession resolves the {id} URL parameter.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, *session.Session, bool) {
	id, sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return uuid.Nil, nil, false
	}
	return id, sess, true
}

// getSession returns the session. With ?wait=1 it first blocks until the
// latest request has completed or the client goes away.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("wait") != "" {
		if _, err := sess.Controller().Wait(r.Context()); err != nil && !errors.Is(err, session.ErrNoResult) {
			s.log.Debug("session wait abandoned", zap.Stringer("session", id), zap.Error(err))
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, viewOf(id, sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.withSession(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// mutate decodes the body into a fresh T and applies it to the session.
func mutate[T any](s *Server, w http.ResponseWriter, r *http.Request,
	seed func(*session.Session) T,
	apply func(*session.Session, T) (uint64, error),
) {
	_, sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	body := seed(sess)
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	seq, err := apply(sess, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, seqResponse{Seq: seq})
}

type imageBody struct {
	Image string `json:"image"`
}

func (s *Server) putImage(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r,
		func(*session.Session) imageBody { return imageBody{} },
		func(sess *session.Session, b imageBody) (uint64, error) { return sess.SelectImage(b.Image) },
	)
}

type formatBody struct {
	Format string `json:"format"`
}

func (s *Server) putFormat(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r,
		func(*session.Session) formatBody { return formatBody{} },
		func(sess *session.Session, b formatBody) (uint64, error) {
			f, err := options.ParseFormat(b.Format)
			if err != nil {
				return 0, err
			}
			return sess.SetFormat(f)
		},
	)
}

// encodeBody carries encode options merged onto the session's current
// ones. A format other than the session's is rejected.
type encodeBody struct {
	Format string              `json:"format"`
	Encode jsoniter.RawMessage `json:"encodeOptions"`
}

func (s *Server) putEncode(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r,
		func(*session.Session) encodeBody { return encodeBody{} },
		func(sess *session.Session, b encodeBody) (uint64, error) {
			base := sess.Options().Encode
			if b.Format != "" {
				f, err := options.ParseFormat(b.Format)
				if err != nil {
					return 0, err
				}
				if f != base.Format() {
					base = options.DefaultsFor(f)
				}
			}
			enc, err := options.MergeEncode(base, b.Encode)
			if err != nil {
				return 0, err
			}
			return sess.SetEncodeOptions(enc)
		},
	)
}

func (s *Server) putResize(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r,
		func(sess *session.Session) options.ResizeSpec { return sess.Options().Resize },
		(*session.Session).SetResize,
	)
}

// putOptions merges a processing options document onto the session's
// current options; see options.ProcessingOptions.Merge.
func (s *Server) putOptions(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r,
		func(*session.Session) jsoniter.RawMessage { return nil },
		func(sess *session.Session, body jsoniter.RawMessage) (uint64, error) {
			opts, err := sess.Options().Merge(body)
			if err != nil {
				return 0, err
			}
			return sess.SetOptions(opts)
		},
	)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusAccepted, seqResponse{Seq: sess.Refresh()})
}

// svg wraps the current placeholder in the blur SVG sized to the source.
func (s *Server) svg(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	snap, ok := sess.Controller().Current()
	if !ok {
		s.writeError(w, apperr.Errorf(apperr.NotFound, "sessions.svg", "no preview yet"))
		return
	}
	if snap.Err != nil {
		s.writeError(w, snap.Err)
		return
	}

	images, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := catalog.Find(images, snap.ImageName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("ETag", `"`+snap.Result.Hash+`"`)
	_, _ = w.Write([]byte(preview.SVG(snap.Result.URI, info.Width, info.Height, 0)))
}
