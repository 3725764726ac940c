package api

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/session"
)

// Store keeps live tuning sessions by id.
type Store struct {
	gen   session.Generator
	limit int
	log   *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
}

// NewStore creates an empty store holding at most limit sessions.
func NewStore(gen session.Generator, limit int, log *zap.Logger) *Store {
	if limit <= 0 {
		limit = 1
	}
	return &Store{
		gen:      gen,
		limit:    limit,
		log:      log,
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

// Create starts a session on image and issues its first request.
func (st *Store) Create(image string) (uuid.UUID, *session.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) >= st.limit {
		return uuid.Nil, nil, apperr.Errorf(apperr.IOError, "sessions.create", "session limit of %d reached", st.limit)
	}

	id := uuid.New()
	ctrl := session.NewController(st.gen,
		session.WithLogger(st.log.With(zap.Stringer("session", id))),
		session.WithCancelSuperseded(),
	)
	s := session.New(ctrl, image)
	st.sessions[id] = s
	return id, s, nil
}

// Get returns the session with the given id.
func (st *Store) Get(raw string) (uuid.UUID, *session.Session, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, apperr.Errorf(apperr.NotFound, "sessions.get", "no session %q", raw)
	}
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return uuid.Nil, nil, apperr.Errorf(apperr.NotFound, "sessions.get", "no session %q", raw)
	}
	return id, s, nil
}

// Delete removes a session and waits for its in-flight request.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Controller().Close()
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close removes every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[uuid.UUID]*session.Session)
	st.mu.Unlock()
	for _, s := range all {
		s.Controller().Close()
	}
}
