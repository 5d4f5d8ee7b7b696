package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/session"
)

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

type ctxKey int

const sessionKey ctxKey = 0

// withSession attaches the caller's session, creating one when the header
// is missing or names an unknown or expired session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.expire()
		c, ok := s.sessions[r.Header.Get(SessionHeader)]
		if !ok {
			c = &client{sess: session.New(s.store, session.WithLogger(s.logger), session.WithTree(s.opts.Tree))}
			s.sessions[c.sess.ID] = c
			s.logger.Debug("session created", "id", c.sess.ID)
		}
		c.lastSeen = s.now()
		s.mu.Unlock()

		w.Header().Set(SessionHeader, c.sess.ID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, c.sess)))
	})
}

// expire drops idle sessions. The caller holds s.mu.
func (s *Server) expire() {
	if s.opts.SessionTTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.opts.SessionTTL)
	for id, c := range s.sessions {
		if c.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	return ctx.Value(sessionKey).(*session.Session)
}
