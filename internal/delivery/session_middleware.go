package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"

	"github.com/Vovarama1992/voice_translator/internal/session"
)

const sessionCookie = "vt_session"

type sessionKey struct{}

// SessionMiddleware достаёт состояние по cookie или заводит новую сессию.
func SessionMiddleware(store session.Store, ttl time.Duration, log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var st *session.State

			if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				got, err := store.Get(r.Context(), c.Value)
				switch {
				case err == nil:
					st = got
				case !errors.Is(err, session.ErrNotFound):
					log.Log(logger.LogEntry{Level: "error", Message: "session load failed", Error: err})
					http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
					return
				}
			}

			if st == nil {
				st = session.New(uuid.NewString())
				if err := store.Save(r.Context(), st); err != nil {
					log.Log(logger.LogEntry{Level: "error", Message: "session create failed", Error: err})
					http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
					return
				}
			}

			cookie := &http.Cookie{
				Name:     sessionCookie,
				Value:    st.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			if ttl > 0 {
				cookie.MaxAge = int(ttl.Seconds())
			}
			http.SetCookie(w, cookie)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, st)))
		})
	}
}

func sessionFrom(r *http.Request) *session.State {
	st, _ := r.Context().Value(sessionKey{}).(*session.State)
	return st
}
