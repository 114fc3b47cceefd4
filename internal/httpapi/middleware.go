package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

type ctxKey int

const identityKey ctxKey = iota

func withIdentity(ctx context.Context, id *types.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFrom returns the request identity, or nil for anonymous requests.
func identityFrom(ctx context.Context) *types.Identity {
	id, _ := ctx.Value(identityKey).(*types.Identity)
	return id
}

// identify resolves the acting user. With a token validator only bearer
// tokens are trusted; otherwise the identity headers are used. Requests
// without credentials continue anonymously and are gated at write time.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id *types.Identity
		if s.opts.Tokens != nil {
			if token := bearerToken(r); token != "" {
				got, err := s.opts.Tokens.Validate(token)
				if err != nil {
					writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
					return
				}
				id = got
			}
		} else if user := r.Header.Get(HeaderUserID); user != "" {
			id = &types.Identity{UserID: user, Role: r.Header.Get(HeaderUserRole)}
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// requestLogger logs each request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
