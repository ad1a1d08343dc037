package rest

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	userIDKey    ctxKey = "userID"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requestID tags every request with an id, reusing the caller's one when
// it sends X-Request-ID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", remoteIP(r),
			"request_id", requestIDFrom(r.Context()),
		}

		switch {
		case rec.status >= 500:
			s.logger.Error(r.Context(), "request", args...)
		case rec.status >= 400:
			s.logger.Warn(r.Context(), "request", args...)
		default:
			s.logger.Info(r.Context(), "request", args...)
		}
	})
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireAuth rejects requests without a valid token and stores the
// caller's id in the request context. With queryToken set, the token may
// also come from the "token" query parameter, for browsers that cannot set
// headers on websocket requests.
func (s *Server) requireAuth(queryToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r.Header.Get(common.AuthorizationHeaderName))
			if token == "" && queryToken {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: msgUnauthorized})
				return
			}

			user, err := s.users.VerifyToken(r.Context(), token)
			if err != nil {
				if !errors.Is(err, common.ErrorUnauthorized) {
					s.logger.Error(r.Context(), "token verification failed", "error", err)
				}
				writeJSON(w, http.StatusForbidden, errorResponse{Error: msgUnauthorized})
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, user.ID)))
		})
	}
}

// tokenFromHeader accepts "JWT <token>" and "Bearer <token>".
func tokenFromHeader(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, common.TokenSchemeJWT) && !strings.EqualFold(scheme, common.TokenSchemeBearer) {
		return ""
	}
	return strings.TrimSpace(token)
}
