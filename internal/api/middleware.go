package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/metrics"
)

// TokenVerifier resolves bearer tokens. *auth.Issuer satisfies it.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.Identity, error)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// requireAuth rejects requests without a valid access token and stores the
// identity on the request context.
func requireAuth(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, errors.Unauthorizedf("missing bearer token"))
				return
			}
			id, err := verifier.VerifyAccess(token)
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// owner returns the authenticated user id. Routes behind requireAuth
// always have one.
func owner(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.UserID
}

// pathID returns the {id} route variable. Record ids are uuids; anything
// else cannot name a record and is reported as NotFound.
func pathID(r *http.Request, entity string) (string, error) {
	id := mux.Vars(r)["id"]
	if err := uuid.Validate(id); err != nil {
		return "", errors.NotFoundf("%s", entity)
	}
	return id, nil
}

func cors(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and records it under its route template.
func instrument(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.Request(route, r.Method, rec.status, elapsed)
			logger.HTTP().WithFields(logger.Fields{
				"method":   r.Method,
				"route":    route,
				"status":   rec.status,
				"duration": elapsed.String(),
			}).Debug("request served")
		})
	}
}
