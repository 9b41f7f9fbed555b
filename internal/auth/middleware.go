package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/httpx"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type contextKey string

const subjectContextKey contextKey = "storefront_subject"

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectContextKey).(string)
	return s, ok && s != ""
}

// Authorize extracts the bearer token from h and verifies it. Every failure
// is ErrUnauthenticated; the verification cause is wrapped for logging.
func Authorize(h http.Header, v Verifier) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	subject, err := v.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return subject, nil
}

func Middleware(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := Authorize(r.Header, v)
			if err != nil {
				logger.InfoContext(r.Context(), "request rejected", "reason", err, "path", r.URL.Path)
				httpx.Message(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}
