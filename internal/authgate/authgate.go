// Package authgate implements the three chi middlewares guarding the
// brain service's HTTP surface: user JWT, server-to-server HMAC, and the
// cron bearer secret.
package authgate

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userContextKey contextKey = "user"

// UserContext is what JWT injects into the request context — generalizes
// the teacher's UserContext{UserID, Email, Token}.
type UserContext struct {
	UserID string
	Token  string
}

// UserFromContext reads the authenticated user's id, mirroring the
// teacher's userFromContext helper.
func UserFromContext(ctx context.Context) (UserContext, bool) {
	v := ctx.Value(userContextKey)
	u, ok := v.(UserContext)
	return u, ok && u.UserID != ""
}

type jwtClaims struct {
	Sub    string `json:"sub"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWT verifies a local HS256 token carrying either a "sub" or "user_id"
// claim. When devBypass is true and no Authorization header is present,
// an X-Dev-User-Id header is honored instead — never on top of a
// presented (and possibly invalid) token, and never by reading a body
// field. When secret is empty the gate fails closed on every request.
func JWT(secret string, devBypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeUnauthorized(w, "auth not configured")
				return
			}

			header := r.Header.Get("Authorization")
			token := bearerToken(header)

			if token == "" && devBypass {
				if devID := r.Header.Get("X-Dev-User-Id"); devID != "" {
					ctx := context.WithValue(r.Context(), userContextKey, UserContext{UserID: devID})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims := &jwtClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid {
				writeUnauthorized(w, "invalid token")
				return
			}

			userID := claims.Sub
			if userID == "" {
				userID = claims.UserID
			}
			if userID == "" {
				writeUnauthorized(w, "token missing subject")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, UserContext{UserID: userID, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HMAC verifies X-Brain-Timestamp/X-Brain-Signature against the request
// body, rejecting stale timestamps and non-matching signatures before
// re-injecting the body so downstream handlers can still read it.
func HMAC(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeUnauthorized(w, "hmac auth not configured")
				return
			}

			tsHeader := r.Header.Get("X-Brain-Timestamp")
			sigHeader := r.Header.Get("X-Brain-Signature")
			if tsHeader == "" || sigHeader == "" {
				writeUnauthorized(w, "missing signature headers")
				return
			}

			tsMillis, err := strconv.ParseInt(tsHeader, 10, 64)
			if err != nil {
				writeUnauthorized(w, "invalid timestamp")
				return
			}
			ts := time.UnixMilli(tsMillis)
			if skew := time.Since(ts); skew > 5*time.Minute || skew < -5*time.Minute {
				writeUnauthorized(w, "stale signature")
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeUnauthorized(w, "cannot read body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write([]byte(tsHeader + "."))
			mac.Write(body)
			expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

			if !hmac.Equal([]byte(expected), []byte(sigHeader)) {
				writeUnauthorized(w, "signature mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Cron compares the Authorization bearer token against secret in
// constant time, fails closed on an empty secret.
func Cron(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeUnauthorized(w, "cron auth not configured")
				return
			}
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" || !hmac.Equal([]byte(token), []byte(secret)) {
				writeUnauthorized(w, "invalid cron secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
