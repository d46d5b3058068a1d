package authgate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok {
			w.Write([]byte(u.UserID))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func signHS256(t *testing.T, secret, sub string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestJWTValidToken(t *testing.T) {
	secret := "jwt-secret"
	tok := signHS256(t, secret, "user-42")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	JWT(secret, false)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "user-42" {
		t.Fatalf("body = %q, want user-42", rec.Body.String())
	}
}

func TestJWTMissingTokenRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	JWT("jwt-secret", false)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTEmptySecretFailsClosed(t *testing.T) {
	tok := signHS256(t, "whatever", "user-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	JWT("", true)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when secret unconfigured", rec.Code)
	}
}

func TestJWTDevBypassRequiresNoToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Dev-User-Id", "dev-user")
	rec := httptest.NewRecorder()

	JWT("jwt-secret", true)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "dev-user" {
		t.Fatalf("status=%d body=%q, want 200/dev-user", rec.Code, rec.Body.String())
	}
}

func TestJWTWrongSignatureRejected(t *testing.T) {
	tok := signHS256(t, "wrong-secret", "user-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	JWT("jwt-secret", false)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func sign(secret, ts, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestHMACValidSignature(t *testing.T) {
	secret := "hmac-secret"
	body := `{"user_id":"p1"}`
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Brain-Timestamp", ts)
	req.Header.Set("X-Brain-Signature", sign(secret, ts, body))
	rec := httptest.NewRecorder()

	var gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, len(body))
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	})

	HMAC(secret)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotBody != body {
		t.Fatalf("downstream body = %q, want %q (body must be re-injected)", gotBody, body)
	}
}

func TestHMACStaleTimestampRejected(t *testing.T) {
	secret := "hmac-secret"
	body := `{}`
	ts := strconv.FormatInt(time.Now().Add(-10*time.Minute).UnixMilli(), 10)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Brain-Timestamp", ts)
	req.Header.Set("X-Brain-Signature", sign(secret, ts, body))
	rec := httptest.NewRecorder()

	HMAC(secret)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for stale timestamp", rec.Code)
	}
}

func TestHMACBadSignatureRejected(t *testing.T) {
	secret := "hmac-secret"
	body := `{}`
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Brain-Timestamp", ts)
	req.Header.Set("X-Brain-Signature", "sha256=deadbeef")
	rec := httptest.NewRecorder()

	HMAC(secret)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCronValidSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()

	Cron("cron-secret")(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCronWrongSecretRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()

	Cron("cron-secret")(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCronEmptySecretFailsClosed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()

	Cron("")(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when secret unconfigured", rec.Code)
	}
}
