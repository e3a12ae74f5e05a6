package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("", time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndParse(t *testing.T) {
	a, err := New("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateToken("desk-01")
	require.NoError(t, err)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "desk-01", claims.Subject)
}

func TestParse_WrongSecretAndExpired(t *testing.T) {
	a, _ := New("one", time.Minute)
	b, _ := New("two", time.Minute)

	token, err := a.GenerateToken("x")
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	a, _ := New("s3cret", time.Hour)
	token, err := a.GenerateToken("desk-01")
	require.NoError(t, err)

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := GetClaimsFromContext(r.Context()); err == nil {
			gotSubject = claims.Subject
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := a.JWTMiddleware(next)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{"health is open", "/health", "", http.StatusOK},
		{"missing token", "/api/submit", "", http.StatusUnauthorized},
		{"bad token", "/api/submit", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/api/submit", "Basic " + token, http.StatusUnauthorized},
		{"valid token", "/api/submit", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, "desk-01", gotSubject)
}

func TestGetClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetClaimsFromContext(req.Context())
	assert.Error(t, err)
}
