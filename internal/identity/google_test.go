package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(handler http.HandlerFunc) (*GoogleVerifier, *httptest.Server) {
	server := httptest.NewServer(handler)
	verifier := &GoogleVerifier{
		tokenInfoURL: server.URL,
		httpClient:   &http.Client{Timeout: 2 * time.Second},
	}
	return verifier, server
}

func TestVerifyReturnsEmailForMatchingAudience(t *testing.T) {
	verifier, server := newTestVerifier(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "blob", r.URL.Query().Get("id_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"client-1","email":"a@x.com","email_verified":"true"}`))
	})
	defer server.Close()

	email, err := verifier.Verify(context.Background(), "blob", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	verifier, server := newTestVerifier(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"aud":"other-client","email":"a@x.com","email_verified":"true"}`))
	})
	defer server.Close()

	_, err := verifier.Verify(context.Background(), "blob", "client-1")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestVerifyRejectsUnverifiedEmail(t *testing.T) {
	verifier, server := newTestVerifier(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"aud":"client-1","email":"a@x.com","email_verified":"false"}`))
	})
	defer server.Close()

	_, err := verifier.Verify(context.Background(), "blob", "client-1")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestVerifyRejectsProviderError(t *testing.T) {
	verifier, server := newTestVerifier(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_description":"Invalid Value"}`, http.StatusBadRequest)
	})
	defer server.Close()

	_, err := verifier.Verify(context.Background(), "blob", "client-1")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestVerifyHonorsContextCancellation(t *testing.T) {
	verifier, server := newTestVerifier(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := verifier.Verify(ctx, "blob", "client-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidAssertion)
}
