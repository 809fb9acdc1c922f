package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"devhub.backend/internal/config"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(config.EmailConfig{
		BaseURL: srv.URL,
		From:    "no-reply@devhub.example",
		Timeout: 5 * time.Second,
	})
	return c, srv
}

func TestSendVerification(t *testing.T) {
	var got sendRequest
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	})
	defer srv.Close()

	err := c.SendVerification(context.Background(), "admin@example.com", "code-1", "My App")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com"}, got.To)
	assert.Equal(t, "uplift-verification", got.Template)
	assert.Equal(t, "code-1", got.Params["verificationCode"])
	assert.Equal(t, "no-reply@devhub.example", got.From)
}

func TestSendCollaboratorAdded(t *testing.T) {
	var got sendRequest
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	err := c.SendCollaboratorAdded(context.Background(), "new@example.com", "My App", []string{"admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new@example.com", "admin@example.com"}, got.To)
	assert.Equal(t, "collaborator-added", got.Template)
}

func TestSend_MailerError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "template missing", http.StatusUnprocessableEntity)
	})
	defer srv.Close()

	err := c.SendCollaboratorRemoved(context.Background(), "gone@example.com", "My App", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template missing")
}
