package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
)

type credentialServiceStub struct {
	addFn      func(ctx context.Context, appID uuid.UUID, actorEmail string) (*entities.AddClientSecretResponse, error)
	deleteFn   func(ctx context.Context, appID, secretID uuid.UUID, actorEmail string) (*entities.Credentials, error)
	validateFn func(ctx context.Context, clientID, clientSecret string) (*entities.Application, error)
}

func (s credentialServiceStub) AddClientSecret(ctx context.Context, appID uuid.UUID, actorEmail string) (*entities.AddClientSecretResponse, error) {
	return s.addFn(ctx, appID, actorEmail)
}
func (s credentialServiceStub) DeleteClientSecret(ctx context.Context, appID, secretID uuid.UUID, actorEmail string) (*entities.Credentials, error) {
	return s.deleteFn(ctx, appID, secretID, actorEmail)
}
func (s credentialServiceStub) ValidateCredentials(ctx context.Context, clientID, clientSecret string) (*entities.Application, error) {
	return s.validateFn(ctx, clientID, clientSecret)
}

func TestCredentialHandler_AddAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actorID := uuid.New()
	appID := uuid.New()
	secretID := uuid.New()

	service := credentialServiceStub{
		addFn: func(_ context.Context, id uuid.UUID, actorEmail string) (*entities.AddClientSecretResponse, error) {
			if actorEmail != "admin@example.com" {
				t.Fatalf("actor not propagated: %q", actorEmail)
			}
			return &entities.AddClientSecretResponse{
				Secret: "plaintext-once",
				Credentials: entities.Credentials{
					ClientID: "client-1",
					ClientSecrets: []entities.ClientSecret{
						{ID: secretID, SecretHint: "once"},
					},
				},
			}, nil
		},
		deleteFn: func(_ context.Context, _ uuid.UUID, sid uuid.UUID, _ string) (*entities.Credentials, error) {
			if sid != secretID {
				return nil, domainerrors.NotFound("client secret not found")
			}
			return &entities.Credentials{ClientID: "client-1"}, nil
		},
	}

	h := NewCredentialHandler(service)
	r := gin.New()
	auth := withActor(actorID, "admin@example.com")
	r.POST("/applications/:id/client-secrets", auth, h.AddClientSecret)
	r.DELETE("/applications/:id/client-secrets/:secretId", auth, h.DeleteClientSecret)

	req := httptest.NewRequest(http.MethodPost, "/applications/"+appID.String()+"/client-secrets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("plaintext-once")) {
		t.Fatalf("expected plaintext in body=%s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/applications/"+appID.String()+"/client-secrets/"+secretID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/applications/"+appID.String()+"/client-secrets/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCredentialHandler_Validate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appID := uuid.New()

	service := credentialServiceStub{
		validateFn: func(_ context.Context, clientID, clientSecret string) (*entities.Application, error) {
			if clientID == "client-1" && clientSecret == "good" {
				return &entities.Application{ID: appID, Name: "My App"}, nil
			}
			return nil, domainerrors.Unauthorized("invalid client credentials")
		},
	}

	h := NewCredentialHandler(service)
	r := gin.New()
	r.POST("/credentials/validate", h.ValidateCredentials)

	req := httptest.NewRequest(http.MethodPost, "/credentials/validate", bytes.NewReader([]byte(`{"clientId":"client-1","clientSecret":"good"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/credentials/validate", bytes.NewReader([]byte(`{"clientId":"client-1","clientSecret":"bad"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}
