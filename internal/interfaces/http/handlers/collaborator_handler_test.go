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

type collaboratorServiceStub struct {
	addFn    func(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error)
	deleteFn func(ctx context.Context, appID uuid.UUID, email string) (*entities.Application, error)
	fixFn    func(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error)
}

func (s collaboratorServiceStub) AddCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error) {
	return s.addFn(ctx, appID, email, role, userID)
}
func (s collaboratorServiceStub) DeleteCollaborator(ctx context.Context, appID uuid.UUID, email string) (*entities.Application, error) {
	return s.deleteFn(ctx, appID, email)
}
func (s collaboratorServiceStub) FixCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error) {
	return s.fixFn(ctx, appID, email, role, userID)
}

func TestCollaboratorHandler_AddDeleteFix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	appID := uuid.New()

	service := collaboratorServiceStub{
		addFn: func(_ context.Context, id uuid.UUID, email string, role entities.CollaboratorRole, _ *uuid.UUID) (*entities.Application, error) {
			return &entities.Application{ID: id, Collaborators: []entities.Collaborator{
				{Email: "admin@example.com", Role: entities.RoleAdministrator},
				{Email: email, Role: role},
			}}, nil
		},
		deleteFn: func(_ context.Context, id uuid.UUID, email string) (*entities.Application, error) {
			if email == "admin@example.com" {
				return nil, domainerrors.Conflict("APPLICATION_NEEDS_ADMIN",
					"application needs at least one administrator", domainerrors.ErrApplicationNeedsAdmin)
			}
			return &entities.Application{ID: id, Collaborators: []entities.Collaborator{
				{Email: "admin@example.com", Role: entities.RoleAdministrator},
			}}, nil
		},
		fixFn: func(_ context.Context, id uuid.UUID, email string, role entities.CollaboratorRole, _ *uuid.UUID) (*entities.Application, error) {
			return &entities.Application{ID: id, Collaborators: []entities.Collaborator{
				{Email: email, Role: role},
			}}, nil
		},
	}

	h := NewCollaboratorHandler(service)
	r := gin.New()
	r.POST("/applications/:id/collaborators", h.AddCollaborator)
	r.DELETE("/applications/:id/collaborators/:email", h.DeleteCollaborator)
	r.PUT("/applications/:id/collaborators/:email", h.FixCollaborator)

	body := []byte(`{"emailAddress":"dev@example.com","role":"DEVELOPER"}`)
	req := httptest.NewRequest(http.MethodPost, "/applications/"+appID.String()+"/collaborators", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}

	// removing the last administrator is refused
	req = httptest.NewRequest(http.MethodDelete, "/applications/"+appID.String()+"/collaborators/admin@example.com", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("APPLICATION_NEEDS_ADMIN")) {
		t.Fatalf("expected error code in body=%s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/applications/"+appID.String()+"/collaborators/dev@example.com", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPut, "/applications/"+appID.String()+"/collaborators/dev@example.com", bytes.NewReader([]byte(`{"role":"ADMINISTRATOR"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}
