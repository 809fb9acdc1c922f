package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/interfaces/http/response"
)

type CollaboratorService interface {
	AddCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error)
	DeleteCollaborator(ctx context.Context, appID uuid.UUID, email string) (*entities.Application, error)
	FixCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error)
}

// CollaboratorHandler handles team membership endpoints
type CollaboratorHandler struct {
	collabUsecase CollaboratorService
}

// NewCollaboratorHandler creates a new collaborator handler
func NewCollaboratorHandler(collabUsecase CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{collabUsecase: collabUsecase}
}

type collaboratorRequest struct {
	Email  string     `json:"emailAddress" binding:"required"`
	Role   string     `json:"role" binding:"required"`
	UserID *uuid.UUID `json:"userId"`
}

// AddCollaborator adds a team member
// POST /api/v1/applications/:id/collaborators
func (h *CollaboratorHandler) AddCollaborator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var req collaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.collabUsecase.AddCollaborator(c.Request.Context(), id, req.Email,
		entities.CollaboratorRole(req.Role), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"collaborators": app.Collaborators})
}

// DeleteCollaborator removes a team member
// DELETE /api/v1/applications/:id/collaborators/:email
func (h *CollaboratorHandler) DeleteCollaborator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	email := c.Param("email")
	if email == "" {
		response.Error(c, domainerrors.BadRequest("Email is required"))
		return
	}

	app, err := h.collabUsecase.DeleteCollaborator(c.Request.Context(), id, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"collaborators": app.Collaborators})
}

// FixCollaborator updates a team member's role or user binding
// PUT /api/v1/applications/:id/collaborators/:email
func (h *CollaboratorHandler) FixCollaborator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	email := c.Param("email")
	if email == "" {
		response.Error(c, domainerrors.BadRequest("Email is required"))
		return
	}

	var req struct {
		Role   string     `json:"role" binding:"required"`
		UserID *uuid.UUID `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.collabUsecase.FixCollaborator(c.Request.Context(), id, email,
		entities.CollaboratorRole(req.Role), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"collaborators": app.Collaborators})
}
