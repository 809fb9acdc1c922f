package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/interfaces/http/middleware"
	"devhub.backend/internal/interfaces/http/response"
)

type CredentialService interface {
	AddClientSecret(ctx context.Context, appID uuid.UUID, actorEmail string) (*entities.AddClientSecretResponse, error)
	DeleteClientSecret(ctx context.Context, appID, secretID uuid.UUID, actorEmail string) (*entities.Credentials, error)
	ValidateCredentials(ctx context.Context, clientID, clientSecret string) (*entities.Application, error)
}

// CredentialHandler handles client secret endpoints
type CredentialHandler struct {
	credentialUsecase CredentialService
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentialUsecase CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialUsecase: credentialUsecase}
}

// AddClientSecret issues a new client secret. The response is the only
// place the plaintext ever appears.
// POST /api/v1/applications/:id/client-secrets
func (h *CredentialHandler) AddClientSecret(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	email, ok := middleware.GetActorEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	result, err := h.credentialUsecase.AddClientSecret(c.Request.Context(), id, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// DeleteClientSecret removes a client secret
// DELETE /api/v1/applications/:id/client-secrets/:secretId
func (h *CredentialHandler) DeleteClientSecret(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}
	secretID, err := uuid.Parse(c.Param("secretId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid secret ID"))
		return
	}

	email, ok := middleware.GetActorEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	credentials, err := h.credentialUsecase.DeleteClientSecret(c.Request.Context(), id, secretID, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"credentials": credentials})
}

type validateCredentialsRequest struct {
	ClientID     string `json:"clientId" binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
}

// ValidateCredentials checks a client ID and secret pair; used by the
// gateway's token endpoint.
// POST /api/v1/credentials/validate
func (h *CredentialHandler) ValidateCredentials(c *gin.Context) {
	var req validateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.credentialUsecase.ValidateCredentials(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"applicationId": app.ID,
		"name":          app.Name,
		"blocked":       app.Blocked,
	})
}
