package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/interfaces/http/middleware"
	"devhub.backend/internal/interfaces/http/response"
	"devhub.backend/internal/usecases"
	"devhub.backend/pkg/utils"
)

type ApplicationService interface {
	CreateApplication(ctx context.Context, input usecases.CreateApplicationInput) (*entities.Application, string, error)
	GetApplication(ctx context.Context, appID uuid.UUID) (*entities.Application, error)
	ListApplications(ctx context.Context, limit, offset int) ([]*entities.Application, int, error)
	DeleteApplication(ctx context.Context, appID uuid.UUID) error
	UpdateIPAllowlist(ctx context.Context, appID uuid.UUID, allowlist []string) (*entities.Application, error)
}

// ApplicationHandler handles application registration endpoints
type ApplicationHandler struct {
	appUsecase ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appUsecase ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appUsecase: appUsecase}
}

type createApplicationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Environment string `json:"deployedTo"`
	AccessType  string `json:"accessType" binding:"required"`
}

// CreateApplication registers a new application
// POST /api/v1/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	email, ok := middleware.GetActorEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}
	var ownerID *uuid.UUID
	if id, ok := middleware.GetActorID(c); ok {
		ownerID = &id
	}

	app, secret, err := h.appUsecase.CreateApplication(c.Request.Context(), usecases.CreateApplicationInput{
		Name:        req.Name,
		Description: req.Description,
		Environment: entities.Environment(req.Environment),
		AccessType:  entities.AccessType(req.AccessType),
		OwnerEmail:  email,
		OwnerUserID: ownerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"application": app,
		"secret":      secret,
	})
}

// GetApplication gets an application by ID
// GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	app, err := h.appUsecase.GetApplication(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// ListApplications lists applications
// GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	req := utils.NewPageRequest(page, limit)

	apps, total, err := h.appUsecase.ListApplications(c.Request.Context(), req.Size, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"applications": apps,
		"pagination":   utils.PageInfoFor(int64(total), req),
	})
}

// DeleteApplication removes an application
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	if err := h.appUsecase.DeleteApplication(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateIPAllowlistRequest struct {
	IPAllowlist []string `json:"ipAllowlist"`
}

// UpdateIPAllowlist replaces the application's IP allowlist
// PUT /api/v1/applications/:id/ip-allowlist
func (h *ApplicationHandler) UpdateIPAllowlist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var req updateIPAllowlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.appUsecase.UpdateIPAllowlist(c.Request.Context(), id, req.IPAllowlist)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}
