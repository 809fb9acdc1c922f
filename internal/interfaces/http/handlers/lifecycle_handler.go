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

type LifecycleService interface {
	RequestUplift(ctx context.Context, appID uuid.UUID, name, requestedByEmail string) (*entities.Application, error)
	VerifyUplift(ctx context.Context, code string) (*entities.Application, error)
	StateHistory(ctx context.Context, appID uuid.UUID) ([]*entities.StateTransition, error)
}

// LifecycleHandler handles the developer-facing lifecycle endpoints:
// requesting uplift and confirming it with the emailed code.
type LifecycleHandler struct {
	lifecycleUsecase LifecycleService
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycleUsecase LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycleUsecase: lifecycleUsecase}
}

type requestUpliftRequest struct {
	Name string `json:"name"`
}

// RequestUplift asks for promotion out of TESTING. The body is optional;
// a name in it renames the application as part of the request.
// POST /api/v1/applications/:id/uplift
func (h *LifecycleHandler) RequestUplift(c *gin.Context) {
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

	var req requestUpliftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	app, err := h.lifecycleUsecase.RequestUplift(c.Request.Context(), id, req.Name, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

type verifyUpliftRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyUplift confirms an uplift with the emailed verification code
// POST /api/v1/applications/verify-uplift
func (h *LifecycleHandler) VerifyUplift(c *gin.Context) {
	var req verifyUpliftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.lifecycleUsecase.VerifyUplift(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// StateHistory returns the application's lifecycle transition log
// GET /api/v1/applications/:id/state-history
func (h *LifecycleHandler) StateHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	history, err := h.lifecycleUsecase.StateHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": history})
}
