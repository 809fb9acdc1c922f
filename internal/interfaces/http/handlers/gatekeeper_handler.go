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

type GatekeeperService interface {
	ApproveUplift(ctx context.Context, appID uuid.UUID, gatekeeperID uuid.UUID, gatekeeperEmail string) (*entities.Application, error)
	RejectUplift(ctx context.Context, appID uuid.UUID, gatekeeperID uuid.UUID, gatekeeperEmail, reason string) (*entities.Application, error)
	ResendVerification(ctx context.Context, appID uuid.UUID) error
	BlockApplication(ctx context.Context, appID uuid.UUID) (bool, error)
	UnblockApplication(ctx context.Context, appID uuid.UUID) (bool, error)
}

type RateLimitService interface {
	UpdateTier(ctx context.Context, appID uuid.UUID, tier entities.RateLimitTier) (*entities.Application, error)
}

// GatekeeperHandler handles the moderation endpoints. All routes behind it
// require the gatekeeper role.
type GatekeeperHandler struct {
	lifecycleUsecase GatekeeperService
	rateLimitUsecase RateLimitService
}

// NewGatekeeperHandler creates a new gatekeeper handler
func NewGatekeeperHandler(lifecycleUsecase GatekeeperService, rateLimitUsecase RateLimitService) *GatekeeperHandler {
	return &GatekeeperHandler{
		lifecycleUsecase: lifecycleUsecase,
		rateLimitUsecase: rateLimitUsecase,
	}
}

func (h *GatekeeperHandler) actor(c *gin.Context) (uuid.UUID, string, bool) {
	id, okID := middleware.GetActorID(c)
	email, okEmail := middleware.GetActorEmail(c)
	return id, email, okID && okEmail
}

// ApproveUplift approves a pending uplift request
// POST /api/v1/gatekeeper/applications/:id/approve
func (h *GatekeeperHandler) ApproveUplift(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	actorID, actorEmail, ok := h.actor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	app, err := h.lifecycleUsecase.ApproveUplift(c.Request.Context(), id, actorID, actorEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

type rejectUpliftRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectUplift rejects a pending uplift request
// POST /api/v1/gatekeeper/applications/:id/reject
func (h *GatekeeperHandler) RejectUplift(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var req rejectUpliftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	actorID, actorEmail, ok := h.actor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	app, err := h.lifecycleUsecase.RejectUplift(c.Request.Context(), id, actorID, actorEmail, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// ResendVerification re-sends the uplift verification email
// POST /api/v1/gatekeeper/applications/:id/resend-verification
func (h *GatekeeperHandler) ResendVerification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	if err := h.lifecycleUsecase.ResendVerification(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BlockApplication blocks an application
// POST /api/v1/gatekeeper/applications/:id/block
func (h *GatekeeperHandler) BlockApplication(c *gin.Context) {
	h.setBlocked(c, true)
}

// UnblockApplication unblocks an application
// POST /api/v1/gatekeeper/applications/:id/unblock
func (h *GatekeeperHandler) UnblockApplication(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *GatekeeperHandler) setBlocked(c *gin.Context, blocked bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var result bool
	if blocked {
		result, err = h.lifecycleUsecase.BlockApplication(c.Request.Context(), id)
	} else {
		result, err = h.lifecycleUsecase.UnblockApplication(c.Request.Context(), id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"blocked": result})
}

type updateTierRequest struct {
	Tier string `json:"rateLimitTier" binding:"required"`
}

// UpdateRateLimitTier changes the application's rate limit tier
// PUT /api/v1/gatekeeper/applications/:id/rate-limit-tier
func (h *GatekeeperHandler) UpdateRateLimitTier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var req updateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.rateLimitUsecase.UpdateTier(c.Request.Context(), id, entities.RateLimitTier(req.Tier))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}
