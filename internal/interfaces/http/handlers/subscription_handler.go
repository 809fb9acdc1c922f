package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/interfaces/http/response"
	"devhub.backend/pkg/utils"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (*entities.Subscription, error)
	Unsubscribe(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) error
	IsSubscribed(ctx context.Context, appID uuid.UUID, api entities.ApiIdentifier) (bool, error)
	ListByApplication(ctx context.Context, appID uuid.UUID) ([]*entities.Subscription, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Subscription, int, error)
	SearchCollaborators(ctx context.Context, api entities.ApiIdentifier, partialEmail string) ([]entities.CollaboratorSearchResult, error)
}

// SubscriptionHandler handles subscription endpoints
type SubscriptionHandler struct {
	subUsecase SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subUsecase SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subUsecase: subUsecase}
}

// Subscribe subscribes an application to an API
// POST /api/v1/applications/:id/subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var api entities.ApiIdentifier
	if err := c.ShouldBindJSON(&api); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	sub, err := h.subUsecase.Subscribe(c.Request.Context(), id, api)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"subscription": sub})
}

// Unsubscribe removes a subscription. Succeeds even when the application
// was never subscribed.
// DELETE /api/v1/applications/:id/subscriptions
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var api entities.ApiIdentifier
	if err := c.ShouldBindJSON(&api); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.subUsecase.Unsubscribe(c.Request.Context(), id, api); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckSubscription reports whether an application is subscribed to an API
// GET /api/v1/applications/:id/subscriptions/check?context=...&version=...
func (h *SubscriptionHandler) CheckSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	api := entities.ApiIdentifier{
		Context: c.Query("context"),
		Version: c.Query("version"),
	}
	if api.Context == "" || api.Version == "" {
		response.Error(c, domainerrors.BadRequest("context and version are required"))
		return
	}

	subscribed, err := h.subUsecase.IsSubscribed(c.Request.Context(), id, api)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed})
}

// ListByApplication lists an application's subscriptions
// GET /api/v1/applications/:id/subscriptions
func (h *SubscriptionHandler) ListByApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	subs, err := h.subUsecase.ListByApplication(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subscriptions": subs})
}

// ListSubscriptions lists all subscriptions
// GET /api/v1/subscriptions
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	req := utils.NewPageRequest(page, limit)

	subs, total, err := h.subUsecase.List(c.Request.Context(), req.Size, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"subscriptions": subs,
		"pagination":    utils.PageInfoFor(int64(total), req),
	})
}

// SearchCollaborators finds collaborators of applications subscribed to an
// API by partial email match
// GET /api/v1/subscriptions/collaborators?context=...&version=...&email=...
func (h *SubscriptionHandler) SearchCollaborators(c *gin.Context) {
	api := entities.ApiIdentifier{
		Context: c.Query("context"),
		Version: c.Query("version"),
	}
	if api.Context == "" || api.Version == "" {
		response.Error(c, domainerrors.BadRequest("context and version are required"))
		return
	}

	results, err := h.subUsecase.SearchCollaborators(c.Request.Context(), api, c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"collaborators": results})
}
