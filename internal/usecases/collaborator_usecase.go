package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/internal/domain/services"
	"devhub.backend/pkg/logger"
)

// CollaboratorUsecase manages an application's team membership. Every
// mutation re-checks the admin invariant: an application can never be left
// without an administrator. Writes are version-conditioned so two editors
// working from the same snapshot cannot overwrite each other; the loser
// gets a conflict and retries against the fresh state.
type CollaboratorUsecase struct {
	appRepo     repositories.ApplicationRepository
	uow         repositories.UnitOfWork
	emailClient services.EmailClient
}

// NewCollaboratorUsecase creates a new collaborator usecase
func NewCollaboratorUsecase(
	appRepo repositories.ApplicationRepository,
	uow repositories.UnitOfWork,
	emailClient services.EmailClient,
) *CollaboratorUsecase {
	return &CollaboratorUsecase{
		appRepo:     appRepo,
		uow:         uow,
		emailClient: emailClient,
	}
}

// AddCollaborator adds a team member. Adding an existing member with the
// same role is a no-op; adding with a different role is a conflict, role
// changes go through FixCollaborator.
func (u *CollaboratorUsecase) AddCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domainerrors.BadRequest("email address is required")
	}
	if role != entities.RoleAdministrator && role != entities.RoleDeveloper {
		return nil, domainerrors.BadRequest("unknown collaborator role")
	}

	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	if existing, ok := app.FindCollaborator(email); ok {
		if existing.Role == role {
			return app, nil
		}
		return nil, domainerrors.Conflict("USER_ALREADY_EXISTS",
			"collaborator already exists with a different role", domainerrors.ErrUserAlreadyExists)
	}

	next := append(append([]entities.Collaborator{}, app.Collaborators...), entities.Collaborator{
		Email:  email,
		Role:   role,
		UserID: userID,
	})
	if err := u.replace(ctx, app, next); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Collaborator added",
		zap.String("application_id", appID.String()),
		zap.String("email", email),
		zap.String("role", string(role)),
	)
	u.notify(ctx, app, email, u.emailClient.SendCollaboratorAdded)

	return app, nil
}

// DeleteCollaborator removes a team member. Refused when the removal would
// leave the application without an administrator; of two concurrent
// removals on the same snapshot at most one succeeds.
func (u *CollaboratorUsecase) DeleteCollaborator(ctx context.Context, appID uuid.UUID, email string) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	target, ok := app.FindCollaborator(email)
	if !ok {
		return nil, domainerrors.NotFound("collaborator not found")
	}
	if target.Role == entities.RoleAdministrator && app.AdminCount() <= 1 {
		return nil, domainerrors.Conflict("APPLICATION_NEEDS_ADMIN",
			"application needs at least one administrator", domainerrors.ErrApplicationNeedsAdmin)
	}

	lower := strings.ToLower(email)
	next := make([]entities.Collaborator, 0, len(app.Collaborators)-1)
	for _, c := range app.Collaborators {
		if strings.ToLower(c.Email) == lower {
			continue
		}
		next = append(next, c)
	}
	if err := u.replace(ctx, app, next); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Collaborator removed",
		zap.String("application_id", appID.String()),
		zap.String("email", target.Email),
	)
	u.notify(ctx, app, target.Email, u.emailClient.SendCollaboratorRemoved)

	return app, nil
}

// FixCollaborator updates an existing collaborator's role and user binding.
// Demoting the last administrator is refused.
func (u *CollaboratorUsecase) FixCollaborator(ctx context.Context, appID uuid.UUID, email string, role entities.CollaboratorRole, userID *uuid.UUID) (*entities.Application, error) {
	if role != entities.RoleAdministrator && role != entities.RoleDeveloper {
		return nil, domainerrors.BadRequest("unknown collaborator role")
	}

	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, mapNotFound(err, "application not found")
	}

	target, ok := app.FindCollaborator(email)
	if !ok {
		return nil, domainerrors.NotFound("collaborator not found")
	}
	if target.Role == entities.RoleAdministrator && role != entities.RoleAdministrator && app.AdminCount() <= 1 {
		return nil, domainerrors.Conflict("APPLICATION_NEEDS_ADMIN",
			"application needs at least one administrator", domainerrors.ErrApplicationNeedsAdmin)
	}

	lower := strings.ToLower(email)
	next := make([]entities.Collaborator, len(app.Collaborators))
	for i, c := range app.Collaborators {
		if strings.ToLower(c.Email) == lower {
			c.Role = role
			if userID != nil {
				c.UserID = userID
			}
		}
		next[i] = c
	}
	if err := u.replace(ctx, app, next); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Collaborator updated",
		zap.String("application_id", appID.String()),
		zap.String("email", target.Email),
		zap.String("role", string(role)),
	)
	return app, nil
}

// replace swaps the collaborator set in one transaction, conditioned on the
// version the invariant checks were made against. On success the entity
// reflects the committed set and version.
func (u *CollaboratorUsecase) replace(ctx context.Context, app *entities.Application, next []entities.Collaborator) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.appRepo.ReplaceCollaborators(txCtx, app.ID, app.Version, next)
	})
	if err != nil {
		return mapWriteConflict(err, "application not found")
	}
	app.Collaborators = next
	app.Version++
	return nil
}

// notify emails the affected collaborator with the current administrator
// list. Best-effort.
func (u *CollaboratorUsecase) notify(ctx context.Context, app *entities.Application, to string, send func(ctx context.Context, to, appName string, admins []string) error) {
	var admins []string
	for _, a := range app.Admins() {
		admins = append(admins, a.Email)
	}
	if err := send(ctx, to, app.Name, admins); err != nil {
		logger.Warn(ctx, "Failed to send collaborator notification",
			zap.String("application_id", app.ID.String()),
			zap.String("to", to),
			zap.Error(err),
		)
	}
}
