package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/domain/repositories"
	"devhub.backend/internal/domain/services"
	"devhub.backend/pkg/crypto"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/metrics"
	"devhub.backend/pkg/utils"
)

var (
	lifecycleNow       = time.Now
	generateVerifyCode = crypto.GenerateVerificationCode
)

// LifecycleUsecase drives the application lifecycle state machine:
// uplift request and approval, requester verification, blocking, and the
// stale-verification sweep.
type LifecycleUsecase struct {
	appRepo     repositories.ApplicationRepository
	historyRepo repositories.StateHistoryRepository
	uow         repositories.UnitOfWork
	emailClient services.EmailClient
	validity    time.Duration
}

// NewLifecycleUsecase creates a new lifecycle usecase
func NewLifecycleUsecase(
	appRepo repositories.ApplicationRepository,
	historyRepo repositories.StateHistoryRepository,
	uow repositories.UnitOfWork,
	emailClient services.EmailClient,
	verificationValidity time.Duration,
) *LifecycleUsecase {
	return &LifecycleUsecase{
		appRepo:     appRepo,
		historyRepo: historyRepo,
		uow:         uow,
		emailClient: emailClient,
		validity:    verificationValidity,
	}
}

// RequestUplift moves a TESTING application to PENDING_GATEKEEPER_APPROVAL.
// A non-empty name renames the application as part of the same request,
// letting the requester fix the name it will carry into production. Fails
// if another application with the same normalized name has already been
// promoted.
func (u *LifecycleUsecase) RequestUplift(ctx context.Context, appID uuid.UUID, name, requestedByEmail string) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, u.mapGetError(err)
	}
	if app.State.State != entities.StateTesting {
		return nil, invalidTransition(app.State.State, entities.StatePendingGatekeeperApproval)
	}

	rename := ""
	effectiveName := app.Name
	if trimmed := strings.TrimSpace(name); trimmed != "" && trimmed != app.Name {
		rename = trimmed
		effectiveName = trimmed
	}

	taken, err := u.appRepo.ExistsPromotedWithName(ctx, entities.NormalizeName(effectiveName), app.ID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if taken {
		return nil, domainerrors.Conflict("APPLICATION_ALREADY_EXISTS",
			"an application with this name already exists", domainerrors.ErrApplicationAlreadyExists)
	}

	next := entities.ApplicationState{
		State:            entities.StatePendingGatekeeperApproval,
		RequestedByEmail: requestedByEmail,
		UpdatedOn:        lifecycleNow().UTC(),
	}
	if err := u.transition(ctx, app, entities.StateTesting, next, requestedByEmail, nil, "", rename); err != nil {
		return nil, err
	}

	metrics.UpliftTransitions.WithLabelValues(string(next.State), "success").Inc()
	app.State = next
	app.Name = effectiveName
	return app, nil
}

// ApproveUplift moves a PENDING_GATEKEEPER_APPROVAL application to
// PENDING_REQUESTER_VERIFICATION, issues a verification code and emails it
// to the requester.
func (u *LifecycleUsecase) ApproveUplift(ctx context.Context, appID uuid.UUID, gatekeeperID uuid.UUID, gatekeeperEmail string) (*entities.Application, error) {
	app, err := u.loadForGatekeeper(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.State.State != entities.StatePendingGatekeeperApproval {
		return nil, invalidTransition(app.State.State, entities.StatePendingRequesterVerification)
	}

	code, err := generateVerifyCode()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := lifecycleNow().UTC()
	next := entities.ApplicationState{
		State:              entities.StatePendingRequesterVerification,
		RequestedByEmail:   app.State.RequestedByEmail,
		ActorUserID:        &gatekeeperID,
		UpdatedOn:          now,
		VerificationCode:   code,
		VerificationSentAt: &now,
	}
	if err := u.transition(ctx, app, entities.StatePendingGatekeeperApproval, next, gatekeeperEmail, &gatekeeperID, "", ""); err != nil {
		return nil, err
	}
	metrics.UpliftTransitions.WithLabelValues(string(next.State), "success").Inc()

	// best-effort: the state change is already committed
	if err := u.emailClient.SendVerification(ctx, app.State.RequestedByEmail, code, app.Name); err != nil {
		logger.Warn(ctx, "Failed to send verification email",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}

	app.State = next
	return app, nil
}

// RejectUplift reverts a PENDING_GATEKEEPER_APPROVAL application to
// TESTING, recording the gatekeeper's reason.
func (u *LifecycleUsecase) RejectUplift(ctx context.Context, appID uuid.UUID, gatekeeperID uuid.UUID, gatekeeperEmail, reason string) (*entities.Application, error) {
	app, err := u.loadForGatekeeper(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.State.State != entities.StatePendingGatekeeperApproval {
		return nil, invalidTransition(app.State.State, entities.StateTesting)
	}

	next := entities.ApplicationState{
		State:            entities.StateTesting,
		RequestedByEmail: app.State.RequestedByEmail,
		ActorUserID:      &gatekeeperID,
		UpdatedOn:        lifecycleNow().UTC(),
	}
	if err := u.transition(ctx, app, entities.StatePendingGatekeeperApproval, next, gatekeeperEmail, &gatekeeperID, reason, ""); err != nil {
		return nil, err
	}

	metrics.UpliftTransitions.WithLabelValues(string(next.State), "rejected").Inc()
	app.State = next
	return app, nil
}

// ResendVerification re-sends the verification email using the existing
// code. The code is not rotated.
func (u *LifecycleUsecase) ResendVerification(ctx context.Context, appID uuid.UUID) error {
	app, err := u.loadForGatekeeper(ctx, appID)
	if err != nil {
		return err
	}
	if app.State.State != entities.StatePendingRequesterVerification {
		return invalidTransition(app.State.State, entities.StatePendingRequesterVerification)
	}

	if err := u.emailClient.SendVerification(ctx, app.State.RequestedByEmail, app.State.VerificationCode, app.Name); err != nil {
		logger.Warn(ctx, "Failed to resend verification email",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// VerifyUplift looks up the application owning the code and promotes it to
// PRODUCTION. Unknown and expired codes fail alike so a caller cannot
// probe which case it hit.
func (u *LifecycleUsecase) VerifyUplift(ctx context.Context, code string) (*entities.Application, error) {
	invalidCode := domainerrors.NewAppError(400, "INVALID_UPLIFT_VERIFICATION_CODE",
		"invalid uplift verification code", domainerrors.ErrInvalidVerificationCode)

	if code == "" {
		return nil, invalidCode
	}

	app, err := u.appRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, invalidCode
		}
		return nil, domainerrors.InternalError(err)
	}
	if app.State.State != entities.StatePendingRequesterVerification {
		return nil, invalidCode
	}
	if app.State.VerificationExpired(u.validity, lifecycleNow().UTC()) {
		return nil, invalidCode
	}

	next := entities.ApplicationState{
		State:            entities.StateProduction,
		RequestedByEmail: app.State.RequestedByEmail,
		UpdatedOn:        lifecycleNow().UTC(),
	}
	if err := u.transition(ctx, app, entities.StatePendingRequesterVerification, next, app.State.RequestedByEmail, nil, "", ""); err != nil {
		return nil, err
	}

	metrics.UpliftTransitions.WithLabelValues(string(next.State), "success").Inc()
	app.State = next
	return app, nil
}

// BlockApplication sets the blocked flag. Idempotent; returns the
// resulting flag value.
func (u *LifecycleUsecase) BlockApplication(ctx context.Context, appID uuid.UUID) (bool, error) {
	return u.setBlocked(ctx, appID, true)
}

// UnblockApplication clears the blocked flag
func (u *LifecycleUsecase) UnblockApplication(ctx context.Context, appID uuid.UUID) (bool, error) {
	return u.setBlocked(ctx, appID, false)
}

func (u *LifecycleUsecase) setBlocked(ctx context.Context, appID uuid.UUID, blocked bool) (bool, error) {
	if err := u.appRepo.SetBlocked(ctx, appID, blocked); err != nil {
		if err == domainerrors.ErrNotFound {
			return false, domainerrors.NotFound("application not found")
		}
		return false, domainerrors.InternalError(err)
	}
	return blocked, nil
}

// StateHistory returns the append-only transition log of an application
func (u *LifecycleUsecase) StateHistory(ctx context.Context, appID uuid.UUID) ([]*entities.StateTransition, error) {
	if _, err := u.appRepo.GetByID(ctx, appID); err != nil {
		return nil, u.mapGetError(err)
	}
	history, err := u.historyRepo.ListByApplication(ctx, appID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return history, nil
}

// ExpireStaleVerifications reverts applications whose verification window
// has elapsed to VERIFICATION_EXPIRED. Invoked by the background sweep;
// returns the number of applications expired.
func (u *LifecycleUsecase) ExpireStaleVerifications(ctx context.Context) (int, error) {
	stale, err := u.appRepo.FindWithExpiredVerification(ctx, u.validity, lifecycleNow().UTC())
	if err != nil {
		return 0, domainerrors.InternalError(err)
	}

	expired := 0
	for _, app := range stale {
		next := entities.ApplicationState{
			State:            entities.StateVerificationExpired,
			RequestedByEmail: app.State.RequestedByEmail,
			UpdatedOn:        lifecycleNow().UTC(),
		}
		err := u.transition(ctx, app, entities.StatePendingRequesterVerification, next, "", nil, "verification window elapsed", "")
		if err != nil {
			// another writer may have verified or expired it concurrently
			logger.Warn(ctx, "Skipping application during expiry sweep",
				zap.String("application_id", app.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}
	return expired, nil
}

// transition performs the CAS state write and the history append in one
// transaction. A non-empty rename is applied in the same transaction so
// the new name commits with the state change or not at all.
func (u *LifecycleUsecase) transition(
	ctx context.Context,
	app *entities.Application,
	expected entities.State,
	next entities.ApplicationState,
	actorEmail string,
	actorID *uuid.UUID,
	reason string,
	rename string,
) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.appRepo.UpdateState(txCtx, app.ID, expected, next); err != nil {
			return err
		}
		if rename != "" {
			if err := u.appRepo.UpdateName(txCtx, app.ID, rename); err != nil {
				return err
			}
		}
		return u.historyRepo.Append(txCtx, &entities.StateTransition{
			ID:            utils.NewTimeOrderedID(),
			ApplicationID: app.ID,
			FromState:     expected,
			ToState:       next.State,
			ActorEmail:    actorEmail,
			ActorUserID:   actorID,
			Reason:        reason,
			CreatedAt:     next.UpdatedOn,
		})
	})
	if err != nil {
		if err == domainerrors.ErrInvalidStateTransition {
			metrics.UpliftTransitions.WithLabelValues(string(next.State), "conflict").Inc()
			return invalidTransition(expected, next.State)
		}
		if err == domainerrors.ErrNotFound {
			return domainerrors.NotFound("application not found")
		}
		return domainerrors.InternalError(err)
	}
	return nil
}

// loadForGatekeeper loads an application and refuses gatekeeper-mediated
// transitions on blocked applications.
func (u *LifecycleUsecase) loadForGatekeeper(ctx context.Context, appID uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, appID)
	if err != nil {
		return nil, u.mapGetError(err)
	}
	if app.Blocked {
		return nil, domainerrors.NewAppError(403, "APPLICATION_BLOCKED",
			"application is blocked", domainerrors.ErrApplicationBlocked)
	}
	return app, nil
}

func (u *LifecycleUsecase) mapGetError(err error) error {
	if err == domainerrors.ErrNotFound {
		return domainerrors.NotFound("application not found")
	}
	return domainerrors.InternalError(err)
}

func invalidTransition(from, to entities.State) *domainerrors.AppError {
	return domainerrors.NewAppError(409, "INVALID_STATE_TRANSITION",
		fmt.Sprintf("cannot transition from %s to %s", from, to),
		domainerrors.ErrInvalidStateTransition)
}
