package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"devhub.backend/internal/domain/entities"
	domainerrors "devhub.backend/internal/domain/errors"
	"devhub.backend/internal/infrastructure/models"
	"devhub.backend/pkg/utils"
)

// ApplicationRepository implements application data operations
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create creates a new application with its collaborators and secrets
func (r *ApplicationRepository) Create(ctx context.Context, app *entities.Application) error {
	m, err := r.toModel(app)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByClientID gets an application by client ID
func (r *ApplicationRepository) GetByClientID(ctx context.Context, clientID string) (*entities.Application, error) {
	return r.getOne(ctx, "client_id = ?", clientID)
}

// GetByVerificationCode gets an application by its uplift verification code
func (r *ApplicationRepository) GetByVerificationCode(ctx context.Context, code string) (*entities.Application, error) {
	return r.getOne(ctx, "verification_code = ?", code)
}

func (r *ApplicationRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.Application, error) {
	var m models.Application
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Preload("Collaborators").
		Preload("ClientSecrets", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(query, arg).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// ExistsPromotedWithName reports whether another application with the same
// normalized name has already left TESTING
func (r *ApplicationRepository) ExistsPromotedWithName(ctx context.Context, normalizedName string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
		Where("normalized_name = ? AND id <> ? AND state <> ?", normalizedName, excludeID, string(entities.StateTesting)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateState performs a state-conditioned write. The row is updated only
// if the stored state still equals expected; a losing concurrent writer
// gets ErrInvalidStateTransition.
func (r *ApplicationRepository) UpdateState(ctx context.Context, id uuid.UUID, expected entities.State, next entities.ApplicationState) error {
	updates := map[string]interface{}{
		"state":              string(next.State),
		"state_requested_by": next.RequestedByEmail,
		"state_actor_id":     next.ActorUserID,
		"state_updated_on":   next.UpdatedOn,
		"updated_at":         time.Now(),
	}
	if next.VerificationCode != "" {
		updates["verification_code"] = next.VerificationCode
		updates["verification_sent_at"] = next.VerificationSentAt
	} else {
		updates["verification_code"] = nil
		updates["verification_sent_at"] = nil
	}

	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND state = ?", id, string(expected)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a lost race from a missing application
		var count int64
		if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrInvalidStateTransition
	}
	return nil
}

// SetBlocked flips the blocked flag
func (r *ApplicationRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	return r.updateFields(ctx, id, map[string]interface{}{"blocked": blocked})
}

// UpdateRateLimitTier persists a new rate-limit tier
func (r *ApplicationRepository) UpdateRateLimitTier(ctx context.Context, id uuid.UUID, tier entities.RateLimitTier) error {
	return r.updateFields(ctx, id, map[string]interface{}{"rate_limit_tier": string(tier)})
}

// UpdateName renames an application and refreshes its normalized name
func (r *ApplicationRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"name":            name,
		"normalized_name": entities.NormalizeName(name),
	})
}

// UpdateIPAllowlist persists a new IP allowlist
func (r *ApplicationRepository) UpdateIPAllowlist(ctx context.Context, id uuid.UUID, allowlist []string) error {
	encoded, err := json.Marshal(allowlist)
	if err != nil {
		return err
	}
	return r.updateFields(ctx, id, map[string]interface{}{"ip_allowlist": string(encoded)})
}

func (r *ApplicationRepository) updateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// bumpVersion performs a version-conditioned write on the application row.
// The bump succeeds only if the stored version still equals expected; a
// losing concurrent writer gets ErrConcurrentModification. Callers run the
// bump and the dependent child-row writes inside one UnitOfWork so the pair
// commits or rolls back together.
func (r *ApplicationRepository) bumpVersion(ctx context.Context, id uuid.UUID, expected int64) error {
	db := GetDB(ctx, r.db).WithContext(ctx)
	res := db.Model(&models.Application{}).
		Where("id = ? AND version = ?", id, expected).
		Updates(map[string]interface{}{"version": expected + 1, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Application{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrConcurrentModification
	}
	return nil
}

// ReplaceCollaborators swaps the collaborator set of an application. The
// write is conditioned on expectedVersion.
func (r *ApplicationRepository) ReplaceCollaborators(ctx context.Context, id uuid.UUID, expectedVersion int64, collaborators []entities.Collaborator) error {
	if err := r.bumpVersion(ctx, id, expectedVersion); err != nil {
		return err
	}
	db := GetDB(ctx, r.db).WithContext(ctx)
	if err := db.Where("application_id = ?", id).Delete(&models.Collaborator{}).Error; err != nil {
		return err
	}
	for _, c := range collaborators {
		m := collaboratorToModel(id, c)
		if err := db.Create(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddClientSecret appends a client secret to the application's ordered
// list. The write is conditioned on expectedVersion.
func (r *ApplicationRepository) AddClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secret *entities.ClientSecret) error {
	if err := r.bumpVersion(ctx, id, expectedVersion); err != nil {
		return err
	}
	db := GetDB(ctx, r.db).WithContext(ctx)

	var maxPos int
	row := db.Model(&models.ClientSecret{}).
		Where("application_id = ?", id).
		Select("COALESCE(MAX(position), 0)").
		Row()
	if err := row.Scan(&maxPos); err != nil {
		return err
	}

	m := &models.ClientSecret{
		ID:            secret.ID,
		ApplicationID: id,
		SecretHint:    secret.SecretHint,
		SecretHash:    secret.SecretHash,
		Position:      maxPos + 1,
		CreatedAt:     secret.CreatedAt,
	}
	return db.Create(m).Error
}

// DeleteClientSecret removes a client secret by ID. The write is
// conditioned on expectedVersion.
func (r *ApplicationRepository) DeleteClientSecret(ctx context.Context, id uuid.UUID, expectedVersion int64, secretID uuid.UUID) error {
	if err := r.bumpVersion(ctx, id, expectedVersion); err != nil {
		return err
	}
	res := GetDB(ctx, r.db).WithContext(ctx).
		Where("application_id = ? AND id = ?", id, secretID).
		Delete(&models.ClientSecret{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete soft-deletes an application and hard-deletes its children
func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db).WithContext(ctx)
	if err := db.Where("application_id = ?", id).Delete(&models.Collaborator{}).Error; err != nil {
		return err
	}
	if err := db.Where("application_id = ?", id).Delete(&models.ClientSecret{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns applications with pagination
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*entities.Application, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Application{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Collaborators").
		Preload("ClientSecrets", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []models.Application
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	apps := make([]*entities.Application, 0, len(ms))
	for i := range ms {
		app, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, int(total), nil
}

// FindWithExpiredVerification returns applications whose verification
// window elapsed while waiting in PENDING_REQUESTER_VERIFICATION
func (r *ApplicationRepository) FindWithExpiredVerification(ctx context.Context, validity time.Duration, now time.Time) ([]*entities.Application, error) {
	cutoff := now.Add(-validity)
	var ms []models.Application
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("state = ? AND verification_sent_at < ?", string(entities.StatePendingRequesterVerification), cutoff).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	apps := make([]*entities.Application, 0, len(ms))
	for i := range ms {
		app, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// AllTiersAndKeys lists (name, serverToken, tier) for every application
func (r *ApplicationRepository) AllTiersAndKeys(ctx context.Context) ([]entities.GatewayAssignment, error) {
	var ms []models.Application
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Select("name", "server_token", "rate_limit_tier").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	assignments := make([]entities.GatewayAssignment, 0, len(ms))
	for _, m := range ms {
		assignments = append(assignments, entities.GatewayAssignment{
			ApplicationName: m.Name,
			ServerToken:     m.ServerToken,
			Tier:            entities.RateLimitTier(m.RateLimitTier),
		})
	}
	return assignments, nil
}

// Mapping helpers

func (r *ApplicationRepository) toModel(app *entities.Application) (*models.Application, error) {
	allowlist, err := json.Marshal(app.IPAllowlist)
	if err != nil {
		return nil, err
	}
	checkInfo, err := json.Marshal(app.CheckInformation)
	if err != nil {
		return nil, err
	}

	version := app.Version
	if version == 0 {
		version = 1
	}
	m := &models.Application{
		ID:               app.ID,
		Version:          version,
		Name:             app.Name,
		NormalizedName:   entities.NormalizeName(app.Name),
		Description:      app.Description,
		Environment:      string(app.Environment),
		AccessType:       string(app.AccessType),
		State:            string(app.State.State),
		StateRequestedBy: app.State.RequestedByEmail,
		StateActorID:     app.State.ActorUserID,
		StateUpdatedOn:   app.State.UpdatedOn,
		Blocked:          app.Blocked,
		RateLimitTier:    string(app.RateLimitTier),
		ClientID:         app.Credentials.ClientID,
		ServerToken:      app.Credentials.ServerToken,
		IPAllowlist:      string(allowlist),
		CheckInformation: string(checkInfo),
		CreatedAt:        app.CreatedOn,
	}
	if app.State.VerificationCode != "" {
		code := app.State.VerificationCode
		m.VerificationCode = &code
		m.VerificationSentAt = app.State.VerificationSentAt
	}
	if app.LastAccess.Valid {
		t := app.LastAccess.Time
		m.LastAccess = &t
	}
	for _, c := range app.Collaborators {
		m.Collaborators = append(m.Collaborators, *collaboratorToModel(app.ID, c))
	}
	for i, s := range app.Credentials.ClientSecrets {
		m.ClientSecrets = append(m.ClientSecrets, models.ClientSecret{
			ID:            s.ID,
			ApplicationID: app.ID,
			SecretHint:    s.SecretHint,
			SecretHash:    s.SecretHash,
			Position:      i + 1,
			CreatedAt:     s.CreatedAt,
		})
	}
	return m, nil
}

func (r *ApplicationRepository) toEntity(m *models.Application) (*entities.Application, error) {
	var allowlist []string
	if m.IPAllowlist != "" {
		if err := json.Unmarshal([]byte(m.IPAllowlist), &allowlist); err != nil {
			return nil, err
		}
	}
	var checkInfo entities.CheckInformation
	if m.CheckInformation != "" {
		if err := json.Unmarshal([]byte(m.CheckInformation), &checkInfo); err != nil {
			return nil, err
		}
	}

	state := entities.ApplicationState{
		State:            entities.State(m.State),
		RequestedByEmail: m.StateRequestedBy,
		ActorUserID:      m.StateActorID,
		UpdatedOn:        m.StateUpdatedOn,
	}
	if m.VerificationCode != nil {
		state.VerificationCode = *m.VerificationCode
		state.VerificationSentAt = m.VerificationSentAt
	}

	app := &entities.Application{
		ID:               m.ID,
		Version:          m.Version,
		Name:             m.Name,
		Description:      m.Description,
		Environment:      entities.Environment(m.Environment),
		AccessType:       entities.AccessType(m.AccessType),
		State:            state,
		Blocked:          m.Blocked,
		RateLimitTier:    entities.RateLimitTier(m.RateLimitTier),
		IPAllowlist:      allowlist,
		CheckInformation: checkInfo,
		CreatedOn:        m.CreatedAt,
		Credentials: entities.Credentials{
			ClientID:    m.ClientID,
			ServerToken: m.ServerToken,
		},
	}
	if m.LastAccess != nil {
		app.LastAccess = null.TimeFrom(*m.LastAccess)
	}
	for _, c := range m.Collaborators {
		app.Collaborators = append(app.Collaborators, entities.Collaborator{
			Email:  c.Email,
			Role:   entities.CollaboratorRole(c.Role),
			UserID: c.UserID,
		})
	}
	for _, s := range m.ClientSecrets {
		app.Credentials.ClientSecrets = append(app.Credentials.ClientSecrets, entities.ClientSecret{
			ID:         s.ID,
			SecretHint: s.SecretHint,
			SecretHash: s.SecretHash,
			CreatedAt:  s.CreatedAt,
		})
	}
	return app, nil
}

func collaboratorToModel(appID uuid.UUID, c entities.Collaborator) *models.Collaborator {
	return &models.Collaborator{
		ID:            utils.NewTimeOrderedID(),
		ApplicationID: appID,
		Email:         c.Email,
		EmailLower:    strings.ToLower(c.Email),
		Role:          string(c.Role),
		UserID:        c.UserID,
	}
}
