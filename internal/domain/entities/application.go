package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AccessType is the capability variant of an application. The variants are
// mutually exclusive.
type AccessType string

const (
	AccessTypeStandard   AccessType = "STANDARD"
	AccessTypePrivileged AccessType = "PRIVILEGED"
	AccessTypeROPC       AccessType = "ROPC"
)

// IsValid reports whether the access type is a known variant
func (a AccessType) IsValid() bool {
	switch a {
	case AccessTypeStandard, AccessTypePrivileged, AccessTypeROPC:
		return true
	}
	return false
}

// Environment distinguishes production from sandbox registrations
type Environment string

const (
	EnvironmentProduction Environment = "PRODUCTION"
	EnvironmentSandbox    Environment = "SANDBOX"
)

// RateLimitTier is the gateway usage-plan tier stored on the application
type RateLimitTier string

const (
	TierBronze   RateLimitTier = "BRONZE"
	TierSilver   RateLimitTier = "SILVER"
	TierGold     RateLimitTier = "GOLD"
	TierPlatinum RateLimitTier = "PLATINUM"
)

// IsValid reports whether the tier is a known tier
func (t RateLimitTier) IsValid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// CollaboratorRole is the role a collaborator holds on an application
type CollaboratorRole string

const (
	RoleAdministrator CollaboratorRole = "ADMINISTRATOR"
	RoleDeveloper     CollaboratorRole = "DEVELOPER"
)

// Collaborator is a member of an application's team
type Collaborator struct {
	Email  string           `json:"emailAddress"`
	Role   CollaboratorRole `json:"role"`
	UserID *uuid.UUID       `json:"userId,omitempty"`
}

// Credentials holds the client identity of an application. ClientID is the
// public identifier, ServerToken identifies the application at the gateway.
type Credentials struct {
	ClientID      string         `json:"clientId"`
	ServerToken   string         `json:"serverToken"`
	ClientSecrets []ClientSecret `json:"clientSecrets"`
}

// CheckInformation records terms-of-use agreement state
type CheckInformation struct {
	Confirmed            bool                  `json:"confirmed"`
	TermsOfUseAgreements []TermsOfUseAgreement `json:"termsOfUseAgreements"`
}

// TermsOfUseAgreement is a single agreement record
type TermsOfUseAgreement struct {
	Email     string    `json:"emailAddress"`
	TimeStamp time.Time `json:"timeStamp"`
	Version   string    `json:"version"`
}

// Application is a third-party API consumer registration. Version counts
// collaborator and credential mutations; writes to those sets are
// conditioned on it so concurrent editors cannot overwrite each other.
type Application struct {
	ID               uuid.UUID        `json:"id"`
	Version          int64            `json:"-"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Environment      Environment      `json:"deployedTo"`
	AccessType       AccessType       `json:"accessType"`
	State            ApplicationState `json:"state"`
	Blocked          bool             `json:"blocked"`
	RateLimitTier    RateLimitTier    `json:"rateLimitTier"`
	Collaborators    []Collaborator   `json:"collaborators"`
	Credentials      Credentials      `json:"credentials"`
	IPAllowlist      []string         `json:"ipAllowlist,omitempty"`
	CheckInformation CheckInformation `json:"checkInformation"`
	CreatedOn        time.Time        `json:"createdOn"`
	LastAccess       null.Time        `json:"lastAccess"`
}

// GatewayAssignment is the slice of an application the gateway
// reconciliation sweep needs: its name, server token and stored tier.
type GatewayAssignment struct {
	ApplicationName string        `json:"applicationName"`
	ServerToken     string        `json:"serverToken"`
	Tier            RateLimitTier `json:"rateLimitTier"`
}

// NormalizeName lowercases a name and strips all spaces; used for the
// production name-collision check on uplift.
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// AdminCount returns the number of administrator collaborators
func (a *Application) AdminCount() int {
	n := 0
	for _, c := range a.Collaborators {
		if c.Role == RoleAdministrator {
			n++
		}
	}
	return n
}

// FindCollaborator returns the collaborator with the given email,
// compared case-insensitively.
func (a *Application) FindCollaborator(email string) (Collaborator, bool) {
	target := strings.ToLower(email)
	for _, c := range a.Collaborators {
		if strings.ToLower(c.Email) == target {
			return c, true
		}
	}
	return Collaborator{}, false
}

// Admins returns the administrator collaborators
func (a *Application) Admins() []Collaborator {
	var admins []Collaborator
	for _, c := range a.Collaborators {
		if c.Role == RoleAdministrator {
			admins = append(admins, c)
		}
	}
	return admins
}
