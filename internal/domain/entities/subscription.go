package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApiIdentifier identifies an API by context and version
type ApiIdentifier struct {
	Context string `json:"context" binding:"required"`
	Version string `json:"version" binding:"required"`
}

// Subscription relates an application to an API. Existence is boolean;
// there are no additional attributes.
type Subscription struct {
	ApplicationID uuid.UUID     `json:"applicationId"`
	Api           ApiIdentifier `json:"apiIdentifier"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// CollaboratorSearchResult is a hit from a collaborator search across
// applications subscribed to an API.
type CollaboratorSearchResult struct {
	ApplicationID   uuid.UUID `json:"applicationId"`
	ApplicationName string    `json:"applicationName"`
	Email           string    `json:"emailAddress"`
}
