package entities

import (
	"time"

	"github.com/google/uuid"
)

// ClientSecret is an issued application credential. Only the hash and a
// truncated display hint are retained; the plaintext is returned exactly
// once at creation time.
type ClientSecret struct {
	ID         uuid.UUID `json:"id"`
	SecretHint string    `json:"secretHint"` // last 4 characters of the plaintext
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AddClientSecretResponse carries the one-time plaintext alongside the
// updated credential set.
type AddClientSecretResponse struct {
	Secret      string      `json:"secret"`
	Credentials Credentials `json:"credentials"`
}
