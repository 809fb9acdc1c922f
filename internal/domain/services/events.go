package services

import (
	"context"

	"devhub.backend/internal/domain/entities"
)

// EventsClient emits audit/platform events. Emission is best-effort,
// at-least-once: the return value indicates delivery, and a false return
// never rolls back the mutation that triggered it.
type EventsClient interface {
	SendSubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool
	SendUnsubscribed(ctx context.Context, app *entities.Application, api entities.ApiIdentifier) bool
}
