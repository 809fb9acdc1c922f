package services

import "context"

// EmailClient dispatches notification emails. All sends are fire-and-forget
// from the core's perspective: failures are logged, never fatal.
type EmailClient interface {
	SendVerification(ctx context.Context, to, code, appName string) error
	SendCollaboratorAdded(ctx context.Context, to, appName string, admins []string) error
	SendCollaboratorRemoved(ctx context.Context, to, appName string, admins []string) error
}
