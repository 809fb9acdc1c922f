package entities

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of an application
type State string

const (
	StateTesting                      State = "TESTING"
	StatePendingGatekeeperApproval    State = "PENDING_GATEKEEPER_APPROVAL"
	StatePendingRequesterVerification State = "PENDING_REQUESTER_VERIFICATION"
	StateProduction                   State = "PRODUCTION"
	StateVerificationExpired          State = "VERIFICATION_EXPIRED"
)

// legalTransitions defines the edges of the lifecycle state machine.
// The blocked flag is an orthogonal overlay, not a state.
var legalTransitions = map[State][]State{
	StateTesting:                      {StatePendingGatekeeperApproval},
	StatePendingGatekeeperApproval:    {StatePendingRequesterVerification, StateTesting},
	StatePendingRequesterVerification: {StateProduction, StateVerificationExpired},
	StateProduction:                   {},
	StateVerificationExpired:          {},
}

// IsValid reports whether s is a known lifecycle state
func (s State) IsValid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving from s to target
func (s State) CanTransitionTo(target State) bool {
	for _, t := range legalTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ApplicationState captures the current lifecycle state of an application,
// who requested it and when. For PENDING_REQUESTER_VERIFICATION it also
// carries the verification code and its issuance time.
type ApplicationState struct {
	State              State      `json:"state"`
	RequestedByEmail   string     `json:"requestedByEmail,omitempty"`
	ActorUserID        *uuid.UUID `json:"actorUserId,omitempty"`
	UpdatedOn          time.Time  `json:"updatedOn"`
	VerificationCode   string     `json:"-"`
	VerificationSentAt *time.Time `json:"-"`
}

// VerificationExpired reports whether the verification window of validity
// has elapsed since the code was issued.
func (s ApplicationState) VerificationExpired(validity time.Duration, now time.Time) bool {
	if s.State != StatePendingRequesterVerification || s.VerificationSentAt == nil {
		return false
	}
	return now.After(s.VerificationSentAt.Add(validity))
}

// StateTransition is a single append-only history record of a lifecycle move
type StateTransition struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"applicationId"`
	FromState     State      `json:"fromState"`
	ToState       State      `json:"toState"`
	ActorEmail    string     `json:"actorEmail,omitempty"`
	ActorUserID   *uuid.UUID `json:"actorUserId,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
