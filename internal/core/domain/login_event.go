package domain

import "time"

// LoginOutcome classifies a decided login attempt.
type LoginOutcome string

const (
	OutcomeSucceeded          LoginOutcome = "succeeded"
	OutcomeInvalidCredentials LoginOutcome = "invalid_credentials"
	OutcomeAccountLocked      LoginOutcome = "account_locked"
	OutcomeAccountNotActive   LoginOutcome = "account_not_active"
)

// LoginEvent is the audit record of one decided login attempt.
type LoginEvent struct {
	Email   string       `json:"email" bson:"email"`
	Role    Role         `json:"role,omitempty" bson:"role,omitempty"`
	Outcome LoginOutcome `json:"outcome" bson:"outcome"`
	// Locked is set when this attempt opened a new lock window.
	Locked bool      `json:"locked,omitempty" bson:"locked,omitempty"`
	At     time.Time `json:"at" bson:"at"`
}
