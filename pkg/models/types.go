package models

import (
	"time"
)

// Outcome is what a single check iteration ended in
type Outcome string

const (
	OutcomeWaiting Outcome = "waiting" // countdown still running
	OutcomeReset   Outcome = "reset"   // trial reset clicked
	OutcomeFailed  Outcome = "failed"  // iteration raised an error
)

// CheckResult records one iteration of the reset loop
type CheckResult struct {
	ID                string    `json:"id" db:"id"`
	StartedAt         time.Time `json:"started_at" db:"started_at"`
	Duration          int64     `json:"duration_ms" db:"duration_ms"`
	SecondsRemaining  int       `json:"seconds_remaining" db:"seconds_remaining"`
	SecondsAfterReset int       `json:"seconds_after_reset" db:"seconds_after_reset"`
	LoggedIn          bool      `json:"logged_in" db:"logged_in"`
	Outcome           Outcome   `json:"outcome" db:"outcome"`
	ErrorMessage      string    `json:"error_message,omitempty" db:"error_message"`
}

// ==================== Worker Types ====================

// ResetWorkflowInput configures the scheduled worker loop
type ResetWorkflowInput struct {
	IntervalSeconds    int `json:"interval_seconds"`
	TimeoutSeconds     int `json:"timeout_seconds"`
	Iterations         int `json:"iterations"` // 0 runs forever
	ContinueAsNewAfter int `json:"continue_as_new_after"`

	// Totals carried across continue-as-new
	Completed int `json:"completed"`
	Resets    int `json:"resets"`
	Failed    int `json:"failed"`
}

// ResetWorkflowResult summarizes a bounded worker run across all of its
// continue-as-new generations
type ResetWorkflowResult struct {
	Checks int `json:"checks"`
	Resets int `json:"resets"`
	Failed int `json:"failed"`
}

// ==================== WebSocket Message Types ====================

// WSMessage represents a WebSocket message for real-time updates
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
