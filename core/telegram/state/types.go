// Package state tracks per-user conversation state for multi-step flows.
// Each user owns an independent machine; sessions for different users never
// interact.
package state

import "context"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateAwaitingTemplateText indicates the admin edit flow is waiting for
	// the new response template.
	StateAwaitingTemplateText State = "awaiting_template_text"
)

// Manager stores the conversation state keyed by user identity.
type Manager interface {
	// State returns the user's current state, StateIdle when none is stored.
	State(ctx context.Context, userID int64) (State, error)
	// Set transitions the user to the given state.
	Set(ctx context.Context, userID int64, st State) error
	// Clear resets the user to StateIdle.
	Clear(ctx context.Context, userID int64) error
}

// InProgress reports whether the user has an active conversation. Backend
// failures degrade to "no conversation" so routing stays available.
func InProgress(ctx context.Context, mgr Manager, userID int64) bool {
	if mgr == nil {
		return false
	}
	st, err := mgr.State(ctx, userID)
	if err != nil {
		return false
	}
	return st != StateIdle
}
