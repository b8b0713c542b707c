// Package ledger implements the synchronization engine between in-memory
// ledger state (expenses, budget, countdown for one scope) and a persistence
// backend. The engine owns the cache; consumers only ever see snapshots.
package ledger

import (
	"context"
	"fmt"
	"time"

	"tripledger/internal/models"
)

// Scope identifies the (user, travel-profile-or-personal) partition every
// expense, budget, and countdown row belongs to. A nil ProfileID means the
// personal scope.
type Scope struct {
	UserID    string
	ProfileID *string
}

// Key returns a stable map key for the scope.
func (s Scope) Key() string {
	if s.ProfileID == nil {
		return fmt.Sprintf("%s/personal", s.UserID)
	}
	return fmt.Sprintf("%s/%s", s.UserID, *s.ProfileID)
}

// State is the lifecycle state of an engine's cache for its scope.
// "Ready with an empty list" and "loading" are distinct, mutually exclusive
// states and must never be conflated by consumers.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// Data is the full ledger content for one scope as returned by a store.
type Data struct {
	Expenses  []models.Expense
	Budget    *models.Budget
	Countdown *models.TravelCountdown
}

// Snapshot is a point-in-time copy of an engine's cache. Slices and structs
// are copies; mutating a snapshot never affects the engine.
type Snapshot struct {
	State     State                   `json:"state"`
	Expenses  []models.Expense        `json:"expenses"`
	Budget    *models.Budget          `json:"budget,omitempty"`
	Countdown *models.TravelCountdown `json:"countdown,omitempty"`
}

// Store is the persistence backend behind an engine. Implementations must
// scope every operation to exactly the given scope: rows from other scopes
// must never leak into results.
type Store interface {
	// LoadLedger fetches the complete ledger for the scope.
	LoadLedger(ctx context.Context, scope Scope) (*Data, error)

	// CreateExpense persists a new expense and returns it with its assigned
	// id and timestamps.
	CreateExpense(ctx context.Context, scope Scope, category string, amount float64) (*models.Expense, error)

	// UpdateExpense mutates an existing expense's amount, and category when
	// non-nil, returning the updated record.
	UpdateExpense(ctx context.Context, scope Scope, id string, amount float64, category *string) (*models.Expense, error)

	// DeleteExpense permanently removes an expense.
	DeleteExpense(ctx context.Context, scope Scope, id string) error

	// ReplaceBudget removes any existing budget for the scope and inserts a
	// new one, so at most one budget row per scope ever survives. The two
	// steps are not transactional: a crash in between may transiently leave
	// zero budgets, never more than one.
	ReplaceBudget(ctx context.Context, scope Scope, amount float64) (*models.Budget, error)

	// RemoveBudget deletes the scope's budget if one exists.
	RemoveBudget(ctx context.Context, scope Scope) error

	// ReplaceCountdown deactivates all prior countdowns for the scope and
	// inserts the new active one.
	ReplaceCountdown(ctx context.Context, scope Scope, travelDate time.Time) (*models.TravelCountdown, error)

	// ClearCountdown deactivates the scope's active countdown.
	ClearCountdown(ctx context.Context, scope Scope) error
}
