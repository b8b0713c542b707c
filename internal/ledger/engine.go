package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/metrics"
	"tripledger/internal/models"
	"tripledger/internal/retry"
)

const (
	// defaultLoadTimeout is the hard cap on a single load, reported as
	// LOAD_TIMEOUT rather than a generic failure.
	defaultLoadTimeout = 30 * time.Second

	// loadDebounce collapses bursts of forced reloads for the same scope.
	loadDebounce = 300 * time.Millisecond

	// loadAttempts counts the initial try plus two retries.
	loadAttempts   = 3
	loadRetryDelay = time.Second
)

// Engine reconciles the in-memory ledger cache for one scope with its store.
// All reads and writes for the scope flow through it. The cache transitions
// uninitialized → loading → ready; ClearData drops back to uninitialized
// synchronously so stale data is never visible across a scope switch.
type Engine struct {
	scope   Scope
	store   Store
	policy  retry.Policy
	timeout time.Duration

	mu         sync.Mutex
	state      State
	expenses   []models.Expense
	budget     *models.Budget
	countdown  *models.TravelCountdown
	inflight   *loadCall
	lastLoaded time.Time
}

type loadCall struct {
	done chan struct{}
	err  error
}

// NewEngine creates an engine for the scope backed by the store. The retry
// policy retries transient load failures with a fixed delay and never retries
// the not-authenticated outcome.
func NewEngine(scope Scope, store Store) *Engine {
	return &Engine{
		scope:   scope,
		store:   store,
		state:   StateUninitialized,
		timeout: defaultLoadTimeout,
		policy: retry.Policy{
			Attempts: loadAttempts,
			Delay:    loadRetryDelay,
			Exempt:   []error{apperrors.ErrUnauthorized},
		},
	}
}

// Scope returns the scope this engine serves.
func (e *Engine) Scope() Scope { return e.scope }

// State returns the current cache state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load fetches the scope's ledger from the store, replacing the cache
// wholesale on success. Concurrent calls join the in-flight load; a burst of
// forced reloads within the debounce window after a successful load is a
// no-op. On failure the previous cache (or an empty ready state on first
// load) is kept so consumers can keep rendering what they had.
func (e *Engine) Load(ctx context.Context, force bool) error {
	e.mu.Lock()
	if call := e.inflight; call != nil {
		e.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			// The joining caller gave up before the in-flight load settled.
			// Report it inside the error taxonomy like any other load outcome.
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return apperrors.Wrap(apperrors.ErrLoadTimeout, ctx.Err())
			}
			return apperrors.Wrap(apperrors.ErrLoadFailed, ctx.Err())
		}
	}
	if e.state == StateReady && !force {
		e.mu.Unlock()
		return nil
	}
	if e.state == StateReady && time.Since(e.lastLoaded) < loadDebounce {
		e.mu.Unlock()
		return nil
	}
	call := &loadCall{done: make(chan struct{})}
	e.inflight = call
	e.state = StateLoading
	e.mu.Unlock()

	err := e.doLoad(ctx)

	e.mu.Lock()
	call.err = err
	e.inflight = nil
	e.state = StateReady
	if err == nil {
		e.lastLoaded = time.Now()
	}
	e.mu.Unlock()
	close(call.done)

	return err
}

func (e *Engine) doLoad(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var data *Data
	err := e.policy.Do(ctx, func() error {
		d, loadErr := e.store.LoadLedger(ctx, e.scope)
		if loadErr != nil {
			return loadErr
		}
		data = d
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperrors.Wrap(apperrors.ErrLoadTimeout, err)
		}
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}
		return apperrors.Wrap(apperrors.ErrLoadFailed, err)
	}

	e.mu.Lock()
	e.expenses = data.Expenses
	e.budget = data.Budget
	e.countdown = data.Countdown
	e.mu.Unlock()
	return nil
}

// AddExpense validates locally, persists, and prepends the confirmed record
// (server-assigned id and timestamps included) to the cache. A validation
// failure never contacts the store; a store failure never touches the cache.
func (e *Engine) AddExpense(ctx context.Context, category string, amount float64) (*models.Expense, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.ErrEmptyCategory
	}
	if amount < 0 {
		return nil, apperrors.ErrNegativeAmount
	}

	expense, err := e.store.CreateExpense(ctx, e.scope, category, amount)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.expenses = append([]models.Expense{*expense}, e.expenses...)
	e.mu.Unlock()
	return expense, nil
}

// UpdateExpense mutates an expense's amount, and category when non-nil.
// Passing a nil category leaves the stored category untouched; validating a
// non-nil category is the caller's responsibility.
func (e *Engine) UpdateExpense(ctx context.Context, id string, amount float64, category *string) (*models.Expense, error) {
	if amount < 0 {
		return nil, apperrors.ErrNegativeAmount
	}

	expense, err := e.store.UpdateExpense(ctx, e.scope, id, amount, category)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for i := range e.expenses {
		if e.expenses[i].ID == id {
			e.expenses[i] = *expense
			break
		}
	}
	e.mu.Unlock()
	return expense, nil
}

// DeleteExpense removes the expense from the store and, on success, from the
// cache. Deletion is permanent.
func (e *Engine) DeleteExpense(ctx context.Context, id string) error {
	if err := e.store.DeleteExpense(ctx, e.scope, id); err != nil {
		return err
	}

	e.mu.Lock()
	for i := range e.expenses {
		if e.expenses[i].ID == id {
			e.expenses = append(e.expenses[:i], e.expenses[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return nil
}

// SetBudget replaces the scope's budget. The amount must be positive; a
// budget of zero is not a valid way to express "no budget".
func (e *Engine) SetBudget(ctx context.Context, amount float64) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.ErrNonPositiveBudget
	}

	budget, err := e.store.ReplaceBudget(ctx, e.scope, amount)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.budget = budget
	e.mu.Unlock()
	return budget, nil
}

// RemoveBudget clears the scope's budget.
func (e *Engine) RemoveBudget(ctx context.Context) error {
	if err := e.store.RemoveBudget(ctx, e.scope); err != nil {
		return err
	}

	e.mu.Lock()
	e.budget = nil
	e.mu.Unlock()
	return nil
}

// SetCountdown replaces the scope's active countdown. Dates not strictly in
// the future are rejected without touching the store, leaving any existing
// countdown untouched.
func (e *Engine) SetCountdown(ctx context.Context, travelDate time.Time) (*models.TravelCountdown, error) {
	if !travelDate.After(time.Now()) {
		return nil, apperrors.ErrPastTravelDate
	}

	countdown, err := e.store.ReplaceCountdown(ctx, e.scope, travelDate)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.countdown = countdown
	e.mu.Unlock()
	return countdown, nil
}

// ClearCountdown deactivates the scope's active countdown.
func (e *Engine) ClearCountdown(ctx context.Context) error {
	if err := e.store.ClearCountdown(ctx, e.scope); err != nil {
		return err
	}

	e.mu.Lock()
	e.countdown = nil
	e.mu.Unlock()
	return nil
}

// ClearData synchronously empties the cache and resets the engine to
// uninitialized. Used when switching scopes so the previous scope's data is
// never visible, even momentarily.
func (e *Engine) ClearData() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateUninitialized
	e.expenses = nil
	e.budget = nil
	e.countdown = nil
	e.lastLoaded = time.Time{}
}

// Snapshot returns a copy of the current cache.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:    e.state,
		Expenses: make([]models.Expense, len(e.expenses)),
	}
	copy(snap.Expenses, e.expenses)
	if e.budget != nil {
		b := *e.budget
		snap.Budget = &b
	}
	if e.countdown != nil {
		c := *e.countdown
		snap.Countdown = &c
	}
	return snap
}

// Summary computes the derived metrics for the current cache.
func (e *Engine) Summary() metrics.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return metrics.Summarize(e.expenses, e.budget)
}

// Breakdown computes the per-category totals for the current cache.
func (e *Engine) Breakdown() []metrics.CategoryTotal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return metrics.CategoryBreakdown(e.expenses)
}
