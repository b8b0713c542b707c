package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/metrics"
	"tripledger/internal/services"
	"tripledger/internal/uuid"
)

// LedgerHandler serves the scoped expense ledger: the cached snapshot plus the
// mutations that flow through the sync engine. The scope is the caller's
// personal ledger by default; passing ?profile_id= switches to a shared travel
// profile, subject to a capability check.
type LedgerHandler struct {
	manager  *ledger.Manager
	profiles services.ProfileServicer
}

// NewLedgerHandler creates a new LedgerHandler. profiles may be nil when
// shared profiles are disabled; profile-scoped requests are then rejected.
func NewLedgerHandler(manager *ledger.Manager, profiles services.ProfileServicer) *LedgerHandler {
	return &LedgerHandler{manager: manager, profiles: profiles}
}

// CreateExpenseRequest represents the expense creation payload. Category and
// amount are validated by the engine so callers get the specific error code
// rather than a generic binding failure.
type CreateExpenseRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// UpdateExpenseRequest represents the expense update payload. A nil category
// leaves the stored category unchanged.
type UpdateExpenseRequest struct {
	Category *string `json:"category"`
	Amount   float64 `json:"amount"`
}

// SetBudgetRequest represents the budget replacement payload.
type SetBudgetRequest struct {
	Amount float64 `json:"amount"`
}

// SetCountdownRequest represents the countdown replacement payload.
type SetCountdownRequest struct {
	TravelDate time.Time `json:"travel_date" binding:"required"`
}

// resolveScope derives the ledger scope from the request and, for profile
// scopes, verifies the caller holds the required capability.
func (h *LedgerHandler) resolveScope(c *gin.Context, capability services.Capability) (ledger.Scope, error) {
	userID, err := getUserID(c)
	if err != nil {
		return ledger.Scope{}, err
	}
	scope := ledger.Scope{UserID: userID}

	raw := c.Query("profile_id")
	if raw == "" {
		return scope, nil
	}
	profileID, err := uuid.Parse(raw)
	if err != nil {
		return ledger.Scope{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid profile_id")
	}
	if h.profiles == nil {
		return ledger.Scope{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Shared travel profiles are not enabled")
	}
	if err := h.profiles.Authorize(userID, profileID, capability); err != nil {
		return ledger.Scope{}, err
	}
	scope.ProfileID = &profileID
	return scope, nil
}

// ledgerView builds the full ledger response for an engine.
func ledgerView(eng *ledger.Engine) gin.H {
	snap := eng.Snapshot()
	view := gin.H{
		"state":      snap.State,
		"expenses":   snap.Expenses,
		"budget":     snap.Budget,
		"countdown":  snap.Countdown,
		"summary":    eng.Summary(),
		"categories": eng.Breakdown(),
	}
	if snap.Countdown != nil {
		view["days_until_travel"] = metrics.DaysUntil(snap.Countdown.TravelDate, time.Now())
	}
	return view
}

// GetLedger activates the requested scope, loading it if needed, and returns
// the snapshot with derived metrics.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityView)
	if err != nil {
		respondWithError(c, err)
		return
	}

	eng, err := h.manager.Activate(c.Request.Context(), scope, false)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledgerView(eng))
}

// ReloadLedger forces a fresh load of the requested scope, bypassing the
// cached-ready short circuit (bursts within the debounce window still
// coalesce).
func (h *LedgerHandler) ReloadLedger(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityView)
	if err != nil {
		respondWithError(c, err)
		return
	}

	eng, err := h.manager.Activate(c.Request.Context(), scope, true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledgerView(eng))
}

// CreateExpense adds an expense to the requested scope.
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityAddExpenses)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.manager.Engine(scope).AddExpense(c.Request.Context(), req.Category, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// UpdateExpense modifies an existing expense in the requested scope.
func (h *LedgerHandler) UpdateExpense(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityEditExpenses)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.manager.Engine(scope).UpdateExpense(c.Request.Context(), id, req.Amount, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense permanently removes an expense from the requested scope.
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityDeleteExpenses)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.manager.Engine(scope).DeleteExpense(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// SetBudget replaces the scope's budget.
func (h *LedgerHandler) SetBudget(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityManageBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.manager.Engine(scope).SetBudget(c.Request.Context(), req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// RemoveBudget clears the scope's budget. Removing an absent budget succeeds.
func (h *LedgerHandler) RemoveBudget(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityManageBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.manager.Engine(scope).RemoveBudget(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget removed"})
}

// SetCountdown replaces the scope's travel countdown.
func (h *LedgerHandler) SetCountdown(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityManageBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetCountdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	countdown, err := h.manager.Engine(scope).SetCountdown(c.Request.Context(), req.TravelDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"countdown":         countdown,
		"days_until_travel": metrics.DaysUntil(countdown.TravelDate, time.Now()),
	})
}

// ClearCountdown deactivates the scope's travel countdown. Clearing an absent
// countdown succeeds.
func (h *LedgerHandler) ClearCountdown(c *gin.Context) {
	scope, err := h.resolveScope(c, services.CapabilityManageBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.manager.Engine(scope).ClearCountdown(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Countdown cleared"})
}
