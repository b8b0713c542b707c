// Package gormstore implements the ledger store against the relational
// backend. Every query is filtered to exactly one scope: the personal scope
// matches the user's rows with a NULL profile id, a profile scope matches the
// profile's rows across all collaborators.
package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/models"
)

// Store is a GORM-backed ledger.Store.
type Store struct {
	db *gorm.DB
}

// New creates a new Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ ledger.Store = (*Store)(nil)

// scoped narrows a query to the given scope.
func scoped(q *gorm.DB, scope ledger.Scope) *gorm.DB {
	if scope.ProfileID == nil {
		return q.Where("user_id = ? AND travel_profile_id IS NULL", scope.UserID)
	}
	return q.Where("travel_profile_id = ?", *scope.ProfileID)
}

// LoadLedger fetches expenses (most recent first), the budget, and the active
// countdown for the scope.
func (s *Store) LoadLedger(ctx context.Context, scope ledger.Scope) (*ledger.Data, error) {
	if scope.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	data := &ledger.Data{}
	db := s.db.WithContext(ctx)

	if err := scoped(db.Model(&models.Expense{}), scope).
		Order("created_at DESC").Find(&data.Expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budget models.Budget
	err := scoped(db.Model(&models.Budget{}), scope).First(&budget).Error
	switch {
	case err == nil:
		data.Budget = &budget
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var countdown models.TravelCountdown
	err = scoped(db.Model(&models.TravelCountdown{}), scope).
		Where("is_active = ?", true).First(&countdown).Error
	switch {
	case err == nil:
		data.Countdown = &countdown
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return data, nil
}

// CreateExpense inserts a new expense for the scope.
func (s *Store) CreateExpense(ctx context.Context, scope ledger.Scope, category string, amount float64) (*models.Expense, error) {
	expense := &models.Expense{
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		Category:        category,
		Amount:          amount,
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// UpdateExpense mutates an expense's amount, and category when non-nil.
func (s *Store) UpdateExpense(ctx context.Context, scope ledger.Scope, id string, amount float64, category *string) (*models.Expense, error) {
	db := s.db.WithContext(ctx)

	var expense models.Expense
	if err := scoped(db, scope).Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{"amount": amount}
	if category != nil {
		updates["category"] = *category
	}
	if err := db.Model(&expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// DeleteExpense permanently removes an expense from the scope.
func (s *Store) DeleteExpense(ctx context.Context, scope ledger.Scope, id string) error {
	result := scoped(s.db.WithContext(ctx), scope).Where("id = ?", id).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// ReplaceBudget deletes any existing budget for the scope, then inserts the
// new one. The two steps are deliberately not wrapped in a transaction: the
// worst case of a crash in between is a scope with no budget, never two.
func (s *Store) ReplaceBudget(ctx context.Context, scope ledger.Scope, amount float64) (*models.Budget, error) {
	db := s.db.WithContext(ctx)

	if err := scoped(db, scope).Delete(&models.Budget{}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		Amount:          amount,
	}
	if err := db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// RemoveBudget deletes the scope's budget. Removing an absent budget is not
// an error.
func (s *Store) RemoveBudget(ctx context.Context, scope ledger.Scope) error {
	if err := scoped(s.db.WithContext(ctx), scope).Delete(&models.Budget{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ReplaceCountdown deactivates all prior countdowns for the scope, then
// inserts the new active one. History rows stay, deactivated.
func (s *Store) ReplaceCountdown(ctx context.Context, scope ledger.Scope, travelDate time.Time) (*models.TravelCountdown, error) {
	db := s.db.WithContext(ctx)

	if err := scoped(db.Model(&models.TravelCountdown{}), scope).
		Where("is_active = ?", true).
		Update("is_active", false).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	countdown := &models.TravelCountdown{
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		TravelDate:      travelDate,
		IsActive:        true,
	}
	if err := db.Create(countdown).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return countdown, nil
}

// ClearCountdown deactivates the scope's active countdown. Clearing when no
// countdown is active is not an error.
func (s *Store) ClearCountdown(ctx context.Context, scope ledger.Scope) error {
	if err := scoped(s.db.WithContext(ctx).Model(&models.TravelCountdown{}), scope).
		Where("is_active = ?", true).
		Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
