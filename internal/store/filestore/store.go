// Package filestore implements the ledger store over a local filesystem,
// mirroring the browser-local storage variant: one JSON document per scope,
// keyed by fixed field names, rewritten on every change and rehydrated on
// load. There is no collaboration model in this variant.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/models"
	"tripledger/internal/uuid"
)

// Store is an afero-backed ledger.Store.
type Store struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// New creates a Store writing under dir on the given filesystem.
func New(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

var _ ledger.Store = (*Store)(nil)

// document is the on-disk shape of one scope's ledger.
type document struct {
	Expenses  []models.Expense        `json:"expenses"`
	Budget    *models.Budget          `json:"budget,omitempty"`
	Countdown *models.TravelCountdown `json:"travel_countdown,omitempty"`
}

func (s *Store) path(scope ledger.Scope) string {
	name := strings.ReplaceAll(scope.Key(), "/", "_") + ".json"
	return filepath.Join(s.dir, name)
}

func (s *Store) read(scope ledger.Scope) (*document, error) {
	raw, err := afero.ReadFile(s.fs, s.path(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &doc, nil
}

func (s *Store) write(scope ledger.Scope, doc *document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := afero.WriteFile(s.fs, s.path(scope), raw, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// LoadLedger rehydrates the scope's document. A missing file is an empty
// ledger, not an error.
func (s *Store) LoadLedger(ctx context.Context, scope ledger.Scope) (*ledger.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return nil, err
	}
	return &ledger.Data{
		Expenses:  doc.Expenses,
		Budget:    doc.Budget,
		Countdown: doc.Countdown,
	}, nil
}

// CreateExpense assigns an id and timestamps locally and prepends the record.
func (s *Store) CreateExpense(ctx context.Context, scope ledger.Scope, category string, amount float64) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expense := models.Expense{
		Base:            models.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		Category:        category,
		Amount:          amount,
	}
	doc.Expenses = append([]models.Expense{expense}, doc.Expenses...)

	if err := s.write(scope, doc); err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense mutates an expense in place and refreshes its updated_at.
func (s *Store) UpdateExpense(ctx context.Context, scope ledger.Scope, id string, amount float64, category *string) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return nil, err
	}

	for i := range doc.Expenses {
		if doc.Expenses[i].ID != id {
			continue
		}
		doc.Expenses[i].Amount = amount
		if category != nil {
			doc.Expenses[i].Category = *category
		}
		doc.Expenses[i].UpdatedAt = time.Now()
		if err := s.write(scope, doc); err != nil {
			return nil, err
		}
		expense := doc.Expenses[i]
		return &expense, nil
	}
	return nil, apperrors.ErrExpenseNotFound
}

// DeleteExpense removes an expense permanently.
func (s *Store) DeleteExpense(ctx context.Context, scope ledger.Scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return err
	}

	for i := range doc.Expenses {
		if doc.Expenses[i].ID == id {
			doc.Expenses = append(doc.Expenses[:i], doc.Expenses[i+1:]...)
			return s.write(scope, doc)
		}
	}
	return apperrors.ErrExpenseNotFound
}

// ReplaceBudget overwrites the scope's budget field.
func (s *Store) ReplaceBudget(ctx context.Context, scope ledger.Scope, amount float64) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	budget := models.Budget{
		Base:            models.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		Amount:          amount,
	}
	doc.Budget = &budget

	if err := s.write(scope, doc); err != nil {
		return nil, err
	}
	return &budget, nil
}

// RemoveBudget clears the scope's budget field.
func (s *Store) RemoveBudget(ctx context.Context, scope ledger.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return err
	}
	doc.Budget = nil
	return s.write(scope, doc)
}

// ReplaceCountdown overwrites the scope's active countdown. The file variant
// keeps no deactivated history; the single stored countdown is the active one.
func (s *Store) ReplaceCountdown(ctx context.Context, scope ledger.Scope, travelDate time.Time) (*models.TravelCountdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	countdown := models.TravelCountdown{
		Base:            models.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:          scope.UserID,
		TravelProfileID: scope.ProfileID,
		TravelDate:      travelDate,
		IsActive:        true,
	}
	doc.Countdown = &countdown

	if err := s.write(scope, doc); err != nil {
		return nil, err
	}
	return &countdown, nil
}

// ClearCountdown removes the scope's countdown field.
func (s *Store) ClearCountdown(ctx context.Context, scope ledger.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(scope)
	if err != nil {
		return err
	}
	doc.Countdown = nil
	return s.write(scope, doc)
}
