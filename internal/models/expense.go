package models

// Expense is one spending record in a scope. The scope is (UserID, nil) for a
// personal ledger or any (user, profile) with a non-nil TravelProfileID for a
// shared one; profile rows are visible to every collaborator. Deletion is a
// hard delete with no recovery path.
type Expense struct {
	Base
	UserID          string  `gorm:"type:uuid;not null;index:idx_expenses_scope" json:"user_id"`
	TravelProfileID *string `gorm:"type:uuid;index:idx_expenses_scope" json:"travel_profile_id,omitempty"`
	Category        string  `gorm:"not null" json:"category"`
	Amount          float64 `gorm:"not null" json:"amount"`
}
