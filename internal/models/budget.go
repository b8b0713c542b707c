package models

// Budget represents the spending limit for one scope. At most one row exists
// per (user, travel profile) pair; setting a new budget replaces the old row
// rather than keeping history. Absence of a row means "no budget set", which
// is distinct from a zero amount.
type Budget struct {
	Base
	UserID          string  `gorm:"type:uuid;not null;index:idx_budgets_scope" json:"user_id"`
	TravelProfileID *string `gorm:"type:uuid;index:idx_budgets_scope" json:"travel_profile_id,omitempty"`
	Amount          float64 `gorm:"not null" json:"amount"`
}
