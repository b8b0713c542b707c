package models

import "time"

// TravelCountdown tracks an upcoming travel date for a scope. At most one row
// per scope is active; setting a new date deactivates the old row instead of
// deleting it, so past countdowns remain as history.
type TravelCountdown struct {
	Base
	UserID          string    `gorm:"type:uuid;not null;index:idx_countdowns_scope" json:"user_id"`
	TravelProfileID *string   `gorm:"type:uuid;index:idx_countdowns_scope" json:"travel_profile_id,omitempty"`
	TravelDate      time.Time `gorm:"not null" json:"travel_date"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
}
