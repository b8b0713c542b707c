package models

import "time"

// InvitationStatus represents the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// UserInvitation invites an email address to join a travel profile. Expiry is
// derived from ExpiresAt at read time; the stored status is never rewritten
// to "expired".
type UserInvitation struct {
	Base
	TravelProfileID string           `gorm:"type:uuid;not null;index" json:"travel_profile_id"`
	InviterID       string           `gorm:"type:uuid;not null" json:"inviter_id"`
	InviteeEmail    string           `gorm:"not null;index" json:"invitee_email"`
	Status          InvitationStatus `gorm:"not null;default:pending" json:"status"`
	Permissions     `gorm:"embedded"`
	ExpiresAt       time.Time `gorm:"not null" json:"expires_at"`

	TravelProfile TravelProfile `gorm:"foreignKey:TravelProfileID" json:"travel_profile,omitempty"`
}

// IsExpired reports whether a pending invitation has passed its expiry.
func (i *UserInvitation) IsExpired() bool {
	return i.Status == InvitationStatusPending && time.Now().After(i.ExpiresAt)
}

// EffectiveStatus returns the status consumers should display: pending
// invitations past their expiry read as expired without being written back.
func (i *UserInvitation) EffectiveStatus() InvitationStatus {
	if i.IsExpired() {
		return InvitationStatusExpired
	}
	return i.Status
}
