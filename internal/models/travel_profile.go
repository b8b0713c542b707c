package models

// TravelProfile is a shareable collaboration container. It owns its own
// expenses, budget, and countdown, has exactly one owner, and zero or more
// members. The owner is implicit and never stored as a membership row.
type TravelProfile struct {
	Base
	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Members     []TravelProfileMember `gorm:"foreignKey:TravelProfileID" json:"members,omitempty"`
	Invitations []UserInvitation      `gorm:"foreignKey:TravelProfileID" json:"invitations,omitempty"`
}
