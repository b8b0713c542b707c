package models

// Permissions is the fixed bundle of capability flags granted to a
// collaborator. The bundle is copied from the invitation onto the membership
// when the invitation is accepted.
type Permissions struct {
	CanAddExpenses    bool `gorm:"default:true" json:"can_add_expenses"`
	CanEditExpenses   bool `gorm:"default:true" json:"can_edit_expenses"`
	CanDeleteExpenses bool `gorm:"default:false" json:"can_delete_expenses"`
	CanManageBudget   bool `gorm:"default:false" json:"can_manage_budget"`
}

// TravelProfileMember links a user to a travel profile they have joined.
// Rows are created only by accepting an invitation; the (profile, user) pair
// is unique.
type TravelProfileMember struct {
	Base
	TravelProfileID string `gorm:"type:uuid;not null;uniqueIndex:idx_member_profile_user" json:"travel_profile_id"`
	UserID          string `gorm:"type:uuid;not null;uniqueIndex:idx_member_profile_user" json:"user_id"`
	Permissions     `gorm:"embedded"`
}
