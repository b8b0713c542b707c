package services

import (
	"tripledger/internal/models"
	"tripledger/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// Capability names one flag in the fixed permission bundle collaborators are
// granted when they join a travel profile.
type Capability string

const (
	CapabilityView           Capability = "view"
	CapabilityAddExpenses    Capability = "add_expenses"
	CapabilityEditExpenses   Capability = "edit_expenses"
	CapabilityDeleteExpenses Capability = "delete_expenses"
	CapabilityManageBudget   Capability = "manage_budget"
)

// ProfileServicer defines the contract for travel-profile business logic.
type ProfileServicer interface {
	CreateProfile(ownerID, name, description string) (*models.TravelProfile, error)
	GetUserProfiles(userID string) ([]models.TravelProfile, error)
	GetProfileByID(userID, profileID string) (*models.TravelProfile, error)
	Authorize(userID, profileID string, capability Capability) error
	DeleteProfile(userID, profileID string) error
}

// InvitationServicer defines the contract for invitation business logic.
type InvitationServicer interface {
	SendInvitation(inviterID, profileID, inviteeEmail string, permissions models.Permissions) (*models.UserInvitation, error)
	GetProfileInvitations(userID, profileID string, status models.InvitationStatus, page pagination.PageRequest) (*pagination.PageResponse[models.UserInvitation], error)
	GetUserInvitations(userID string) ([]models.UserInvitation, error)
	AcceptInvitation(userID, invitationID string) (*models.TravelProfileMember, error)
	DeclineInvitation(userID, invitationID string) error
}
