package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/models"
	"tripledger/internal/notify"
	"tripledger/internal/pagination"
)

// invitationExpiry is how long invitations remain answerable.
const invitationExpiry = 7 * 24 * time.Hour

// invitationService handles invitation business logic.
type invitationService struct {
	db       *gorm.DB
	notifier notify.InvitationNotifier
}

// NewInvitationService creates a new InvitationServicer.
func NewInvitationService(db *gorm.DB, notifier notify.InvitationNotifier) InvitationServicer {
	return &invitationService{db: db, notifier: notifier}
}

// SendInvitation invites an email address to a travel profile. Only the
// profile owner may invite. A (profile, email) pair may have at most one
// outstanding pending invitation; declined or expired rows do not block a
// re-invite. The notification webhook is fired after the row is created and
// never blocks the result.
func (s *invitationService) SendInvitation(inviterID, profileID, inviteeEmail string, permissions models.Permissions) (*models.UserInvitation, error) {
	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))
	if inviteeEmail == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invitee email is required")
	}

	var profile models.TravelProfile
	if err := s.db.Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if profile.OwnerID != inviterID {
		return nil, apperrors.ErrNotProfileOwner
	}

	// A pending invitation past its expiry reads as expired and does not
	// count as outstanding.
	var pending int64
	err := s.db.Model(&models.UserInvitation{}).
		Where("travel_profile_id = ? AND invitee_email = ? AND status = ? AND expires_at > ?",
			profileID, inviteeEmail, models.InvitationStatusPending, time.Now()).
		Count(&pending).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if pending > 0 {
		return nil, apperrors.ErrInvitationExists
	}

	// If the email already has an account, reject when that user is already
	// the owner or a member. Without an account the check is skipped and the
	// invite proceeds.
	var invitee models.User
	err = s.db.Where("email = ?", inviteeEmail).First(&invitee).Error
	switch {
	case err == nil:
		if invitee.ID == profile.OwnerID {
			return nil, apperrors.ErrAlreadyMember
		}
		var members int64
		if err := s.db.Model(&models.TravelProfileMember{}).
			Where("travel_profile_id = ? AND user_id = ?", profileID, invitee.ID).
			Count(&members).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if members > 0 {
			return nil, apperrors.ErrAlreadyMember
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invitation := &models.UserInvitation{
		TravelProfileID: profileID,
		InviterID:       inviterID,
		InviteeEmail:    inviteeEmail,
		Status:          models.InvitationStatusPending,
		Permissions:     permissions,
		ExpiresAt:       time.Now().Add(invitationExpiry),
	}
	if err := s.db.Create(invitation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.InvitationCreated(invitation)

	return invitation, nil
}

// statusFilter returns a scope matching rows whose effective status is the
// given one. Pending rows past their expiry count as expired, not pending.
func statusFilter(status models.InvitationStatus) func(db *gorm.DB) *gorm.DB {
	now := time.Now()
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case "":
			return db
		case models.InvitationStatusPending:
			return db.Where("status = ? AND expires_at > ?", models.InvitationStatusPending, now)
		case models.InvitationStatusExpired:
			return db.Where("(status = ? OR (status = ? AND expires_at <= ?))",
				models.InvitationStatusExpired, models.InvitationStatusPending, now)
		default:
			return db.Where("status = ?", status)
		}
	}
}

// GetProfileInvitations lists a profile's invitations for its owner, newest
// first, optionally filtered by effective status. Statuses are mapped through
// EffectiveStatus so pending rows past their expiry read as expired.
func (s *invitationService) GetProfileInvitations(userID, profileID string, status models.InvitationStatus, page pagination.PageRequest) (*pagination.PageResponse[models.UserInvitation], error) {
	var profile models.TravelProfile
	if err := s.db.Select("id", "owner_id").Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if profile.OwnerID != userID {
		return nil, apperrors.ErrNotProfileOwner
	}

	page.Defaults()

	var total int64
	if err := s.db.Model(&models.UserInvitation{}).
		Where("travel_profile_id = ?", profileID).
		Scopes(statusFilter(status)).
		Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitations []models.UserInvitation
	if err := s.db.Where("travel_profile_id = ?", profileID).
		Scopes(statusFilter(status)).
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&invitations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus()
	}

	resp := pagination.NewPageResponse(invitations, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetUserInvitations lists invitations addressed to the user's email. Expiry
// is computed here at read time; the stored status is never rewritten.
func (s *invitationService) GetUserInvitations(userID string) ([]models.UserInvitation, error) {
	var user models.User
	if err := s.db.Select("id", "email").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitations []models.UserInvitation
	if err := s.db.Preload("TravelProfile").
		Where("invitee_email = ? AND status = ?", user.Email, models.InvitationStatusPending).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus()
	}
	return invitations, nil
}

// AcceptInvitation marks the invitation accepted and creates the membership
// carrying the invitation's permission bundle. An already-existing membership
// is tolerated, not an error.
func (s *invitationService) AcceptInvitation(userID, invitationID string) (*models.TravelProfileMember, error) {
	invitation, _, err := s.loadForAnswer(userID, invitationID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(invitation).Update("status", models.InvitationStatusAccepted).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing models.TravelProfileMember
	err = s.db.Where("travel_profile_id = ? AND user_id = ?", invitation.TravelProfileID, userID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	member := &models.TravelProfileMember{
		TravelProfileID: invitation.TravelProfileID,
		UserID:          userID,
		Permissions:     invitation.Permissions,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// DeclineInvitation marks the invitation declined. No membership is created.
func (s *invitationService) DeclineInvitation(userID, invitationID string) error {
	invitation, _, err := s.loadForAnswer(userID, invitationID)
	if err != nil {
		return err
	}

	if err := s.db.Model(invitation).Update("status", models.InvitationStatusDeclined).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// loadForAnswer fetches an invitation the user may answer: it must be
// addressed to the user's email, still pending, and not past its expiry.
func (s *invitationService) loadForAnswer(userID, invitationID string) (*models.UserInvitation, *models.User, error) {
	var user models.User
	if err := s.db.Select("id", "email").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUserNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitation models.UserInvitation
	if err := s.db.Where("id = ?", invitationID).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrInvitationNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if invitation.InviteeEmail != user.Email {
		return nil, nil, apperrors.ErrInvitationNotFound
	}
	if invitation.IsExpired() {
		return nil, nil, apperrors.ErrInvitationExpired
	}
	if invitation.Status != models.InvitationStatusPending {
		return nil, nil, apperrors.ErrInvitationResolved
	}

	return &invitation, &user, nil
}
