package services

import (
	"errors"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/logger"
	"tripledger/internal/models"
)

// profileService handles travel-profile business logic.
type profileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB) ProfileServicer {
	return &profileService{db: db}
}

// CreateProfile creates a travel profile owned by the creating user.
func (s *profileService) CreateProfile(ownerID, name, description string) (*models.TravelProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "profile name is required")
	}

	profile := &models.TravelProfile{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.db.Create(profile).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return profile, nil
}

// GetUserProfiles returns all profiles the user owns or has joined.
func (s *profileService) GetUserProfiles(userID string) ([]models.TravelProfile, error) {
	var profiles []models.TravelProfile
	err := s.db.
		Where("owner_id = ?", userID).
		Or("id IN (?)", s.db.Model(&models.TravelProfileMember{}).
			Select("travel_profile_id").Where("user_id = ?", userID)).
		Where("is_active = ?", true).
		Find(&profiles).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return profiles, nil
}

// GetProfileByID returns a profile the user can access (owner or member).
// Profiles the user cannot access read as not found.
func (s *profileService) GetProfileByID(userID, profileID string) (*models.TravelProfile, error) {
	var profile models.TravelProfile
	if err := s.db.Preload("Members").Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if profile.OwnerID == userID {
		return &profile, nil
	}
	for _, m := range profile.Members {
		if m.UserID == userID {
			return &profile, nil
		}
	}
	return nil, apperrors.ErrProfileNotFound
}

// Authorize checks that the user holds the capability on the profile. The
// owner holds every capability implicitly; members are checked against the
// permission bundle their membership carries.
func (s *profileService) Authorize(userID, profileID string, capability Capability) error {
	var profile models.TravelProfile
	if err := s.db.Select("id", "owner_id").Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if profile.OwnerID == userID {
		return nil
	}

	var member models.TravelProfileMember
	err := s.db.Where("travel_profile_id = ? AND user_id = ?", profileID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowed := false
	switch capability {
	case CapabilityView:
		allowed = true
	case CapabilityAddExpenses:
		allowed = member.CanAddExpenses
	case CapabilityEditExpenses:
		allowed = member.CanEditExpenses
	case CapabilityDeleteExpenses:
		allowed = member.CanDeleteExpenses
	case CapabilityManageBudget:
		allowed = member.CanManageBudget
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// DeleteProfile removes a profile and its dependents. Only the owner may
// delete. The cascade steps (invitations, memberships, ledger rows) run
// best-effort in parallel; failures are logged and do not block removing the
// profile row itself.
func (s *profileService) DeleteProfile(userID, profileID string) error {
	var profile models.TravelProfile
	if err := s.db.Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if profile.OwnerID != userID {
		return apperrors.ErrNotProfileOwner
	}

	p := pool.New().WithErrors()
	p.Go(func() error {
		return s.db.Where("travel_profile_id = ?", profileID).Delete(&models.UserInvitation{}).Error
	})
	p.Go(func() error {
		return s.db.Where("travel_profile_id = ?", profileID).Delete(&models.TravelProfileMember{}).Error
	})
	p.Go(func() error {
		return s.db.Where("travel_profile_id = ?", profileID).Delete(&models.Expense{}).Error
	})
	p.Go(func() error {
		return s.db.Where("travel_profile_id = ?", profileID).Delete(&models.Budget{}).Error
	})
	p.Go(func() error {
		return s.db.Where("travel_profile_id = ?", profileID).Delete(&models.TravelCountdown{}).Error
	})
	if err := p.Wait(); err != nil {
		logger.Get().Warnw("profile deletion cascade incomplete",
			"profile_id", profileID, "error", err)
	}

	if err := s.db.Delete(&profile).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
