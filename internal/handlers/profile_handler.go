package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/services"
)

// ProfileHandler handles travel-profile requests
type ProfileHandler struct {
	profileService services.ProfileServicer
	manager        *ledger.Manager
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService services.ProfileServicer, manager *ledger.Manager) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, manager: manager}
}

// CreateProfileRequest represents the profile creation payload
type CreateProfileRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateProfile creates a travel profile owned by the caller.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	profile, err := h.profileService.CreateProfile(userID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfiles lists the profiles the caller owns or is a member of.
func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profiles, err := h.profileService.GetUserProfiles(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetProfile returns one profile with its members, if the caller has access.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profileID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.GetProfileByID(userID, profileID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile removes a profile the caller owns, along with its ledger
// data, and discards any cached engines for it.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profileID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.profileService.DeleteProfile(userID, profileID); err != nil {
		respondWithError(c, err)
		return
	}

	h.manager.DropProfile(profileID)

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}
