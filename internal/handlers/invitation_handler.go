package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/models"
	"tripledger/internal/pagination"
	"tripledger/internal/services"
)

// InvitationHandler handles invitation requests
type InvitationHandler struct {
	invitationService services.InvitationServicer
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService services.InvitationServicer) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// SendInvitationRequest represents the invitation creation payload. Omitted
// permission flags default to the standard collaborator bundle: add and edit
// allowed, delete and budget management withheld.
type SendInvitationRequest struct {
	Email             string `json:"email" binding:"required,email"`
	CanAddExpenses    *bool  `json:"can_add_expenses"`
	CanEditExpenses   *bool  `json:"can_edit_expenses"`
	CanDeleteExpenses *bool  `json:"can_delete_expenses"`
	CanManageBudget   *bool  `json:"can_manage_budget"`
}

func (r *SendInvitationRequest) permissions() models.Permissions {
	p := models.Permissions{CanAddExpenses: true, CanEditExpenses: true}
	if r.CanAddExpenses != nil {
		p.CanAddExpenses = *r.CanAddExpenses
	}
	if r.CanEditExpenses != nil {
		p.CanEditExpenses = *r.CanEditExpenses
	}
	if r.CanDeleteExpenses != nil {
		p.CanDeleteExpenses = *r.CanDeleteExpenses
	}
	if r.CanManageBudget != nil {
		p.CanManageBudget = *r.CanManageBudget
	}
	return p
}

// SendInvitation invites an email address to the profile. Owner only.
func (h *InvitationHandler) SendInvitation(c *gin.Context) {
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

	var req SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invitation, err := h.invitationService.SendInvitation(userID, profileID, req.Email, req.permissions())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

// ListInvitationsQuery holds the query parameters for listing a profile's
// invitations.
type ListInvitationsQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,invitation_status"`
}

// GetProfileInvitations lists a profile's invitations for its owner,
// optionally filtered by status.
func (h *InvitationHandler) GetProfileInvitations(c *gin.Context) {
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

	var query ListInvitationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invitations, err := h.invitationService.GetProfileInvitations(userID, profileID, models.InvitationStatus(query.Status), query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// GetMyInvitations lists pending invitations addressed to the caller.
func (h *InvitationHandler) GetMyInvitations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invitations, err := h.invitationService.GetUserInvitations(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// AcceptInvitation accepts an invitation addressed to the caller, creating the
// membership.
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invitationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	member, err := h.invitationService.AcceptInvitation(userID, invitationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation accepted",
		"member":  member,
	})
}

// DeclineInvitation declines an invitation addressed to the caller.
func (h *InvitationHandler) DeclineInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invitationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.invitationService.DeclineInvitation(userID, invitationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}
