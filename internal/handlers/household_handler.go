package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/services"
)

// HouseholdHandler handles household, membership, and invitation requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(householdService services.HouseholdServicer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

// CreateHouseholdRequest represents the request payload for creating a household
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// RenameHouseholdRequest represents the request payload for renaming a household
type RenameHouseholdRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateInvitationRequest represents the request payload for inviting a user
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// AcceptInvitationRequest represents the request payload for accepting an invitation
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// HouseholdResponse represents a household in the response
type HouseholdResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse represents a household member in the response
type MemberResponse struct {
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	JoinedAt    time.Time   `json:"joined_at"`
}

// InvitationResponse represents an invitation in the response
type InvitationResponse struct {
	ID        string                  `json:"id"`
	Email     string                  `json:"email"`
	Token     string                  `json:"token"`
	Status    models.InvitationStatus `json:"status"`
	ExpiresAt time.Time               `json:"expires_at"`
}

func householdResponse(h *models.Household) HouseholdResponse {
	return HouseholdResponse{ID: h.ID, Name: h.Name, CreatedAt: h.CreatedAt}
}

// CreateHousehold handles the creation of a new household
// @Summary     Create a household
// @Description Create a new household with the authenticated user as owner
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household details"
// @Success     201 {object} HouseholdResponse "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"household": householdResponse(household)})
}

// ListHouseholds lists the households the user belongs to
// @Summary     List households
// @Description List the households the authenticated user is a member of
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]HouseholdResponse "Households"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households [get]
func (h *HouseholdHandler) ListHouseholds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	households, err := h.householdService.GetUserHouseholds(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	responses := make([]HouseholdResponse, 0, len(households))
	for i := range households {
		responses = append(responses, householdResponse(&households[i]))
	}

	c.JSON(http.StatusOK, gin.H{"households": responses})
}

// RenameHousehold renames the current household
// @Summary     Rename household
// @Description Rename the current household (owner only)
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body RenameHouseholdRequest true "New name"
// @Success     200 {object} HouseholdResponse "Household renamed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Owner role required"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/current [put]
func (h *HouseholdHandler) RenameHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RenameHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.RenameHousehold(userID, householdID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"household": householdResponse(household)})
}

// GetMembers lists the members of the current household
// @Summary     List household members
// @Description List the members of the current household
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Success     200 {object} map[string][]MemberResponse "Members"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/current/members [get]
func (h *HouseholdHandler) GetMembers(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberships, err := h.householdService.GetMembers(householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	members := make([]MemberResponse, 0, len(memberships))
	for i := range memberships {
		m := &memberships[i]
		members = append(members, MemberResponse{
			UserID:      m.UserID,
			Email:       m.User.Email,
			DisplayName: m.User.DisplayName,
			Role:        m.Role,
			JoinedAt:    m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// CreateInvitation invites a user to the current household
// @Summary     Invite a user
// @Description Create an invitation to the current household (owner only)
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateInvitationRequest true "Invitee email"
// @Success     201 {object} InvitationResponse "Invitation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Owner role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /households/current/invitations [post]
func (h *HouseholdHandler) CreateInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invitation, err := h.householdService.CreateInvitation(userID, householdID, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": InvitationResponse{
		ID:        invitation.ID,
		Email:     invitation.Email,
		Token:     invitation.Token,
		Status:    invitation.Status,
		ExpiresAt: invitation.ExpiresAt,
	}})
}

// AcceptInvitation accepts an invitation by token
// @Summary     Accept an invitation
// @Description Accept a pending invitation addressed to the authenticated user's email
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AcceptInvitationRequest true "Invitation token"
// @Success     200 {object} map[string]string "Membership created"
// @Failure     400 {object} ErrorResponse "Invalid or expired invitation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Invitation addressed to another email"
// @Failure     409 {object} ErrorResponse "Already a member or already accepted"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invitations/accept [post]
func (h *HouseholdHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	membership, err := h.householdService.AcceptInvitation(userID, req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"household_id": membership.HouseholdID,
		"role":         string(membership.Role),
	})
}
