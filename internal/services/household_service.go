package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/uuid"
)

// householdService handles household, membership, and invitation logic.
type householdService struct {
	db *gorm.DB
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB) HouseholdServicer {
	return &householdService{db: db}
}

// CreateHousehold creates a household and makes the creator its owner.
// Both rows are written in one database transaction.
func (s *householdService) CreateHousehold(userID, name string) (*models.Household, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "household name is required")
	}

	household := &models.Household{Name: name}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		membership := &models.Membership{
			UserID:      userID,
			HouseholdID: household.ID,
			Role:        models.RoleOwner,
		}
		if err := tx.Create(membership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return household, nil
}

// GetUserHouseholds lists every household the user is a member of.
func (s *householdService) GetUserHouseholds(userID string) ([]models.Household, error) {
	var households []models.Household
	err := s.db.
		Joins("JOIN memberships ON memberships.household_id = households.id").
		Where("memberships.user_id = ? AND memberships.deleted_at IS NULL", userID).
		Find(&households).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return households, nil
}

// RenameHousehold updates a household's name. Owner role required.
func (s *householdService) RenameHousehold(userID, householdID, name string) (*models.Household, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "household name is required")
	}

	membership, err := s.RequireMembership(userID, householdID)
	if err != nil {
		return nil, err
	}
	if membership.Role != models.RoleOwner {
		return nil, apperrors.ErrOwnerRequired
	}

	var household models.Household
	if err := s.db.Where("id = ?", householdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&household).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// GetMembers lists the memberships of a household with their users preloaded.
func (s *householdService) GetMembers(householdID string) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := s.db.Preload("User").Where("household_id = ?", householdID).Find(&memberships).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return memberships, nil
}

// RequireMembership verifies the user is a current member of the household
// and returns the membership. An unknown household reports not-found; an
// existing household the user does not belong to reports not-a-member, so
// the two failures stay distinguishable.
func (s *householdService) RequireMembership(userID, householdID string) (*models.Membership, error) {
	var count int64
	if err := s.db.Model(&models.Household{}).Where("id = ?", householdID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrHouseholdNotFound
	}

	var membership models.Membership
	err := s.db.Where("user_id = ? AND household_id = ?", userID, householdID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotAMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &membership, nil
}

// CreateInvitation invites an email address into a household. Owner role
// required; the invitation carries a unique token and expires after seven
// days.
func (s *householdService) CreateInvitation(userID, householdID, email string) (*models.Invitation, error) {
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}

	membership, err := s.RequireMembership(userID, householdID)
	if err != nil {
		return nil, err
	}
	if membership.Role != models.RoleOwner {
		return nil, apperrors.ErrOwnerRequired
	}

	invitation := &models.Invitation{
		HouseholdID: householdID,
		Email:       strings.ToLower(email),
		InvitedByID: userID,
		Token:       uuid.New(),
		Status:      models.InvitationStatusPending,
		ExpiresAt:   time.Now().Add(models.InvitationTTL),
	}

	if err := s.db.Create(invitation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invitation, nil
}

// AcceptInvitation consumes an invitation token for the calling user.
// The user's email must match the invited email; the invitation must be
// pending and unexpired. The membership insert and the status flip happen in
// one database transaction so an invitation can never be half-consumed.
func (s *householdService) AcceptInvitation(userID, token string) (*models.Membership, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitation models.Invitation
	if err := s.db.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if invitation.Status == models.InvitationStatusAccepted {
		return nil, apperrors.ErrInvitationAccepted
	}
	if invitation.Expired(time.Now()) {
		return nil, apperrors.ErrInvitationExpired
	}
	if !strings.EqualFold(invitation.Email, user.Email) {
		return nil, apperrors.ErrForbidden
	}

	var existing int64
	if err := s.db.Model(&models.Membership{}).
		Where("user_id = ? AND household_id = ?", userID, invitation.HouseholdID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateMembership
	}

	membership := &models.Membership{
		UserID:      userID,
		HouseholdID: invitation.HouseholdID,
		Role:        models.RoleMember,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(membership).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrDuplicateMembership
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&invitation).Update("status", models.InvitationStatusAccepted).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// isUniqueViolation reports whether a database error is a uniqueness
// constraint failure, across the postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
