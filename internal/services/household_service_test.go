package services

import (
	"testing"
	"time"

	"hearth/internal/models"
	"hearth/internal/testutil"
)

func TestCreateHousehold(t *testing.T) {
	t.Run("creator_becomes_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		user := testutil.CreateTestUser(t, db)

		household, err := svc.CreateHousehold(user.ID, "Smith Family")
		testutil.AssertNoError(t, err)

		if household.ID == "" {
			t.Fatal("expected non-empty household ID")
		}
		if household.Name != "Smith Family" {
			t.Errorf("expected name Smith Family, got %s", household.Name)
		}

		var membership models.Membership
		err = db.Where("user_id = ? AND household_id = ?", user.ID, household.ID).First(&membership).Error
		testutil.AssertNoError(t, err)
		if membership.Role != models.RoleOwner {
			t.Errorf("expected creator role owner, got %s", membership.Role)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHousehold(user.ID, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserHouseholds(t *testing.T) {
	t.Run("returns_memberships_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		h1 := testutil.CreateTestHousehold(t, db, user1.ID)
		testutil.CreateTestHousehold(t, db, user2.ID)

		households, err := svc.GetUserHouseholds(user1.ID)
		testutil.AssertNoError(t, err)

		if len(households) != 1 {
			t.Fatalf("expected 1 household, got %d", len(households))
		}
		if households[0].ID != h1.ID {
			t.Errorf("expected household %s, got %s", h1.ID, households[0].ID)
		}
	})
}

func TestRenameHousehold(t *testing.T) {
	t.Run("owner_can_rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)

		renamed, err := svc.RenameHousehold(owner.ID, household.ID, "New Name")
		testutil.AssertNoError(t, err)
		if renamed.Name != "New Name" {
			t.Errorf("expected New Name, got %s", renamed.Name)
		}
	})

	t.Run("member_cannot_rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.CreateTestMembership(t, db, member.ID, household.ID, models.RoleMember)

		_, err := svc.RenameHousehold(member.ID, household.ID, "Hijacked")
		testutil.AssertAppError(t, err, "OWNER_REQUIRED")
	})
}

func TestRequireMembership(t *testing.T) {
	t.Run("member_passes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)

		membership, err := svc.RequireMembership(owner.ID, household.ID)
		testutil.AssertNoError(t, err)
		if membership.Role != models.RoleOwner {
			t.Errorf("expected role owner, got %s", membership.Role)
		}
	})

	t.Run("unknown_household_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.RequireMembership(user.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "HOUSEHOLD_NOT_FOUND")
	})

	t.Run("non_member_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		outsider := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)

		_, err := svc.RequireMembership(outsider.ID, household.ID)
		testutil.AssertAppError(t, err, "NOT_A_MEMBER")
	})
}

func TestCreateInvitation(t *testing.T) {
	t.Run("owner_can_invite", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)

		invitation, err := svc.CreateInvitation(owner.ID, household.ID, "invitee@example.com")
		testutil.AssertNoError(t, err)

		if invitation.Token == "" {
			t.Error("expected a token")
		}
		if invitation.Status != models.InvitationStatusPending {
			t.Errorf("expected pending status, got %s", invitation.Status)
		}
		if !invitation.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
			t.Error("expected roughly seven days until expiry")
		}
	})

	t.Run("member_cannot_invite", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		testutil.CreateTestMembership(t, db, member.ID, household.ID, models.RoleMember)

		_, err := svc.CreateInvitation(member.ID, household.ID, "invitee@example.com")
		testutil.AssertAppError(t, err, "OWNER_REQUIRED")
	})
}

func TestAcceptInvitation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		invitee := testutil.CreateTestUser(t, db)
		invitation := testutil.CreateTestInvitation(t, db, household.ID, owner.ID, invitee.Email)

		membership, err := svc.AcceptInvitation(invitee.ID, invitation.Token)
		testutil.AssertNoError(t, err)

		if membership.Role != models.RoleMember {
			t.Errorf("expected role member, got %s", membership.Role)
		}
		if membership.HouseholdID != household.ID {
			t.Errorf("expected household %s, got %s", household.ID, membership.HouseholdID)
		}

		var refreshed models.Invitation
		testutil.AssertNoError(t, db.Where("id = ?", invitation.ID).First(&refreshed).Error)
		if refreshed.Status != models.InvitationStatusAccepted {
			t.Errorf("expected invitation marked accepted, got %s", refreshed.Status)
		}
	})

	t.Run("wrong_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		interloper := testutil.CreateTestUser(t, db)
		invitation := testutil.CreateTestInvitation(t, db, household.ID, owner.ID, "someoneelse@example.com")

		_, err := svc.AcceptInvitation(interloper.ID, invitation.Token)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("already_accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		invitee := testutil.CreateTestUser(t, db)
		invitation := testutil.CreateTestInvitation(t, db, household.ID, owner.ID, invitee.Email)

		_, err := svc.AcceptInvitation(invitee.ID, invitation.Token)
		testutil.AssertNoError(t, err)

		_, err = svc.AcceptInvitation(invitee.ID, invitation.Token)
		testutil.AssertAppError(t, err, "INVITATION_ALREADY_ACCEPTED")
	})

	t.Run("expired", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		invitee := testutil.CreateTestUser(t, db)
		invitation := testutil.CreateTestInvitation(t, db, household.ID, owner.ID, invitee.Email)
		testutil.AssertNoError(t, db.Model(invitation).Update("expires_at", time.Now().Add(-time.Hour)).Error)

		_, err := svc.AcceptInvitation(invitee.ID, invitation.Token)
		testutil.AssertAppError(t, err, "INVITATION_EXPIRED")
	})

	t.Run("already_a_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		owner := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)
		member := testutil.CreateTestUser(t, db)
		testutil.CreateTestMembership(t, db, member.ID, household.ID, models.RoleMember)
		invitation := testutil.CreateTestInvitation(t, db, household.ID, owner.ID, member.Email)

		_, err := svc.AcceptInvitation(member.ID, invitation.Token)
		testutil.AssertAppError(t, err, "DUPLICATE_MEMBERSHIP")
	})

	t.Run("unknown_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHouseholdService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.AcceptInvitation(user.ID, "no-such-token")
		testutil.AssertAppError(t, err, "INVITATION_NOT_FOUND")
	})
}
