package services

import (
	"testing"

	"tripledger/internal/models"
	"tripledger/internal/testutil"
)

func TestCreateProfile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)

		profile, err := svc.CreateProfile(owner.ID, "  Japan 2027  ", "Spring trip")
		testutil.AssertNoError(t, err)

		if profile.Name != "Japan 2027" {
			t.Errorf("expected trimmed name, got %q", profile.Name)
		}
		if profile.OwnerID != owner.ID {
			t.Error("wrong owner")
		}
		if !profile.IsActive {
			t.Error("expected profile to be active")
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)

		_, err := svc.CreateProfile(owner.ID, "   ", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserProfiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewProfileService(db)

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	outsider := testutil.CreateTestUser(t, db)

	owned := testutil.CreateTestProfile(t, db, owner.ID)
	joined := testutil.CreateTestProfile(t, db, outsider.ID)
	testutil.CreateTestMember(t, db, joined.ID, member.ID, models.Permissions{CanAddExpenses: true})
	testutil.CreateTestProfile(t, db, outsider.ID) // unrelated

	ownerProfiles, err := svc.GetUserProfiles(owner.ID)
	testutil.AssertNoError(t, err)
	if len(ownerProfiles) != 1 || ownerProfiles[0].ID != owned.ID {
		t.Errorf("owner should see exactly their profile, got %+v", ownerProfiles)
	}

	memberProfiles, err := svc.GetUserProfiles(member.ID)
	testutil.AssertNoError(t, err)
	if len(memberProfiles) != 1 || memberProfiles[0].ID != joined.ID {
		t.Errorf("member should see the joined profile, got %+v", memberProfiles)
	}
}

func TestGetProfileByID(t *testing.T) {
	t.Run("owner_and_member_access", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)
		testutil.CreateTestMember(t, db, profile.ID, member.ID, models.Permissions{})

		_, err := svc.GetProfileByID(owner.ID, profile.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetProfileByID(member.ID, profile.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("outsider_reads_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		outsider := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)

		_, err := svc.GetProfileByID(outsider.ID, profile.ID)
		testutil.AssertAppError(t, err, "PROFILE_NOT_FOUND")
	})
}

func TestAuthorize(t *testing.T) {
	t.Run("owner_holds_all_capabilities", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)

		for _, cap := range []Capability{CapabilityView, CapabilityAddExpenses, CapabilityEditExpenses, CapabilityDeleteExpenses, CapabilityManageBudget} {
			testutil.AssertNoError(t, svc.Authorize(owner.ID, profile.ID, cap))
		}
	})

	t.Run("member_checked_against_bundle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)
		testutil.CreateTestMember(t, db, profile.ID, member.ID, models.Permissions{
			CanAddExpenses: true,
		})

		testutil.AssertNoError(t, svc.Authorize(member.ID, profile.ID, CapabilityView))
		testutil.AssertNoError(t, svc.Authorize(member.ID, profile.ID, CapabilityAddExpenses))

		err := svc.Authorize(member.ID, profile.ID, CapabilityDeleteExpenses)
		testutil.AssertAppError(t, err, "FORBIDDEN")
		err = svc.Authorize(member.ID, profile.ID, CapabilityManageBudget)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("non_member_reads_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		outsider := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)

		err := svc.Authorize(outsider.ID, profile.ID, CapabilityView)
		testutil.AssertAppError(t, err, "PROFILE_NOT_FOUND")
	})
}

func TestDeleteProfile(t *testing.T) {
	t.Run("owner_cascades_dependents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)
		testutil.CreateTestMember(t, db, profile.ID, member.ID, models.Permissions{})
		testutil.CreateTestInvitation(t, db, profile.ID, owner.ID, "guest@example.com")
		testutil.CreateTestProfileExpense(t, db, owner.ID, &profile.ID, "flights", 450)
		testutil.CreateTestBudget(t, db, owner.ID, &profile.ID, 1000)

		testutil.AssertNoError(t, svc.DeleteProfile(owner.ID, profile.ID))

		for name, model := range map[string]interface{}{
			"profiles":    &models.TravelProfile{},
			"members":     &models.TravelProfileMember{},
			"invitations": &models.UserInvitation{},
			"expenses":    &models.Expense{},
			"budgets":     &models.Budget{},
		} {
			var count int64
			if err := db.Model(model).Count(&count).Error; err != nil {
				t.Fatalf("count %s failed: %v", name, err)
			}
			if count != 0 {
				t.Errorf("expected no %s after cascade, got %d", name, count)
			}
		}
	})

	t.Run("member_cannot_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)
		testutil.CreateTestMember(t, db, profile.ID, member.ID, models.Permissions{})

		err := svc.DeleteProfile(member.ID, profile.ID)
		testutil.AssertAppError(t, err, "NOT_PROFILE_OWNER")
	})

	t.Run("personal_rows_survive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewProfileService(db)

		owner := testutil.CreateTestUser(t, db)
		profile := testutil.CreateTestProfile(t, db, owner.ID)
		testutil.CreateTestExpense(t, db, owner.ID, "personal", 10)

		testutil.AssertNoError(t, svc.DeleteProfile(owner.ID, profile.ID))

		var count int64
		if err := db.Model(&models.Expense{}).Count(&count).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("personal expense must survive profile deletion, got %d rows", count)
		}
	})
}
