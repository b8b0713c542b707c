package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tripledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProfile creates an active travel profile owned by the given user.
func CreateTestProfile(t *testing.T, db *gorm.DB, ownerID string) *models.TravelProfile {
	t.Helper()

	profile := &models.TravelProfile{
		OwnerID:  ownerID,
		Name:     fmt.Sprintf("Test Trip %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestMember adds a user to a profile with the given permission bundle.
func CreateTestMember(t *testing.T, db *gorm.DB, profileID, userID string, perms models.Permissions) *models.TravelProfileMember {
	t.Helper()

	member := &models.TravelProfileMember{
		TravelProfileID: profileID,
		UserID:          userID,
		Permissions:     perms,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestInvitation creates a pending invitation expiring in 7 days.
func CreateTestInvitation(t *testing.T, db *gorm.DB, profileID, inviterID, inviteeEmail string) *models.UserInvitation {
	t.Helper()

	invitation := &models.UserInvitation{
		TravelProfileID: profileID,
		InviterID:       inviterID,
		InviteeEmail:    inviteeEmail,
		Status:          models.InvitationStatusPending,
		Permissions:     models.Permissions{CanAddExpenses: true, CanEditExpenses: true},
		ExpiresAt:       time.Now().Add(7 * 24 * time.Hour),
	}
	if err := db.Create(invitation).Error; err != nil {
		t.Fatalf("failed to create test invitation: %v", err)
	}
	return invitation
}

// CreateTestExpense creates an expense in the user's personal scope.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, category string, amount float64) *models.Expense {
	t.Helper()
	return CreateTestProfileExpense(t, db, userID, nil, category, amount)
}

// CreateTestProfileExpense creates an expense in the given scope. A nil
// profileID means the personal scope.
func CreateTestProfileExpense(t *testing.T, db *gorm.DB, userID string, profileID *string, category string, amount float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:          userID,
		TravelProfileID: profileID,
		Category:        category,
		Amount:          amount,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget creates a budget in the given scope. A nil profileID means
// the personal scope.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, profileID *string, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:          userID,
		TravelProfileID: profileID,
		Amount:          amount,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCountdown creates an active countdown in the given scope.
func CreateTestCountdown(t *testing.T, db *gorm.DB, userID string, profileID *string, travelDate time.Time) *models.TravelCountdown {
	t.Helper()

	countdown := &models.TravelCountdown{
		UserID:          userID,
		TravelProfileID: profileID,
		TravelDate:      travelDate,
		IsActive:        true,
	}
	if err := db.Create(countdown).Error; err != nil {
		t.Fatalf("failed to create test countdown: %v", err)
	}
	return countdown
}
