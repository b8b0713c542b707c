package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	apperrors "tripledger/internal/errors"
	"tripledger/internal/ledger"
	"tripledger/internal/models"
	"tripledger/internal/pagination"
	"tripledger/internal/services"
	"tripledger/internal/store/filestore"
)

const testProfileID = "3b241101-e2bb-4255-8caf-4136c566a962"

// --- mock profile service ---

type mockProfileService struct {
	createProfileFn   func(ownerID, name, description string) (*models.TravelProfile, error)
	getUserProfilesFn func(userID string) ([]models.TravelProfile, error)
	getProfileByIDFn  func(userID, profileID string) (*models.TravelProfile, error)
	authorizeFn       func(userID, profileID string, capability services.Capability) error
	deleteProfileFn   func(userID, profileID string) error
}

func (m *mockProfileService) CreateProfile(ownerID, name, description string) (*models.TravelProfile, error) {
	if m.createProfileFn != nil {
		return m.createProfileFn(ownerID, name, description)
	}
	return &models.TravelProfile{}, nil
}

func (m *mockProfileService) GetUserProfiles(userID string) ([]models.TravelProfile, error) {
	if m.getUserProfilesFn != nil {
		return m.getUserProfilesFn(userID)
	}
	return []models.TravelProfile{}, nil
}

func (m *mockProfileService) GetProfileByID(userID, profileID string) (*models.TravelProfile, error) {
	if m.getProfileByIDFn != nil {
		return m.getProfileByIDFn(userID, profileID)
	}
	return &models.TravelProfile{}, nil
}

func (m *mockProfileService) Authorize(userID, profileID string, capability services.Capability) error {
	if m.authorizeFn != nil {
		return m.authorizeFn(userID, profileID, capability)
	}
	return nil
}

func (m *mockProfileService) DeleteProfile(userID, profileID string) error {
	if m.deleteProfileFn != nil {
		return m.deleteProfileFn(userID, profileID)
	}
	return nil
}

var _ services.ProfileServicer = (*mockProfileService)(nil)

// --- mock invitation service ---

type mockInvitationService struct {
	sendInvitationFn        func(inviterID, profileID, inviteeEmail string, permissions models.Permissions) (*models.UserInvitation, error)
	getProfileInvitationsFn func(userID, profileID string, status models.InvitationStatus, page pagination.PageRequest) (*pagination.PageResponse[models.UserInvitation], error)
	getUserInvitationsFn    func(userID string) ([]models.UserInvitation, error)
	acceptInvitationFn      func(userID, invitationID string) (*models.TravelProfileMember, error)
	declineInvitationFn     func(userID, invitationID string) error
}

func (m *mockInvitationService) SendInvitation(inviterID, profileID, inviteeEmail string, permissions models.Permissions) (*models.UserInvitation, error) {
	if m.sendInvitationFn != nil {
		return m.sendInvitationFn(inviterID, profileID, inviteeEmail, permissions)
	}
	return &models.UserInvitation{}, nil
}

func (m *mockInvitationService) GetProfileInvitations(userID, profileID string, status models.InvitationStatus, page pagination.PageRequest) (*pagination.PageResponse[models.UserInvitation], error) {
	if m.getProfileInvitationsFn != nil {
		return m.getProfileInvitationsFn(userID, profileID, status, page)
	}
	resp := pagination.NewPageResponse([]models.UserInvitation{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockInvitationService) GetUserInvitations(userID string) ([]models.UserInvitation, error) {
	if m.getUserInvitationsFn != nil {
		return m.getUserInvitationsFn(userID)
	}
	return []models.UserInvitation{}, nil
}

func (m *mockInvitationService) AcceptInvitation(userID, invitationID string) (*models.TravelProfileMember, error) {
	if m.acceptInvitationFn != nil {
		return m.acceptInvitationFn(userID, invitationID)
	}
	return &models.TravelProfileMember{}, nil
}

func (m *mockInvitationService) DeclineInvitation(userID, invitationID string) error {
	if m.declineInvitationFn != nil {
		return m.declineInvitationFn(userID, invitationID)
	}
	return nil
}

var _ services.InvitationServicer = (*mockInvitationService)(nil)

// --- helpers ---

func newTestManager(t *testing.T) *ledger.Manager {
	t.Helper()
	store, err := filestore.New(afero.NewMemMapFs(), "data")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return ledger.NewManager(store)
}

func setupLedgerRouter(handler *LedgerHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.GET("/ledger", handler.GetLedger)
	auth.POST("/ledger/reload", handler.ReloadLedger)
	auth.POST("/expenses", handler.CreateExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	auth.PUT("/budget", handler.SetBudget)
	auth.DELETE("/budget", handler.RemoveBudget)
	auth.PUT("/countdown", handler.SetCountdown)
	auth.DELETE("/countdown", handler.ClearCountdown)
	return r
}

// --- tests ---

func TestLedgerHandler_GetLedger(t *testing.T) {
	t.Run("returns ready snapshot with metrics", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/ledger", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["state"] != "ready" {
			t.Errorf("expected ready state, got %v", result["state"])
		}
		if _, ok := result["summary"]; !ok {
			t.Error("expected summary in response")
		}
	})

	t.Run("rejects malformed profile_id", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/ledger?profile_id=not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("profile scope requires view access", func(t *testing.T) {
		profiles := &mockProfileService{
			authorizeFn: func(userID, profileID string, capability services.Capability) error {
				return apperrors.ErrProfileNotFound
			},
		}
		handler := NewLedgerHandler(newTestManager(t), profiles)
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/ledger?profile_id="+testProfileID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestLedgerHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 with confirmed record", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/expenses", `{"category":"flights","amount":450}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["id"] == "" {
			t.Error("expected server-assigned id")
		}
		if result["category"] != "flights" {
			t.Errorf("unexpected category: %v", result["category"])
		}
	})

	t.Run("rejects blank category", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/expenses", `{"category":"   ","amount":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EMPTY_CATEGORY")
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/expenses", `{"category":"food","amount":-5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NEGATIVE_AMOUNT")
	})

	t.Run("profile scope checks add capability", func(t *testing.T) {
		var checked services.Capability
		profiles := &mockProfileService{
			authorizeFn: func(userID, profileID string, capability services.Capability) error {
				checked = capability
				return apperrors.ErrForbidden
			},
		}
		handler := NewLedgerHandler(newTestManager(t), profiles)
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/expenses?profile_id="+testProfileID, `{"category":"food","amount":10}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if checked != services.CapabilityAddExpenses {
			t.Errorf("expected add_expenses capability check, got %s", checked)
		}
	})
}

func TestLedgerHandler_Budget(t *testing.T) {
	t.Run("set and remove", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "PUT", "/budget", `{"amount":1500}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = doRequest(r, "DELETE", "/budget", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		// Removing an absent budget also succeeds.
		rec = doRequest(r, "DELETE", "/budget", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on repeat delete, got %d", rec.Code)
		}
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "PUT", "/budget", `{"amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NON_POSITIVE_BUDGET")
	})
}

func TestLedgerHandler_Countdown(t *testing.T) {
	t.Run("sets future date with derived days", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		travelDate := time.Now().Add(10 * 24 * time.Hour).Format(time.RFC3339)
		rec := doRequest(r, "PUT", "/countdown", `{"travel_date":"`+travelDate+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["days_until_travel"] == nil {
			t.Error("expected days_until_travel in response")
		}
	})

	t.Run("rejects past date", func(t *testing.T) {
		handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "PUT", "/countdown", `{"travel_date":"2020-01-01T00:00:00Z"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PAST_TRAVEL_DATE")
	})
}

func TestLedgerHandler_UpdateAndDeleteExpense(t *testing.T) {
	handler := NewLedgerHandler(newTestManager(t), &mockProfileService{})
	r := setupLedgerRouter(handler)

	rec := doRequest(r, "POST", "/expenses", `{"category":"food","amount":25}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}
	id := parseJSON(t, rec)["id"].(string)

	rec = doRequest(r, "PUT", "/expenses/"+id, `{"amount":30,"category":"groceries"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["category"] != "groceries" {
		t.Error("expected updated category")
	}

	rec = doRequest(r, "DELETE", "/expenses/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(r, "DELETE", "/expenses/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
}
