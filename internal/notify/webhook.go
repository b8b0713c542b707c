// Package notify delivers fire-and-forget notifications to an external
// webhook. The core never blocks on delivery: an invitation row counts as
// fully created regardless of whether the notification went out.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tripledger/internal/logger"
	"tripledger/internal/models"
)

// InvitationNotifier is notified after an invitation row has been created.
type InvitationNotifier interface {
	InvitationCreated(invitation *models.UserInvitation)
}

// Webhook posts invitation events to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook poster. An empty URL disables delivery.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

var _ InvitationNotifier = (*Webhook)(nil)

type invitationEvent struct {
	Type            string    `json:"type"`
	InvitationID    string    `json:"invitation_id"`
	TravelProfileID string    `json:"travel_profile_id"`
	InviteeEmail    string    `json:"invitee_email"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// InvitationCreated posts the event in the background. Failures are logged
// and otherwise ignored.
func (w *Webhook) InvitationCreated(invitation *models.UserInvitation) {
	if w.url == "" {
		return
	}

	event := invitationEvent{
		Type:            "invitation.created",
		InvitationID:    invitation.ID,
		TravelProfileID: invitation.TravelProfileID,
		InviteeEmail:    invitation.InviteeEmail,
		ExpiresAt:       invitation.ExpiresAt,
	}

	go func() {
		body, err := json.Marshal(event)
		if err != nil {
			logger.Get().Warnw("invitation webhook: marshal failed", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			logger.Get().Warnw("invitation webhook: request failed", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			logger.Get().Warnw("invitation webhook: delivery failed",
				"invitation_id", invitation.ID, "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			logger.Get().Warnw("invitation webhook: unexpected status",
				"invitation_id", invitation.ID, "status", resp.StatusCode)
		}
	}()
}

// Nop is an InvitationNotifier that does nothing. Used when no webhook is
// configured and in tests.
type Nop struct{}

// InvitationCreated implements InvitationNotifier.
func (Nop) InvitationCreated(*models.UserInvitation) {}
