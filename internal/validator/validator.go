// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("invitation_status", validateInvitationStatus)
	}
}

// validateInvitationStatus accepts the four effective invitation statuses.
func validateInvitationStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "accepted", "declined", "expired":
		return true
	}
	return false
}
