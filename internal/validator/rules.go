package validator

import (
	"log"

	"collabhub_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules wires the project's enum rules into the
// validator instance. Registration failures are startup errors.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-creator-role", validateCreatorRole)
	mustRegister("is-availability", validateAvailability)
	mustRegister("is-payment-status", validatePaymentStatus)
}

func validateCreatorRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		// empty values are handled by 'required'
		return true
	}
	return models.IsValidCreatorRole(value)
}

func validateAvailability(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.IsValidAvailability(models.Availability(value))
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PaymentStatus(value) {
	case models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusFailed:
		return true
	default:
		return false
	}
}
