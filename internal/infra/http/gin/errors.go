package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	wizardapp "staybook/internal/app/handlers/wizard"
	"staybook/internal/app/middleware"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/infra/validation"
)

type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
	Wizard any                     `json:"wizard,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainbooking.ErrWizardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrAvailabilityConflict),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrIntervalsStale),
		errors.Is(err, domainbooking.ErrConcurrentUpdate),
		errors.Is(err, middleware.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrStepInvalid),
		errors.Is(err, domainbooking.ErrDegeneratePricing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, validation.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, wizardapp.ErrDependenciesMissing),
		errors.Is(err, domainbooking.ErrSubmitterMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
		_ = c.Error(err)
	}
	var rejected *wizardapp.RejectedError
	if errors.As(err, &rejected) {
		body.Wizard = rejected.Wizard
	}
	var invalid *validation.Error
	if errors.As(err, &invalid) {
		body.Fields = invalid.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error()})
}
