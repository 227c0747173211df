package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/booking"
	"github.com/vikrantan5/FitSphere-sub000/internal/cart"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/realtime"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

var errNoAttempt = errors.New("no booking or checkout in progress")

// respondError maps the error taxonomy onto HTTP responses:
// validation 400, expired auth 401 with redirect, backend failures with the
// server's message, a dismissed payment as a soft 200.
func respondError(c *gin.Context, err error) {
	var (
		ve *domain.ValidationError
		ae *apiclient.AuthError
		rf *apiclient.RequestFailure
	)
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})

	case errors.As(err, &ae):
		abortWithRedirect(c, http.StatusUnauthorized, apiclient.UserMessage(err), ae.RedirectTo)
	case errors.Is(err, session.ErrNoSession):
		abortWithRedirect(c, http.StatusUnauthorized, "Please log in to continue", session.LoginPath)

	case errors.Is(err, payment.ErrDismissed):
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"outcome": booking.OutcomeDismissed, "message": "Payment cancelled"})

	case errors.Is(err, booking.ErrVerificationFailed), errors.Is(err, cart.ErrVerificationFailed):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"outcome": booking.OutcomeVerificationFailed, "error": "Payment verification failed"})

	case errors.Is(err, booking.ErrInFlight),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrAbandoned),
		errors.Is(err, booking.ErrNotPayable),
		errors.Is(err, payment.ErrAlreadyResolved),
		errors.Is(err, cart.ErrCheckoutClosed):
		abortWithError(c, http.StatusConflict, err.Error())

	case errors.Is(err, errNoAttempt),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, cart.ErrEmptyCart):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrGeolocationUnavailable):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, realtime.ErrNotConnected):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())

	case errors.As(err, &rf):
		// Backend client errors keep their status; everything else is a bad gateway.
		code := http.StatusBadGateway
		if rf.Status >= 400 && rf.Status < 500 {
			code = rf.Status
		}
		abortWithError(c, code, apiclient.UserMessage(err))

	case errors.Is(err, context.Canceled):
		c.Abort()

	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
