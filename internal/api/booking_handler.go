package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/booking"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

// attemptTTL bounds how long an untouched booking attempt is kept.
const attemptTTL = 30 * time.Minute

// BookingHandler drives booking attempts. Each browser session holds at
// most one attempt; opening a new one abandons the previous.
type BookingHandler struct {
	backends       service.Backends
	catalogService service.CatalogService
	memberService  service.MemberService
	receiptService service.ReceiptService
	metrics        *metrics.Metrics

	merchant payment.Merchant
	fallback location.Point
	now      func() time.Time

	attempts *registry[*booking.Workflow]
}

// BookingSettings are the static inputs of every attempt.
type BookingSettings struct {
	Merchant         payment.Merchant
	FallbackLocation location.Point
}

func NewBookingHandler(backends service.Backends, catalog service.CatalogService, members service.MemberService, receipts service.ReceiptService, m *metrics.Metrics, settings BookingSettings) *BookingHandler {
	return &BookingHandler{
		backends:       backends,
		catalogService: catalog,
		memberService:  members,
		receiptService: receipts,
		metrics:        m,
		merchant:       settings.Merchant,
		fallback:       settings.FallbackLocation,
		now:            time.Now,
		attempts:       newRegistry(attemptTTL, abandonWorkflow),
	}
}

// --- Request Structs ---

type StartAttemptRequest struct {
	ProgramID string `json:"program_id" binding:"required"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// UpdateAttemptRequest applies only the fields that are present, in the
// order attendance, trainer, date, slot, notes, location.
type UpdateAttemptRequest struct {
	AttendanceType *domain.AttendanceType `json:"attendance_type"`
	TrainerID      *string                `json:"trainer_id"`
	BookingDate    *string                `json:"booking_date"`
	TimeSlot       *string                `json:"time_slot"`
	Notes          *string                `json:"notes"`
	Location       *LocationRequest       `json:"location"`
}

// DeviceLocationRequest carries the position the browser obtained. A
// missing coordinate means geolocation was denied or unsupported.
type DeviceLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PaymentResultRequest is what the widget handler or ondismiss posts back.
type PaymentResultRequest struct {
	Dismissed bool `json:"dismissed"`
	payment.Confirmation
}

func (r PaymentResultRequest) Result() payment.Result {
	if r.Dismissed {
		return payment.Dismissal()
	}
	return payment.Succeeded(r.Confirmation)
}

type unavailableGeolocator struct{}

func (unavailableGeolocator) CurrentPosition(context.Context) (location.Point, error) {
	return location.Point{}, location.ErrGeolocationUnavailable
}

// --- Handler Methods ---

func (h *BookingHandler) attemptOptions(sess domain.Session) booking.Options {
	opts := booking.Options{
		Merchant:         h.merchant,
		FallbackLocation: h.fallback,
		Now:              h.now,
	}
	if sess.Profile != nil {
		opts.Prefill = payment.Prefill{
			Name:    sess.Profile.Name,
			Email:   sess.Profile.Email,
			Contact: sess.Profile.Phone,
		}
	}
	return opts
}

func (h *BookingHandler) track(sid string, w *booking.Workflow) {
	h.attempts.Put(sid, w)
	h.updateGauge()
}

func (h *BookingHandler) release(sid string) {
	h.attempts.Remove(sid)
	h.updateGauge()
}

func (h *BookingHandler) updateGauge() {
	if h.metrics != nil {
		h.metrics.ActiveAttempts.Set(float64(h.attempts.Len()))
	}
}

func (h *BookingHandler) outcome(o string) {
	if h.metrics != nil {
		h.metrics.IncBookingOutcome(o)
	}
}

func (h *BookingHandler) current(c *gin.Context) (*booking.Workflow, bool) {
	w, ok := h.attempts.Get(getSessionID(c))
	if !ok {
		respondError(c, errNoAttempt)
		return nil, false
	}
	return w, true
}

// StartAttempt godoc
// @Summary Open a booking attempt for a program
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body StartAttemptRequest true "Program to book"
// @Success 201 {object} booking.View
// @Failure 401 {object} gin.H "Not signed in"
// @Router /booking/attempts [post]
func (h *BookingHandler) StartAttempt(c *gin.Context) {
	var req StartAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := getSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sid := getSessionID(c)

	program, err := h.catalogService.GetProgram(c.Request.Context(), sid, req.ProgramID)
	if err != nil {
		respondError(c, err)
		return
	}

	w := booking.New(*program, h.backends.For(sid), h.attemptOptions(sess))
	h.track(sid, w)
	c.JSON(http.StatusCreated, w.Snapshot())
}

// CurrentAttempt returns the live attempt of this browser.
func (h *BookingHandler) CurrentAttempt(c *gin.Context) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// UpdateAttempt godoc
// @Summary Change attendance, trainer, date, slot, notes or location
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body UpdateAttemptRequest true "Fields to change"
// @Success 200 {object} booking.View
// @Failure 400 {object} gin.H "Invalid selection"
// @Failure 409 {object} gin.H "Attempt is busy or past configuration"
// @Router /booking/attempts/current [patch]
func (h *BookingHandler) UpdateAttempt(c *gin.Context) {
	var req UpdateAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	w, ok := h.current(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if req.AttendanceType != nil {
		if err := w.SetAttendance(*req.AttendanceType); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.TrainerID != nil {
		if err := w.SelectTrainer(ctx, *req.TrainerID); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.BookingDate != nil {
		if err := w.SelectDate(ctx, *req.BookingDate); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.TimeSlot != nil {
		if err := w.SelectSlot(*req.TimeSlot); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Notes != nil {
		if err := w.SetNotes(*req.Notes); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Location != nil {
		pt := location.Point{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
		if err := w.SetLocation(pt, req.Location.Address); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// UseDeviceLocation fills the home visit location from the browser's position.
func (h *BookingHandler) UseDeviceLocation(c *gin.Context) {
	var req DeviceLocationRequest
	if !bindJSON(c, &req) {
		return
	}
	w, ok := h.current(c)
	if !ok {
		return
	}

	var g location.Geolocator = unavailableGeolocator{}
	if req.Latitude != nil && req.Longitude != nil {
		g = location.StaticGeolocator(location.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	}
	if err := w.UseDeviceLocation(c.Request.Context(), g); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// Submit godoc
// @Summary Create the booking and start payment
// @Tags Booking
// @Produce json
// @Success 200 {object} booking.View "Checkout options under checkout"
// @Success 202 {object} gin.H "Booking created, payment deferred"
// @Failure 400 {object} gin.H "Incomplete booking"
// @Router /booking/attempts/current/submit [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	h.startPayment(c, w, w.Submit)
}

// startPayment runs step and answers with the widget options, or with 202
// when the booking exists but payment could not be started.
func (h *BookingHandler) startPayment(c *gin.Context, w *booking.Workflow, step func(context.Context) (payment.Options, error)) {
	_, err := step(c.Request.Context())
	if err != nil {
		if errors.Is(err, booking.ErrPaymentDeferred) {
			log.Printf("WARN: Payment initiation failed, booking left payable: %v", err)
			h.outcome(string(booking.StatePaymentDeferred))
			snapshot := w.Snapshot()
			h.release(getSessionID(c))
			c.JSON(http.StatusAccepted, gin.H{
				"outcome": booking.StatePaymentDeferred,
				"message": booking.ErrPaymentDeferred.Error(),
				"attempt": snapshot,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// PaymentResult godoc
// @Summary Report the widget result for the current attempt
// @Tags Booking
// @Accept json
// @Produce json
// @Param result body PaymentResultRequest true "Widget result"
// @Success 200 {object} gin.H "paid or payment_dismissed"
// @Failure 402 {object} gin.H "Verification failed"
// @Failure 409 {object} gin.H "Result already received"
// @Router /booking/attempts/current/result [post]
func (h *BookingHandler) PaymentResult(c *gin.Context) {
	var req PaymentResultRequest
	if !bindJSON(c, &req) {
		return
	}
	w, ok := h.current(c)
	if !ok {
		return
	}
	sid := getSessionID(c)

	outcome, err := w.Resolve(c.Request.Context(), req.Result())
	if err != nil {
		if outcome == booking.OutcomeVerificationFailed {
			log.Printf("ERROR: Booking payment verification failed: %v", err)
			h.outcome(string(outcome))
			h.release(sid)
		}
		respondError(c, err)
		return
	}

	h.outcome(string(outcome))
	h.release(sid)
	switch outcome {
	case booking.OutcomePaid:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome, "booking": w.Booking(), "redirect": "/dashboard"})
	default:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome, "message": "Payment cancelled. You can pay later from your bookings.", "booking": w.Booking()})
	}
}

// AbandonAttempt closes the dialog. Calls still in flight are ignored.
func (h *BookingHandler) AbandonAttempt(c *gin.Context) {
	sid := getSessionID(c)
	if w, ok := h.attempts.Remove(sid); ok {
		w.Abandon()
	}
	h.updateGauge()
	c.Status(http.StatusNoContent)
}

// MyBookings lists the signed-in member's bookings.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.memberService.MyBookings(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// PayExisting godoc
// @Summary Pay for a booking that is still pending
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} booking.View
// @Failure 409 {object} gin.H "Booking is not awaiting payment"
// @Router /bookings/{id}/pay [post]
func (h *BookingHandler) PayExisting(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sid := getSessionID(c)

	b, err := h.memberService.GetBooking(c.Request.Context(), sid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	w, err := booking.ForExistingBooking(*b, h.backends.For(sid), h.attemptOptions(sess))
	if err != nil {
		respondError(c, err)
		return
	}
	h.track(sid, w)
	h.startPayment(c, w, w.InitiatePayment)
}

// Receipt streams a PDF receipt for one booking.
func (h *BookingHandler) Receipt(c *gin.Context) {
	receipt, err := h.receiptService.BookingReceipt(c.Request.Context(), getSessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, receipt.FileName, "application/pdf", receipt.Data)
}

func sendAttachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// Forget drops this browser's attempt; chained in front of logout.
func (h *BookingHandler) Forget(c *gin.Context) {
	if w, ok := h.attempts.Remove(getSessionID(c)); ok {
		w.Abandon()
		h.updateGauge()
	}
	c.Next()
}
