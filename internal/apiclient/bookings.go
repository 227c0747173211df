package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
)

// CreateBooking submits a validated draft.
func (c *Client) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	var out domain.Booking
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/bookings", path: "/api/bookings", body: draft.Payload()}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MyBookings lists the signed-in member's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/bookings/my-bookings", path: "/api/bookings/my-bookings"}, &out)
	return out, err
}

// AllBookings lists every booking (admin).
func (c *Client) AllBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/bookings", path: "/api/bookings"}, &out)
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var out domain.Booking
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/bookings/{id}", path: "/api/bookings/" + pathEscape(id)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBookingStatus is the admin status change.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	var out domain.Booking
	body := map[string]domain.BookingStatus{"status": status}
	err := c.do(ctx, call{method: http.MethodPatch, route: "/api/bookings/{id}/status", path: "/api/bookings/" + pathEscape(id) + "/status", body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableSlots returns the open slots of a trainer on a date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, trainerID, date string) ([]string, error) {
	q := url.Values{}
	q.Set("trainer_id", trainerID)
	q.Set("date", date)
	var out domain.SlotAvailability
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/bookings/available-slots", path: "/api/bookings/available-slots", query: q}, &out)
	if err != nil {
		return nil, err
	}
	if out.AvailableSlots == nil {
		return []string{}, nil
	}
	return out.AvailableSlots, nil
}

// CreateBookingPayment obtains a gateway order handle for an existing booking.
func (c *Client) CreateBookingPayment(ctx context.Context, bookingID string) (*domain.PaymentOrder, error) {
	var out domain.PaymentOrder
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/bookings/{id}/create-payment", path: "/api/bookings/" + pathEscape(bookingID) + "/create-payment"}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyBookingPayment forwards the widget confirmation verbatim.
func (c *Client) VerifyBookingPayment(ctx context.Context, bookingID string, conf payment.Confirmation) (*domain.PaymentVerification, error) {
	var out domain.PaymentVerification
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/bookings/{id}/verify-payment", path: "/api/bookings/" + pathEscape(bookingID) + "/verify-payment", body: conf}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
