package domain

import (
	"strings"
	"time"
)

// AttendanceType says where a booked session happens.
type AttendanceType string

const (
	AttendanceGym       AttendanceType = "gym"
	AttendanceHomeVisit AttendanceType = "home_visit"
)

// BookingStatus tracks the booking lifecycle on the backend.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus is shared by bookings and orders.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// BookingDraft is the client-held booking being filled in. It is never
// persisted; it is discarded if the attempt is abandoned.
type BookingDraft struct {
	ProgramID      string         `json:"program_id"`
	TrainerID      string         `json:"trainer_id"`
	BookingDate    string         `json:"booking_date"` // YYYY-MM-DD
	TimeSlot       string         `json:"time_slot"`
	AttendanceType AttendanceType `json:"attendance_type"`
	UserLocation   *Location      `json:"user_location,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// Validate checks the draft before create-booking is called.
func (d BookingDraft) Validate() error {
	switch {
	case d.ProgramID == "":
		return NewValidationError("program_id", "is required")
	case d.TrainerID == "":
		return NewValidationError("trainer_id", "please select a trainer")
	case d.BookingDate == "":
		return NewValidationError("booking_date", "please select a date")
	case d.TimeSlot == "":
		return NewValidationError("time_slot", "please select a time slot")
	}
	if _, err := time.Parse(DateLayout, d.BookingDate); err != nil {
		return NewValidationError("booking_date", "must be formatted as YYYY-MM-DD")
	}
	switch d.AttendanceType {
	case AttendanceGym:
	case AttendanceHomeVisit:
		if !d.UserLocation.Usable() {
			return NewValidationError("user_location", "please set your location for the home visit")
		}
	default:
		return NewValidationError("attendance_type", "must be gym or home_visit")
	}
	return nil
}

// Payload strips the location for gym bookings, where it is ignored.
func (d BookingDraft) Payload() BookingDraft {
	if d.AttendanceType != AttendanceHomeVisit {
		d.UserLocation = nil
	}
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// Booking is the server-confirmed booking.
type Booking struct {
	ID             string         `json:"id" validate:"required"`
	UserID         string         `json:"user_id,omitempty"`
	UserName       string         `json:"user_name,omitempty"`
	UserEmail      string         `json:"user_email,omitempty"`
	ProgramID      string         `json:"program_id" validate:"required"`
	ProgramTitle   string         `json:"program_title,omitempty"`
	TrainerID      string         `json:"trainer_id"`
	TrainerName    string         `json:"trainer_name,omitempty"`
	BookingDate    string         `json:"booking_date"`
	TimeSlot       string         `json:"time_slot"`
	AttendanceType AttendanceType `json:"attendance_type" validate:"omitempty,oneof=gym home_visit"`
	UserLocation   *Location      `json:"user_location,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	TotalAmount    float64        `json:"total_amount"`
	Status         BookingStatus  `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	PaymentStatus  PaymentStatus  `json:"payment_status" validate:"omitempty,oneof=pending success failed"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
}

// Payable is true while payment has not succeeded and the booking is alive.
func (b Booking) Payable() bool {
	return b.PaymentStatus != PaymentSuccess && b.Status != BookingCancelled
}

// SlotAvailability is the available-slots response for one trainer and date.
type SlotAvailability struct {
	TrainerID      string   `json:"trainer_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

// PaymentOrder is the gateway order handle issued by the backend.
type PaymentOrder struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required"`
	Amount         int64  `json:"amount" validate:"gte=0"` // minor units
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id,omitempty"`
}

// PaymentVerification is the verify-payment response for bookings and orders.
type PaymentVerification struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}
