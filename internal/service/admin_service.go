package service

import (
	"context"
	"strings"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// BookingFilter narrows the admin booking list. Empty fields match all.
type BookingFilter struct {
	Status         domain.BookingStatus  `form:"status"`
	PaymentStatus  domain.PaymentStatus  `form:"payment_status"`
	AttendanceType domain.AttendanceType `form:"attendance_type"`
	Query          string                `form:"q"` // matches user, program or trainer name
}

// Match reports whether b passes the filter.
func (f BookingFilter) Match(b domain.Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.AttendanceType != "" && b.AttendanceType != f.AttendanceType {
		return false
	}
	return matchesQuery(f.Query, b.UserName, b.UserEmail, b.ProgramTitle, b.TrainerName)
}

// OrderFilter narrows the admin order list.
type OrderFilter struct {
	OrderStatus   domain.OrderStatus   `form:"order_status"`
	PaymentStatus domain.PaymentStatus `form:"payment_status"`
	Query         string               `form:"q"` // matches customer name, email or order id
}

func (f OrderFilter) Match(o domain.Order) bool {
	if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	return matchesQuery(f.Query, o.Name, o.Email, o.ID)
}

func matchesQuery(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// AdminService backs the admin management screens. Every call is a plain
// CRUD request; there is no cross-entity coordination.
type AdminService interface {
	ListBookings(ctx context.Context, sid string, f BookingFilter) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, sid, id string, status domain.BookingStatus) (*domain.Booking, error)

	ListOrders(ctx context.Context, sid string, f OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, sid, id string, status domain.OrderStatus) (*domain.Order, error)

	ListMedia(ctx context.Context, sid string, kind domain.MediaKind) ([]domain.MediaItem, error)
	UploadMedia(ctx context.Context, sid string, kind domain.MediaKind, up apiclient.MediaUpload) (*domain.MediaItem, error)
	UpdateMedia(ctx context.Context, sid string, kind domain.MediaKind, id string, upd domain.MediaUpdate) (*domain.MediaItem, error)
	DeleteMedia(ctx context.Context, sid string, kind domain.MediaKind, id string) error

	ListUsers(ctx context.Context, sid string) ([]domain.UserProfile, error)
}

type adminService struct {
	backends Backends
}

func NewAdminService(backends Backends) AdminService {
	return &adminService{backends: backends}
}

func (s *adminService) ListBookings(ctx context.Context, sid string, f BookingFilter) ([]domain.Booking, error) {
	all, err := s.backends.For(sid).AllBookings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *adminService) UpdateBookingStatus(ctx context.Context, sid, id string, status domain.BookingStatus) (*domain.Booking, error) {
	switch status {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCompleted, domain.BookingCancelled:
	default:
		return nil, domain.NewValidationError("status", "must be one of: pending confirmed completed cancelled")
	}
	return s.backends.For(sid).UpdateBookingStatus(ctx, id, status)
}

func (s *adminService) ListOrders(ctx context.Context, sid string, f OrderFilter) ([]domain.Order, error) {
	all, err := s.backends.For(sid).AllOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, sid, id string, status domain.OrderStatus) (*domain.Order, error) {
	switch status {
	case domain.OrderPending, domain.OrderConfirmed, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled:
	default:
		return nil, domain.NewValidationError("order_status", "must be one of: pending confirmed shipped delivered cancelled")
	}
	return s.backends.For(sid).UpdateOrderStatus(ctx, id, status)
}

func checkKind(kind domain.MediaKind) error {
	if kind != domain.MediaImage && kind != domain.MediaVideo {
		return domain.NewValidationError("kind", "must be images or videos")
	}
	return nil
}

func (s *adminService) ListMedia(ctx context.Context, sid string, kind domain.MediaKind) ([]domain.MediaItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.backends.For(sid).ListMedia(ctx, kind)
}

func (s *adminService) UploadMedia(ctx context.Context, sid string, kind domain.MediaKind, up apiclient.MediaUpload) (*domain.MediaItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if strings.TrimSpace(up.Title) == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if up.Content == nil || up.FileName == "" {
		return nil, domain.NewValidationError("file", "is required")
	}
	return s.backends.For(sid).UploadMedia(ctx, kind, up)
}

func (s *adminService) UpdateMedia(ctx context.Context, sid string, kind domain.MediaKind, id string, upd domain.MediaUpdate) (*domain.MediaItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.backends.For(sid).UpdateMedia(ctx, kind, id, upd)
}

func (s *adminService) DeleteMedia(ctx context.Context, sid string, kind domain.MediaKind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return s.backends.For(sid).DeleteMedia(ctx, kind, id)
}

func (s *adminService) ListUsers(ctx context.Context, sid string) ([]domain.UserProfile, error) {
	return s.backends.For(sid).ListUsers(ctx)
}
