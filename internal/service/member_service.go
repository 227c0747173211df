package service

import (
	"context"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// Inbox is the notification list with its unread badge count.
type Inbox struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// MemberService serves the signed-in user's own records. Notifications and
// chat history are shared with the admin screens.
type MemberService interface {
	MyBookings(ctx context.Context, sid string) ([]domain.Booking, error)
	GetBooking(ctx context.Context, sid, id string) (*domain.Booking, error)
	MyOrders(ctx context.Context, sid string) ([]domain.Order, error)
	Notifications(ctx context.Context, sid string) (Inbox, error)
	MarkNotificationRead(ctx context.Context, sid, id string) error
	ChatHistory(ctx context.Context, sid, userID string) ([]domain.ChatMessage, error)
}

type memberService struct {
	backends Backends
}

func NewMemberService(backends Backends) MemberService {
	return &memberService{backends: backends}
}

func (s *memberService) MyBookings(ctx context.Context, sid string) ([]domain.Booking, error) {
	return s.backends.For(sid).MyBookings(ctx)
}

func (s *memberService) GetBooking(ctx context.Context, sid, id string) (*domain.Booking, error) {
	return s.backends.For(sid).GetBooking(ctx, id)
}

func (s *memberService) MyOrders(ctx context.Context, sid string) ([]domain.Order, error) {
	return s.backends.For(sid).MyOrders(ctx)
}

func (s *memberService) Notifications(ctx context.Context, sid string) (Inbox, error) {
	ns, err := s.backends.For(sid).ListNotifications(ctx)
	if err != nil {
		return Inbox{}, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return Inbox{Notifications: ns, Unread: domain.CountUnread(ns)}, nil
}

func (s *memberService) MarkNotificationRead(ctx context.Context, sid, id string) error {
	return s.backends.For(sid).MarkNotificationRead(ctx, id)
}

func (s *memberService) ChatHistory(ctx context.Context, sid, userID string) ([]domain.ChatMessage, error) {
	return s.backends.For(sid).ChatHistory(ctx, userID)
}
