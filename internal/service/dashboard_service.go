package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// AdminStats are the headline numbers of the admin overview.
type AdminStats struct {
	TotalBookings   int     `json:"total_bookings"`
	PendingPayments int     `json:"pending_payments"`
	TotalOrders     int     `json:"total_orders"`
	Revenue         float64 `json:"revenue"`
	TotalUsers      int     `json:"total_users"`
}

// AdminOverview is filled by three independent fetches. A section that
// failed is left empty and its message is reported under Errors.
type AdminOverview struct {
	Bookings []domain.Booking     `json:"bookings"`
	Orders   []domain.Order       `json:"orders"`
	Users    []domain.UserProfile `json:"users"`
	Stats    AdminStats           `json:"stats"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

// MemberOverview is the member dashboard.
type MemberOverview struct {
	Bookings []domain.Booking  `json:"bookings"`
	Orders   []domain.Order    `json:"orders"`
	Inbox    Inbox             `json:"inbox"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type DashboardService interface {
	AdminOverview(ctx context.Context, sid string) (*AdminOverview, error)
	MemberOverview(ctx context.Context, sid string) (*MemberOverview, error)
}

type dashboardService struct {
	backends Backends
	members  MemberService
}

func NewDashboardService(backends Backends, members MemberService) DashboardService {
	return &dashboardService{backends: backends, members: members}
}

// sectionErrors collects per-section failures. Only an authentication
// failure aborts the whole overview, since the session is gone by then.
type sectionErrors struct {
	mu   sync.Mutex
	errs map[string]string
}

func (s *sectionErrors) record(section string, err error) error {
	if err == nil {
		return nil
	}
	if apiclient.IsAuthError(err) {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs == nil {
		s.errs = make(map[string]string)
	}
	s.errs[section] = apiclient.UserMessage(err)
	return nil
}

func (s *dashboardService) AdminOverview(ctx context.Context, sid string) (*AdminOverview, error) {
	api := s.backends.For(sid)
	out := &AdminOverview{
		Bookings: []domain.Booking{},
		Orders:   []domain.Order{},
		Users:    []domain.UserProfile{},
	}
	var failures sectionErrors

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, err := api.AllBookings(gctx)
		if err == nil {
			out.Bookings = bookings
		}
		return failures.record("bookings", err)
	})
	g.Go(func() error {
		orders, err := api.AllOrders(gctx)
		if err == nil {
			out.Orders = orders
		}
		return failures.record("orders", err)
	})
	g.Go(func() error {
		users, err := api.ListUsers(gctx)
		if err == nil {
			out.Users = users
		}
		return failures.record("users", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Stats = computeAdminStats(out.Bookings, out.Orders, out.Users)
	out.Errors = failures.errs
	return out, nil
}

func computeAdminStats(bookings []domain.Booking, orders []domain.Order, users []domain.UserProfile) AdminStats {
	st := AdminStats{
		TotalBookings: len(bookings),
		TotalOrders:   len(orders),
		TotalUsers:    len(users),
	}
	for _, b := range bookings {
		if b.PaymentStatus == domain.PaymentSuccess {
			st.Revenue += b.TotalAmount
		} else if b.Payable() {
			st.PendingPayments++
		}
	}
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentSuccess {
			st.Revenue += o.TotalAmount
		}
	}
	return st
}

func (s *dashboardService) MemberOverview(ctx context.Context, sid string) (*MemberOverview, error) {
	out := &MemberOverview{
		Bookings: []domain.Booking{},
		Orders:   []domain.Order{},
		Inbox:    Inbox{Notifications: []domain.Notification{}},
	}
	var failures sectionErrors

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, err := s.members.MyBookings(gctx, sid)
		if err == nil {
			out.Bookings = bookings
		}
		return failures.record("bookings", err)
	})
	g.Go(func() error {
		orders, err := s.members.MyOrders(gctx, sid)
		if err == nil {
			out.Orders = orders
		}
		return failures.record("orders", err)
	})
	g.Go(func() error {
		inbox, err := s.members.Notifications(gctx, sid)
		if err == nil {
			out.Inbox = inbox
		}
		return failures.record("notifications", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Errors = failures.errs
	return out, nil
}
