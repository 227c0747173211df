package service

import (
	"context"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// CatalogService serves programs, trainers, products and testimonials.
// Reads go out with the caller's token when one exists.
type CatalogService interface {
	ListPrograms(ctx context.Context, sid string, f apiclient.ProgramFilter) ([]domain.Program, error)
	GetProgram(ctx context.Context, sid, id string) (*domain.Program, error)
	// ActiveTrainers lists only trainers selectable for a booking.
	ActiveTrainers(ctx context.Context, sid string) ([]domain.Trainer, error)
	ListProducts(ctx context.Context, sid, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, sid, id string) (*domain.Product, error)
	ListTestimonials(ctx context.Context, sid string) ([]domain.Testimonial, error)
	CreateTestimonial(ctx context.Context, sid string, t domain.Testimonial) (*domain.Testimonial, error)

	// Admin program management
	CreateProgram(ctx context.Context, sid string, in domain.ProgramInput) (*domain.Program, error)
	UpdateProgram(ctx context.Context, sid, id string, in domain.ProgramInput) (*domain.Program, error)
	DeleteProgram(ctx context.Context, sid, id string) error
}

type catalogService struct {
	backends Backends
}

func NewCatalogService(backends Backends) CatalogService {
	return &catalogService{backends: backends}
}

func (s *catalogService) ListPrograms(ctx context.Context, sid string, f apiclient.ProgramFilter) ([]domain.Program, error) {
	return s.backends.For(sid).ListPrograms(ctx, f)
}

func (s *catalogService) GetProgram(ctx context.Context, sid, id string) (*domain.Program, error) {
	return s.backends.For(sid).GetProgram(ctx, id)
}

func (s *catalogService) ActiveTrainers(ctx context.Context, sid string) ([]domain.Trainer, error) {
	trainers, err := s.backends.For(sid).ListTrainers(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActiveTrainers(trainers), nil
}

func (s *catalogService) ListProducts(ctx context.Context, sid, category string) ([]domain.Product, error) {
	return s.backends.For(sid).ListProducts(ctx, category)
}

func (s *catalogService) GetProduct(ctx context.Context, sid, id string) (*domain.Product, error) {
	return s.backends.For(sid).GetProduct(ctx, id)
}

func (s *catalogService) ListTestimonials(ctx context.Context, sid string) ([]domain.Testimonial, error) {
	return s.backends.For(sid).ListTestimonials(ctx)
}

func (s *catalogService) CreateTestimonial(ctx context.Context, sid string, t domain.Testimonial) (*domain.Testimonial, error) {
	if err := domain.Validate(t); err != nil {
		return nil, err
	}
	return s.backends.For(sid).CreateTestimonial(ctx, t)
}

func (s *catalogService) CreateProgram(ctx context.Context, sid string, in domain.ProgramInput) (*domain.Program, error) {
	if err := validateProgramInput(in); err != nil {
		return nil, err
	}
	return s.backends.For(sid).CreateProgram(ctx, in)
}

func (s *catalogService) UpdateProgram(ctx context.Context, sid, id string, in domain.ProgramInput) (*domain.Program, error) {
	if err := validateProgramInput(in); err != nil {
		return nil, err
	}
	return s.backends.For(sid).UpdateProgram(ctx, id, in)
}

func (s *catalogService) DeleteProgram(ctx context.Context, sid, id string) error {
	return s.backends.For(sid).DeleteProgram(ctx, id)
}

func validateProgramInput(in domain.ProgramInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	if !in.SupportsGymAttendance && !in.SupportsHomeVisit {
		return domain.NewValidationError("supports_gym_attendance", "at least one attendance mode is required")
	}
	if !in.SupportsHomeVisit && in.HomeVisitAdditionalCharge > 0 {
		return domain.NewValidationError("home_visit_additional_charge", "only applies to programs with home visits")
	}
	return nil
}
