package domain

import "time"

// Program is a purchasable training program. Read-only for the dashboard
// apart from the admin CRUD screens.
type Program struct {
	ID                        string    `json:"id" validate:"required"`
	Title                     string    `json:"title" validate:"required"`
	Description               string    `json:"description,omitempty"`
	Price                     float64   `json:"price" validate:"gte=0"`
	DurationWeeks             int       `json:"duration_weeks" validate:"gte=0"`
	SessionsPerWeek           int       `json:"sessions_per_week" validate:"gte=0"`
	SupportsGymAttendance     bool      `json:"supports_gym_attendance"`
	SupportsHomeVisit         bool      `json:"supports_home_visit"`
	HomeVisitAdditionalCharge float64   `json:"home_visit_additional_charge" validate:"gte=0"`
	TrainerID                 string    `json:"trainer_id,omitempty"`
	Category                  string    `json:"category,omitempty"`
	Difficulty                string    `json:"difficulty,omitempty"`
	ImageURL                  string    `json:"image_url,omitempty"`
	CreatedAt                 time.Time `json:"created_at,omitempty"`
}

// Supports reports whether the program can be attended in the given mode.
func (p Program) Supports(mode AttendanceType) bool {
	switch mode {
	case AttendanceGym:
		return p.SupportsGymAttendance
	case AttendanceHomeVisit:
		return p.SupportsHomeVisit
	}
	return false
}

// DefaultAttendance is gym when supported, otherwise home visit.
func (p Program) DefaultAttendance() AttendanceType {
	if p.SupportsGymAttendance {
		return AttendanceGym
	}
	return AttendanceHomeVisit
}

// PriceFor returns the total for one booking in the given mode.
func (p Program) PriceFor(mode AttendanceType) float64 {
	if mode == AttendanceHomeVisit {
		return p.Price + p.HomeVisitAdditionalCharge
	}
	return p.Price
}

// ProgramInput is the admin create/update payload.
type ProgramInput struct {
	Title                     string  `json:"title" validate:"required"`
	Description               string  `json:"description,omitempty"`
	Price                     float64 `json:"price" validate:"gte=0"`
	DurationWeeks             int     `json:"duration_weeks" validate:"gte=1"`
	SessionsPerWeek           int     `json:"sessions_per_week" validate:"gte=1"`
	SupportsGymAttendance     bool    `json:"supports_gym_attendance"`
	SupportsHomeVisit         bool    `json:"supports_home_visit"`
	HomeVisitAdditionalCharge float64 `json:"home_visit_additional_charge" validate:"gte=0"`
	TrainerID                 string  `json:"trainer_id,omitempty"`
	Category                  string  `json:"category,omitempty"`
	Difficulty                string  `json:"difficulty,omitempty"`
}

// Trainer as listed by the backend.
type Trainer struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Specialization string `json:"specialization,omitempty"`
	IsActive       bool   `json:"is_active"`
}

// ActiveTrainers keeps only trainers that can be selected for a booking.
func ActiveTrainers(trainers []Trainer) []Trainer {
	active := make([]Trainer, 0, len(trainers))
	for _, t := range trainers {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

// Product is a shop item.
type Product struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	Category    string  `json:"category,omitempty"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// Testimonial left by a member.
type Testimonial struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required"`
	Message   string    `json:"message" validate:"required"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
