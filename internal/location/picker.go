// Package location captures and displays geographic points for home visits.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

var ErrGeolocationUnavailable = errors.New("device location is not available")

// Point is a bare coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geolocator is the platform geolocation capability.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (Point, error)
}

// StaticGeolocator reports a position that was already obtained elsewhere,
// typically by the browser before it called the dashboard.
type StaticGeolocator Point

func (g StaticGeolocator) CurrentPosition(context.Context) (Point, error) {
	return Point(g), nil
}

// Picker holds a candidate point and a free-text address. Every change is
// emitted to OnChange as a live draft, not a commit.
type Picker struct {
	mu       sync.Mutex
	point    Point
	address  string
	onChange func(domain.Location)
}

// NewPicker starts at the fallback point with an empty address.
func NewPicker(fallback Point, onChange func(domain.Location)) *Picker {
	return &Picker{point: fallback, onChange: onChange}
}

// NewPickerFrom resumes a picker from a previously captured location.
func NewPickerFrom(fallback Point, loc *domain.Location, onChange func(domain.Location)) *Picker {
	p := NewPicker(fallback, onChange)
	if loc != nil && !loc.IsUnset() {
		p.point = Point{Latitude: loc.Latitude, Longitude: loc.Longitude}
		p.address = loc.Address
	}
	return p
}

// SetPoint moves the candidate point, as a map click does.
func (p *Picker) SetPoint(pt Point) error {
	if err := checkPoint(pt); err != nil {
		return err
	}
	p.mu.Lock()
	p.point = pt
	loc := p.locationLocked()
	p.mu.Unlock()
	p.emit(loc)
	return nil
}

// SetAddress replaces the free-text address.
func (p *Picker) SetAddress(address string) {
	p.mu.Lock()
	p.address = address
	loc := p.locationLocked()
	p.mu.Unlock()
	p.emit(loc)
}

// UseDeviceLocation overwrites the point from the geolocator and fills the
// address with the formatted coordinates. No reverse geocoding is done.
func (p *Picker) UseDeviceLocation(ctx context.Context, g Geolocator) error {
	if g == nil {
		return ErrGeolocationUnavailable
	}
	pt, err := g.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeolocationUnavailable, err)
	}
	if err := checkPoint(pt); err != nil {
		return err
	}
	p.mu.Lock()
	p.point = pt
	p.address = FormatCoordinates(pt)
	loc := p.locationLocked()
	p.mu.Unlock()
	p.emit(loc)
	return nil
}

// Location returns the current composed value.
func (p *Picker) Location() domain.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locationLocked()
}

func (p *Picker) locationLocked() domain.Location {
	return domain.Location{
		Address:   p.address,
		Latitude:  p.point.Latitude,
		Longitude: p.point.Longitude,
	}
}

func (p *Picker) emit(loc domain.Location) {
	if p.onChange != nil {
		p.onChange(loc)
	}
}

// FormatCoordinates is the address text written by UseDeviceLocation.
func FormatCoordinates(pt Point) string {
	return fmt.Sprintf("Lat: %.6f, Lng: %.6f", pt.Latitude, pt.Longitude)
}

func checkPoint(pt Point) error {
	if pt.Latitude < -90 || pt.Latitude > 90 {
		return domain.NewValidationError("latitude", "must be between -90 and 90")
	}
	if pt.Longitude < -180 || pt.Longitude > 180 {
		return domain.NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}
