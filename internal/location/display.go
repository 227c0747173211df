package location

import (
	"fmt"
	"net/url"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

const placeholderMessage = "Location not provided"

// View is the read-only rendering of a captured location.
type View struct {
	Available     bool    `json:"available"`
	Placeholder   string  `json:"placeholder,omitempty"`
	Address       string  `json:"address,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	Coordinates   string  `json:"coordinates,omitempty"`
	MapURL        string  `json:"map_url,omitempty"`
	DirectionsURL string  `json:"directions_url,omitempty"`
}

// Display renders loc, or a placeholder when coordinates or address are absent.
func Display(loc *domain.Location) View {
	if loc == nil || loc.Address == "" || (loc.Latitude == 0 && loc.Longitude == 0) {
		return View{Placeholder: placeholderMessage}
	}
	coords := fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude)
	return View{
		Available:     true,
		Address:       loc.Address,
		Latitude:      loc.Latitude,
		Longitude:     loc.Longitude,
		Coordinates:   coords,
		MapURL:        "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(coords),
		DirectionsURL: "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(coords),
	}
}
