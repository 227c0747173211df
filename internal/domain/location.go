package domain

// Location is a captured geographic point plus a free-text address.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsUnset detects the zero/zero coordinate with an empty address.
func (l Location) IsUnset() bool {
	return l.Latitude == 0 && l.Longitude == 0 && l.Address == ""
}

// Usable is what a home visit needs: a set location carrying an address.
func (l *Location) Usable() bool {
	return l != nil && !l.IsUnset() && l.Address != ""
}
