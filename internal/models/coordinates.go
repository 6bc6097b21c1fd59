package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point, -90..90.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point, -180..180.
}
