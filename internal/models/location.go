package models

// Location is one geocoding candidate, normalized from the upstream response.
// Instances are immutable once constructed; one instance per upstream match.
type Location struct {
	Name        string      `json:"name"`             // Name is the short label for the place.
	Coordinates Coordinates `json:"coordinates"`      // Coordinates holds the parsed latitude/longitude.
	DisplayName string      `json:"display_name"`     // DisplayName is the full upstream display string, unchanged.
	Country     string      `json:"country"`          // Country of the place, defaulted when the upstream omits it.
	County      string      `json:"county,omitempty"` // County, optional.
	State       string      `json:"state,omitempty"`  // State or region, optional.
}
