package models

// Failure describes why a lookup did not produce locations.
type Failure struct {
	Summary string `json:"error"`            // Summary is the short, stable error label.
	Detail  string `json:"detail,omitempty"` // Detail carries extra context, optional.
}

// Outcome is the result of a single geocoding lookup: either a non-empty list
// of locations or a failure, never both.
type Outcome struct {
	Locations []Location `json:"locations,omitempty"`
	Failure   *Failure   `json:"failure,omitempty"`
}

// OK creates a successful outcome from the given locations.
func OK(locations []Location) Outcome {
	return Outcome{Locations: locations}
}

// Failed creates a failed outcome with a summary and optional detail.
func Failed(summary, detail string) Outcome {
	return Outcome{Failure: &Failure{Summary: summary, Detail: detail}}
}

// IsOK reports whether the outcome carries locations rather than a failure.
func (o Outcome) IsOK() bool {
	return o.Failure == nil
}

// BatchResult maps every requested place name to its own outcome.
// Duplicate input names collapse to the outcome of the last attempt.
type BatchResult map[string]Outcome
