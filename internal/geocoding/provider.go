package geocoding

import (
	"context"

	"github.com/brollyweather/brolly/internal/models"
)

// Lookuper is the interface satisfied by the geocoding lookup client.
// Lookup takes a free-text place name and an optional comma-separated country
// code filter (the client default applies when empty), and returns the
// classified outcome. Every failure mode is carried inside the outcome;
// Lookup never fails out-of-band.
type Lookuper interface {
	Lookup(ctx context.Context, name, countryCodes string) models.Outcome
}
