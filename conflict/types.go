package conflict

import (
	"github.com/samber/mo"

	"github.com/reservd/libbooking/booking"
)

// Type classifies what a conflict is about.
type Type string

const (
	TypeTime     Type = "time"
	TypeResource Type = "resource"
	TypePolicy   Type = "policy"
)

// Severity grades how blocking a conflict is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Conflict is one detected incompatibility for a candidate reservation.
type Conflict struct {
	Type        Type
	Severity    Severity
	Description string

	// ReservationID references the colliding existing booking, when one
	// exists.
	ReservationID mo.Option[string]

	// Suggestion carries a resolution hint for this specific conflict.
	Suggestion mo.Option[string]
}

// Result is the classification outcome for one candidate.
type Result struct {
	HasConflict bool
	Conflicts   []Conflict

	// Suggestions are best-effort alternative slots, populated only when a
	// time conflict exists and a strategy is configured.
	Suggestions []booking.TimeSlot
}
