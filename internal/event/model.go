package event

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeRunningClub Type = "running_club"
	TypeClass       Type = "class"
	TypeChallenge   Type = "challenge"
)

func (t Type) Valid() bool {
	switch t {
	case TypeRunningClub, TypeClass, TypeChallenge:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event times are exchanged as HH:MM strings; the repository converts them
// to and from TIME columns.
type Event struct {
	ID             int                 `db:"id" json:"id"`
	TrainerID      *int                `db:"trainer_id" json:"trainer_id,omitempty"`
	Title          string              `db:"title" json:"title"`
	Description    string              `db:"description" json:"description"`
	Date           time.Time           `db:"date" json:"date"`
	StartTime      string              `db:"start_time" json:"start_time"`
	EndTime        *string             `db:"end_time" json:"end_time,omitempty"`
	Location       string              `db:"location" json:"location"`
	EventType      Type                `db:"event_type" json:"event_type"`
	Capacity       int                 `db:"capacity" json:"capacity"`
	IsCancelled    bool                `db:"is_cancelled" json:"is_cancelled"`
	DistanceKm     *float64            `db:"distance_km" json:"distance_km,omitempty"`
	TargetReps     *int                `db:"target_reps" json:"target_reps,omitempty"`
	PriceMember    decimal.NullDecimal `db:"price_member" json:"price_member"`
	PriceNonMember decimal.NullDecimal `db:"price_non_member" json:"price_non_member"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}

// IsPastOn compares calendar dates only; an event later today is not past.
func (e *Event) IsPastOn(today time.Time) bool {
	return e.Date.Before(today)
}

// StartsAt combines the event date and start time. The result carries the
// date's location, which is UTC for values read from the database.
func (e *Event) StartsAt() time.Time {
	t, err := time.Parse(TimeLayout, e.StartTime)
	if err != nil {
		return e.Date
	}
	return e.Date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// EventWithAvailability is an event together with its booking count and the
// caller's own registration state.
type EventWithAvailability struct {
	Event
	TrainerName        string `db:"trainer_name" json:"trainer_name"`
	RegistrationsCount int    `db:"registrations_count" json:"registrations_count"`
	Joined             bool   `db:"joined" json:"joined"`
	SpotsLeft          int    `db:"-" json:"spots_left"`
	IsFull             bool   `db:"-" json:"is_full"`
	IsPast             bool   `db:"-" json:"is_past"`
}

func SpotsLeft(capacity, booked int) int {
	return max(capacity-booked, 0)
}

func (e *EventWithAvailability) applyAvailability(today time.Time) {
	e.SpotsLeft = SpotsLeft(e.Capacity, e.RegistrationsCount)
	e.IsFull = e.SpotsLeft <= 0
	e.IsPast = e.IsPastOn(today)
}

// Filter narrows the visible event list. TrainerID is set by the service
// from the caller's client profile, never from the query string.
type Filter struct {
	Type        *Type
	MinDistance *float64
	MaxDistance *float64
	TrainerID   *int
}

// ParseFilter builds a Filter from raw query values. Unknown types and
// numbers that fail to parse are ignored.
func ParseFilter(eventType, minDistance, maxDistance string) Filter {
	var f Filter

	if t := Type(eventType); t.Valid() {
		f.Type = &t
	}
	if v, err := strconv.ParseFloat(minDistance, 64); err == nil {
		f.MinDistance = &v
	}
	if v, err := strconv.ParseFloat(maxDistance, 64); err == nil {
		f.MaxDistance = &v
	}

	return f
}

type CreateEventRequest struct {
	TrainerID      *int                `json:"trainer_id"`
	Title          string              `json:"title" binding:"required,max=200"`
	Description    string              `json:"description"`
	Date           string              `json:"date" binding:"required" example:"2024-06-01"`
	StartTime      string              `json:"start_time" binding:"required" example:"07:30"`
	EndTime        *string             `json:"end_time" example:"08:30"`
	Location       string              `json:"location" binding:"max=200"`
	EventType      Type                `json:"event_type" binding:"required"`
	Capacity       int                 `json:"capacity" binding:"required,min=1"`
	DistanceKm     *float64            `json:"distance_km" binding:"omitempty,gt=0"`
	TargetReps     *int                `json:"target_reps" binding:"omitempty,gt=0"`
	PriceMember    decimal.NullDecimal `json:"price_member" swaggertype:"string"`
	PriceNonMember decimal.NullDecimal `json:"price_non_member" swaggertype:"string"`
}
