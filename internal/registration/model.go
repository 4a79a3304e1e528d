package registration

import "time"

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

// Registration is unique per (user, event). Leaving flips the status and a
// later join reuses the same row.
type Registration struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	EventID          int       `db:"event_id" json:"event_id"`
	Status           Status    `db:"status" json:"status"`
	BookedAt         time.Time `db:"booked_at" json:"booked_at"`
	Attended         bool      `db:"attended" json:"attended"`
	PerformanceNotes string    `db:"performance_notes" json:"performance_notes"`
}

type RegistrationWithEvent struct {
	Registration
	EventTitle     string    `db:"event_title" json:"event_title"`
	EventDate      time.Time `db:"event_date" json:"event_date"`
	EventStartTime string    `db:"event_start_time" json:"event_start_time"`
	EventLocation  string    `db:"event_location" json:"event_location"`
	EventType      string    `db:"event_type" json:"event_type"`
	EventCancelled bool      `db:"event_cancelled" json:"event_cancelled"`
}

type Attendee struct {
	Registration
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

type AttendanceRequest struct {
	Attended         *bool   `json:"attended" binding:"required"`
	PerformanceNotes *string `json:"performance_notes" binding:"omitempty,max=2000"`
}
