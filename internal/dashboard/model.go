package dashboard

import (
	"time"

	"fitclub/internal/event"
	"fitclub/internal/membership"
	"fitclub/internal/registration"
)

const (
	clientListLimit   = 10
	upcomingListLimit = 5
)

type TrainerCounts struct {
	ClientCount       int `db:"client_count" json:"client_count"`
	EventCount        int `db:"event_count" json:"event_count"`
	ActiveMemberships int `db:"active_memberships" json:"active_memberships"`
}

type ClientSummary struct {
	UserID int    `db:"user_id" json:"user_id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Level  string `db:"level" json:"level"`
}

type EventSummary struct {
	ID                 int        `db:"id" json:"id"`
	Title              string     `db:"title" json:"title"`
	Date               time.Time  `db:"date" json:"date"`
	StartTime          string     `db:"start_time" json:"start_time"`
	Location           string     `db:"location" json:"location"`
	EventType          event.Type `db:"event_type" json:"event_type"`
	Capacity           int        `db:"capacity" json:"capacity"`
	RegistrationsCount int        `db:"registrations_count" json:"registrations_count"`
}

type TrainerDashboard struct {
	TrainerCounts
	Clients []ClientSummary `json:"clients"`
	Events  []EventSummary  `json:"events"`
}

type AdminDashboard struct {
	TotalUsers        int `db:"total_users" json:"total_users"`
	Trainers          int `db:"trainers" json:"trainers"`
	ActiveMemberships int `db:"active_memberships" json:"active_memberships"`
	UpcomingEvents    int `db:"upcoming_events" json:"upcoming_events"`
}

type ClientDashboard struct {
	Membership      *membership.MembershipView           `json:"membership"`
	UpcomingEvents  []event.EventWithAvailability        `json:"upcoming_events"`
	MyRegistrations []registration.RegistrationWithEvent `json:"my_registrations"`
}
