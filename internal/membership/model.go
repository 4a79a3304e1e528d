package membership

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Membership struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	PlanID          int       `db:"plan_id" json:"plan_id"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	Status          Status    `db:"status" json:"status"`
	AutoRenew       bool      `db:"auto_renew" json:"auto_renew"`
	PaymentIntentID *string   `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IsActiveOn reports whether the membership covers the given calendar date.
// Expiry is never written back; a lapsed membership keeps status active.
func (m *Membership) IsActiveOn(today time.Time) bool {
	return m.Status == StatusActive && !m.EndDate.Before(today)
}

// EffectiveStatus is the status a reader should see on the given date.
func (m *Membership) EffectiveStatus(today time.Time) Status {
	if m.Status == StatusActive && m.EndDate.Before(today) {
		return StatusExpired
	}
	return m.Status
}

// RemainingDays counts the remaining covered days including today, zero when
// the membership no longer applies.
func (m *Membership) RemainingDays(today time.Time) int {
	if !m.IsActiveOn(today) {
		return 0
	}
	return int(m.EndDate.Sub(today).Hours()/24) + 1
}

// MembershipView is the read model returned to clients.
type MembershipView struct {
	Membership
	PlanName        string `db:"plan_name" json:"plan_name"`
	BillingInterval string `db:"billing_interval" json:"billing_interval"`
	IsActive        bool   `db:"-" json:"is_active"`
	DaysLeft        int    `db:"-" json:"days_left"`
}

// PaymentGrant carries what a settled payment entitles the payer to.
type PaymentGrant struct {
	UserID          int
	PlanID          int
	PaymentIntentID string
}

type ActiveResponse struct {
	Active     bool            `json:"active"`
	Membership *MembershipView `json:"membership,omitempty"`
}
