package plan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

func (i BillingInterval) Valid() bool {
	return i == IntervalMonthly || i == IntervalYearly
}

// Days is the length of one billing period.
func (i BillingInterval) Days() int {
	if i == IntervalYearly {
		return 365
	}
	return 30
}

type Plan struct {
	ID              int             `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Price           decimal.Decimal `db:"price" json:"price" swaggertype:"string" example:"29.99"`
	Currency        string          `db:"currency" json:"currency"`
	BillingInterval BillingInterval `db:"billing_interval" json:"billing_interval"`
	DurationDays    *int            `db:"duration_days" json:"duration_days,omitempty"`
	TrainerID       *int            `db:"trainer_id" json:"trainer_id,omitempty"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Days returns how long a membership bought on this plan lasts. An explicit
// duration_days wins over the billing interval.
func (p *Plan) Days() int {
	if p.DurationDays != nil && *p.DurationDays > 0 {
		return *p.DurationDays
	}
	return p.BillingInterval.Days()
}

func (p *Plan) EndDate(start time.Time) time.Time {
	return start.AddDate(0, 0, p.Days())
}

// AmountCents is the price in minor units, rounded half up.
func (p *Plan) AmountCents() int64 {
	return p.Price.Round(2).Shift(2).IntPart()
}

func (p *Plan) DisplayName() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.BillingInterval)
}

// AvailableTo reports whether a client with the given primary trainer may
// buy this plan. Plans without a trainer are open to everyone.
func (p *Plan) AvailableTo(primaryTrainerID *int) bool {
	if p.TrainerID == nil || primaryTrainerID == nil {
		return true
	}
	return *p.TrainerID == *primaryTrainerID
}

type CreatePlanRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" swaggertype:"string" example:"29.99"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	BillingInterval BillingInterval `json:"billing_interval" binding:"required,oneof=monthly yearly"`
	DurationDays    *int            `json:"duration_days" binding:"omitempty,min=1"`
	TrainerID       *int            `json:"trainer_id" binding:"omitempty,min=1"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
