package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/clock"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"
	"fitclub/internal/plan"
	"fitclub/internal/profile"
	"fitclub/internal/user"

	"github.com/samber/lo"
)

var (
	ErrAlreadyActive      = errors.New("user already has an active membership")
	ErrNotEligible        = errors.New("a client profile is required to hold a membership")
	ErrTrainerMismatch    = fmt.Errorf("%w: plan belongs to a different trainer", ErrNotEligible)
	ErrNoMembership       = errors.New("an active membership is required")
	ErrMembershipNotFound = errors.New("membership not found")
)

const (
	SourceDirect  = "direct"
	SourcePayment = "payment"
)

type PlanSource interface {
	Get(ctx context.Context, id int) (*plan.Plan, error)
}

type ProfileSource interface {
	FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error)
}

type UserSource interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendMembershipActivated(ctx context.Context, to, name, planName string, start, end time.Time) error
	SendMembershipCancelled(ctx context.Context, to, name, planName string) error
}

type Service interface {
	CheckEligibility(ctx context.Context, userID, planID int) (*plan.Plan, error)
	Activate(ctx context.Context, userID, planID int) (*Membership, error)
	IsActive(ctx context.Context, userID int) (bool, error)
	ActiveFor(ctx context.Context, userID int) (*MembershipView, bool, error)
	ListFor(ctx context.Context, userID int) ([]MembershipView, error)
	ReconcileFromPayment(ctx context.Context, grant PaymentGrant) (*Membership, bool, error)
	Cancel(ctx context.Context, membershipID int) (*Membership, error)
	CancelForPayment(ctx context.Context, paymentIntentID string) error
}

type service struct {
	repo     Repository
	plans    PlanSource
	profiles ProfileSource
	users    UserSource
	notifier Notifier
	clock    *clock.Clock
}

func NewService(
	repo Repository,
	plans PlanSource,
	profiles ProfileSource,
	users UserSource,
	notifier Notifier,
	clk *clock.Clock,
) Service {
	return &service{
		repo:     repo,
		plans:    plans,
		profiles: profiles,
		users:    users,
		notifier: notifier,
		clock:    clk,
	}
}

// CheckEligibility runs every precondition for buying or activating planID
// without writing anything.
func (s *service) CheckEligibility(ctx context.Context, userID, planID int) (*plan.Plan, error) {
	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, plan.ErrPlanInactive
	}

	client, found, err := s.profiles.FindClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}
	if !found {
		return nil, ErrNotEligible
	}
	if !p.AvailableTo(client.PrimaryTrainerID) {
		return nil, ErrTrainerMismatch
	}

	active, err := s.repo.HasActive(ctx, userID, s.clock.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to check active membership: %w", err)
	}
	if active {
		return nil, ErrAlreadyActive
	}

	return p, nil
}

func (s *service) Activate(ctx context.Context, userID, planID int) (*Membership, error) {
	p, err := s.CheckEligibility(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	m, err := s.repo.CreateIfNoneActive(ctx, &Membership{
		UserID:    userID,
		PlanID:    p.ID,
		StartDate: today,
		EndDate:   p.EndDate(today),
		Status:    StatusActive,
	}, today)
	if err != nil {
		return nil, err
	}

	logger.Info("membership activated", "membership_id", m.ID, "user_id", userID, "plan_id", p.ID, "source", SourceDirect)
	metrics.RecordMembershipActivated(SourceDirect, string(p.BillingInterval))
	s.notifyActivated(ctx, m, p)

	return m, nil
}

func (s *service) IsActive(ctx context.Context, userID int) (bool, error) {
	return s.repo.HasActive(ctx, userID, s.clock.Today())
}

func (s *service) ActiveFor(ctx context.Context, userID int) (*MembershipView, bool, error) {
	today := s.clock.Today()

	v, found, err := s.repo.FindActive(ctx, userID, today)
	if err != nil || !found {
		return nil, found, err
	}

	decorated := decorate(*v, today)
	return &decorated, true, nil
}

func (s *service) ListFor(ctx context.Context, userID int) ([]MembershipView, error) {
	views, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	return lo.Map(views, func(v MembershipView, _ int) MembershipView {
		return decorate(v, today)
	}), nil
}

func decorate(v MembershipView, today time.Time) MembershipView {
	v.IsActive = v.IsActiveOn(today)
	v.DaysLeft = v.RemainingDays(today)
	v.Status = v.EffectiveStatus(today)
	return v
}

// ReconcileFromPayment issues the membership a settled payment pays for.
// Calling it again for the same payment intent returns the membership that
// was created the first time. A payment settled while the user is still
// covered extends their cover instead of overlapping it.
func (s *service) ReconcileFromPayment(ctx context.Context, grant PaymentGrant) (*Membership, bool, error) {
	if grant.PaymentIntentID == "" {
		return nil, false, errors.New("payment intent id is required")
	}

	p, err := s.plans.Get(ctx, grant.PlanID)
	if err != nil {
		return nil, false, err
	}

	today := s.clock.Today()

	m, created, err := s.repo.GetOrCreateForPayment(ctx, &Membership{
		UserID:          grant.UserID,
		PlanID:          p.ID,
		StartDate:       today,
		EndDate:         p.EndDate(today),
		Status:          StatusActive,
		PaymentIntentID: lo.ToPtr(grant.PaymentIntentID),
	}, today)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reconcile membership: %w", err)
	}

	if !created {
		logger.Debug("membership already reconciled", "membership_id", m.ID, "payment_intent", grant.PaymentIntentID)
		return m, false, nil
	}

	if m.StartDate.After(today) {
		logger.Info("paid membership queued after the current one",
			"user_id", grant.UserID, "membership_id", m.ID, "starts", m.StartDate.Format(time.DateOnly))
	}

	logger.Info("membership activated", "membership_id", m.ID, "user_id", grant.UserID, "plan_id", p.ID, "source", SourcePayment)
	metrics.RecordMembershipActivated(SourcePayment, string(p.BillingInterval))
	s.notifyActivated(ctx, m, p)

	return m, true, nil
}

func (s *service) Cancel(ctx context.Context, membershipID int) (*Membership, error) {
	m, err := s.repo.Cancel(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	logger.Info("membership cancelled", "membership_id", m.ID, "reason", "admin")
	metrics.RecordMembershipCancelled("admin")
	s.notifyCancelled(ctx, m)

	return m, nil
}

func (s *service) CancelForPayment(ctx context.Context, paymentIntentID string) error {
	cancelled, err := s.repo.CancelByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to cancel membership for payment: %w", err)
	}

	for i := range cancelled {
		m := &cancelled[i]
		logger.Info("membership cancelled", "membership_id", m.ID, "reason", "refund", "payment_intent", paymentIntentID)
		metrics.RecordMembershipCancelled("refund")
		s.notifyCancelled(ctx, m)
	}

	return nil
}

// Notification failures are logged and never fail the ledger operation.
func (s *service) notifyActivated(ctx context.Context, m *Membership, p *plan.Plan) {
	u, err := s.users.FindByID(ctx, m.UserID)
	if err != nil {
		logger.WithError(err).Warn("membership email skipped", "user_id", m.UserID)
		return
	}

	if err := s.notifier.SendMembershipActivated(ctx, u.Email, u.Name, p.DisplayName(), m.StartDate, m.EndDate); err != nil {
		logger.WithError(err).Warn("failed to queue membership email", "user_id", m.UserID)
	}
}

func (s *service) notifyCancelled(ctx context.Context, m *Membership) {
	u, err := s.users.FindByID(ctx, m.UserID)
	if err != nil {
		logger.WithError(err).Warn("cancellation email skipped", "user_id", m.UserID)
		return
	}

	planName := fmt.Sprintf("membership #%d", m.ID)
	if p, err := s.plans.Get(ctx, m.PlanID); err == nil {
		planName = p.DisplayName()
	}

	if err := s.notifier.SendMembershipCancelled(ctx, u.Email, u.Name, planName); err != nil {
		logger.WithError(err).Warn("failed to queue cancellation email", "user_id", m.UserID)
	}
}
