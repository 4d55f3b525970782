package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/logger"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/metrics"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/notifier"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/user"
)

var (
	ErrNotOwner         = errors.New("membership belongs to another user")
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrNotReservable    = errors.New("membership cannot hold reservations in its current status")
)

type Service interface {
	Create(ctx context.Context, userID int, req CreateMembershipRequest) (*Membership, *ValidationResult, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	ListByUser(ctx context.Context, userID int) ([]Membership, error)

	ValidateSchedule(ctx context.Context, planID int, proposed ReservedSchedule) (*ValidationResult, error)
	ReserveSlots(ctx context.Context, membershipID, userID int, proposed ReservedSchedule) (*Membership, *ValidationResult, error)

	Activate(ctx context.Context, id int) (*Membership, error)
	Suspend(ctx context.Context, id int) (*Membership, error)
	Reinstate(ctx context.Context, id int) (*Membership, error)
	Cancel(ctx context.Context, id int) (*Membership, error)
}

type service struct {
	repo         Repository
	planRepo     plan.Repository
	scheduleRepo schedule.Repository
	users        user.Repository
	gateway      notifier.Gateway
	clock        clock.Clock
}

func NewService(repo Repository, planRepo plan.Repository, scheduleRepo schedule.Repository, users user.Repository, gateway notifier.Gateway, clk clock.Clock) Service {
	return &service{
		repo:         repo,
		planRepo:     planRepo,
		scheduleRepo: scheduleRepo,
		users:        users,
		gateway:      gateway,
		clock:        clk,
	}
}

// Create builds a pending membership priced and day-counted from the
// plan. A requested schedule, if present, is validated and committed in
// the same call; a policy violation aborts creation.
func (s *service) Create(ctx context.Context, userID int, req CreateMembershipRequest) (*Membership, *ValidationResult, error) {
	p, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, nil, err
	}

	totalDays, err := p.DurationType.DayCount()
	if err != nil {
		return nil, nil, err
	}

	// Midnight of the local calendar day. Truncating the instant would
	// shift the date for any zone behind UTC.
	now := s.clock.Now()
	year, month, day := now.Date()
	startDate := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, nil, ErrInvalidStartDate
		}
		startDate = parsed
	}

	thresholds := req.Thresholds
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}

	m := &Membership{
		UserID:                 userID,
		PlanID:                 p.ID,
		DurationType:           p.DurationType,
		Status:                 StatusPending,
		PriceCents:             p.PriceCents,
		StartDate:              startDate,
		EndDate:                CalculateEndDate(startDate, totalDays),
		TotalDays:              totalDays,
		RemainingDays:          totalDays,
		AutoDeductDays:         true,
		ReservedSchedule:       ReservedSchedule{},
		NotificationThresholds: thresholds,
	}

	if len(req.RequestedSchedule) > 0 {
		result, err := s.ValidateSchedule(ctx, p.ID, req.RequestedSchedule)
		if err != nil {
			return nil, nil, err
		}
		if !result.Valid {
			return nil, result, nil
		}
	}

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, nil, err
	}

	if len(req.RequestedSchedule) > 0 {
		if err := s.repo.CommitReservedSchedule(ctx, created.ID, req.RequestedSchedule); err != nil {
			metrics.RecordSlotReservation("rejected")
			return nil, nil, err
		}
		metrics.RecordSlotReservation("committed")
		created.ReservedSchedule = req.RequestedSchedule
	}

	metrics.RecordMembershipCreated(string(p.DurationType))
	return created, nil, nil
}

func (s *service) GetByID(ctx context.Context, id int) (*Membership, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Membership, error) {
	return s.repo.GetByUser(ctx, userID)
}

// ValidateSchedule runs the pure schedule validator against the plan's
// policy and current slot occupancy without persisting anything.
func (s *service) ValidateSchedule(ctx context.Context, planID int, proposed ReservedSchedule) (*ValidationResult, error) {
	p, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	slotIDs := make([]int, 0)
	seen := make(map[int]bool)
	for _, ids := range proposed {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				slotIDs = append(slotIDs, id)
			}
		}
	}

	slots, err := s.scheduleRepo.GetSlotsByIDs(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	slotMap := make(map[int]schedule.TimeSlot, len(slots))
	for _, slot := range slots {
		slotMap[slot.ID] = slot
	}

	result := ValidateSchedule(p.Policy, proposed, slotMap)
	return &result, nil
}

// ReserveSlots validates and commits a new reserved schedule for a
// membership. Old reservations are released and new ones taken
// atomically; a concurrent request that fills a slot first wins, and
// the loser receives a capacity error at commit.
func (s *service) ReserveSlots(ctx context.Context, membershipID, userID int, proposed ReservedSchedule) (*Membership, *ValidationResult, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, nil, err
	}

	if userID != 0 && m.UserID != userID {
		return nil, nil, ErrNotOwner
	}

	if m.Status != StatusPending && m.Status != StatusActive {
		return nil, nil, ErrNotReservable
	}

	result, err := s.ValidateSchedule(ctx, m.PlanID, proposed)
	if err != nil {
		return nil, nil, err
	}
	if !result.Valid {
		metrics.RecordSlotReservation("rejected")
		return nil, result, nil
	}

	if err := s.repo.CommitReservedSchedule(ctx, membershipID, proposed); err != nil {
		metrics.RecordSlotReservation("rejected")
		return nil, nil, err
	}

	metrics.RecordSlotReservation("committed")

	updated, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, nil, err
	}

	s.confirmReservation(ctx, updated)

	return updated, nil, nil
}

// confirmReservation emails the member their committed weekly schedule.
// Best-effort: a lookup or delivery failure never fails the reservation.
func (s *service) confirmReservation(ctx context.Context, m *Membership) {
	u, err := s.users.FindByID(ctx, m.UserID)
	if err != nil {
		logger.Errorf("membership %d: user %d lookup for reservation confirmation failed: %v", m.ID, m.UserID, err)
		return
	}

	if !u.NotifyEmail {
		return
	}

	if err := s.gateway.SendReservationConfirmation(ctx, u.Email, u.Name, scheduleSummary(m.ReservedSchedule)); err != nil {
		logger.Errorf("membership %d: reservation confirmation failed: %v", m.ID, err)
	}
}

// scheduleSummary renders a reserved schedule as one line per weekday in
// Monday-Sunday order.
func scheduleSummary(rs ReservedSchedule) string {
	var b strings.Builder
	for _, day := range schedule.WeekOrder {
		ids := rs[day]
		if len(ids) == 0 {
			continue
		}
		word := "slots"
		if len(ids) == 1 {
			word = "slot"
		}
		fmt.Fprintf(&b, "%s: %d %s\n", day, len(ids), word)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *service) Activate(ctx context.Context, id int) (*Membership, error) {
	return s.transition(ctx, id, StatusActive)
}

func (s *service) Suspend(ctx context.Context, id int) (*Membership, error) {
	return s.transition(ctx, id, StatusSuspended)
}

// Reinstate moves a suspended membership back to active. The
// auto-deduct flag is left untouched and no day is consumed here; the
// membership is simply picked up again by the next scheduled run.
func (s *service) Reinstate(ctx context.Context, id int) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusSuspended {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, id, StatusActive)
}

func (s *service) Cancel(ctx context.Context, id int) (*Membership, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *service) transition(ctx context.Context, id int, to Status) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(m.Status, to) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, m.Status, to); err != nil {
		return nil, err
	}

	metrics.RecordStatusChange(string(to))
	logger.Infof("membership %d: %s -> %s", id, m.Status, to)

	return s.repo.GetByID(ctx, id)
}
