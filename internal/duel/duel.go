// Package duel implements the lifecycle of one-on-one timed problem
// duels: challenge, accept/decline, expiry.
package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

// Rating bounds accepted for a challenge.
const (
	MinRating = 800
	MaxRating = 3500
)

// DefaultDuration is the fixed duel length when no override is configured.
const DefaultDuration = 60 * time.Minute

// Store is the subset of the record store the state machine needs.
// The create and transition operations must be atomic check-and-set
// operations so concurrent commands cannot double-book a user.
type Store interface {
	EnsureUser(ctx context.Context, userID int64, username, firstName string) error
	CreateDuel(ctx context.Context, chatID, challengerID, challengedID int64, rating int) (int64, error)
	PendingDuelFor(ctx context.Context, challengedID int64) (*models.Duel, error)
	ActivateDuel(ctx context.Context, duelID int64, problemName, problemURL string, start, end time.Time) error
	DeclineDuel(ctx context.Context, duelID int64) error
	ActiveDuelFor(ctx context.Context, userID int64) (*models.Duel, error)
	CompleteDuel(ctx context.Context, duelID int64) error
}

// ProblemSelector picks a problem near a target rating.
type ProblemSelector interface {
	Select(ctx context.Context, platform string, rating int, topic string) (*models.Problem, error)
}

// Participant identifies one side of a duel.
type Participant struct {
	ID        int64
	Username  string
	FirstName string
}

// Status describes an active or just-expired duel.
type Status struct {
	Duel      models.Duel
	Expired   bool
	Remaining time.Duration
}

type Service struct {
	store    Store
	selector ProblemSelector
	duration time.Duration
	now      func() time.Time
	logger   logger.Logger
}

func NewService(store Store, selector ProblemSelector, duration time.Duration, log logger.Logger) *Service {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Service{
		store:    store,
		selector: selector,
		duration: duration,
		now:      time.Now,
		logger:   log,
	}
}

// Duration returns the configured duel length.
func (s *Service) Duration() time.Duration {
	return s.duration
}

// Challenge creates a pending duel from challenger to challenged.
// Group-only: private chats cannot host duels. The store insert enforces
// the single-pending-duel-per-challenged invariant atomically.
func (s *Service) Challenge(ctx context.Context, chatID int64, chatType string, challenger, challenged Participant, rating int) (int64, error) {
	if chatType != "group" && chatType != "supergroup" {
		return 0, fmt.Errorf("%w: duels can only be started in group chats", models.ErrInvalidInput)
	}
	if rating < MinRating || rating > MaxRating {
		return 0, fmt.Errorf("%w: rating must be between %d and %d", models.ErrInvalidInput, MinRating, MaxRating)
	}
	if challenger.ID == challenged.ID {
		return 0, fmt.Errorf("%w: you cannot challenge yourself", models.ErrInvalidInput)
	}

	if err := s.store.EnsureUser(ctx, challenger.ID, challenger.Username, challenger.FirstName); err != nil {
		return 0, err
	}
	if err := s.store.EnsureUser(ctx, challenged.ID, challenged.Username, challenged.FirstName); err != nil {
		return 0, err
	}

	duelID, err := s.store.CreateDuel(ctx, chatID, challenger.ID, challenged.ID, rating)
	if err != nil {
		return 0, err
	}

	s.logger.Infof("duel %d created: %d challenged %d at rating %d", duelID, challenger.ID, challenged.ID, rating)
	return duelID, nil
}

// Accept activates the challenged user's pending duel. A problem is
// fetched first; if none is available the duel stays pending so the
// user can retry. On success the problem and start/end timestamps are
// bound in a single pending→active transition.
func (s *Service) Accept(ctx context.Context, challengedID int64) (*models.Duel, error) {
	pending, err := s.store.PendingDuelFor(ctx, challengedID)
	if err != nil {
		return nil, err
	}

	problem, err := s.selector.Select(ctx, models.PlatformCodeforces, pending.ProblemRating, "")
	if err != nil {
		return nil, fmt.Errorf("problem fetch for duel %d: %w", pending.DuelID, err)
	}

	start := s.now()
	end := start.Add(s.duration)
	if err := s.store.ActivateDuel(ctx, pending.DuelID, problem.Name, problem.URL, start, end); err != nil {
		return nil, err
	}

	pending.Status = models.DuelStatusActive
	pending.ProblemName = &problem.Name
	pending.ProblemURL = &problem.URL
	pending.StartTime = &start
	pending.EndTime = &end

	s.logger.Infof("duel %d accepted by %d, problem %q", pending.DuelID, challengedID, problem.Name)
	return pending, nil
}

// Decline rejects the challenged user's pending duel. Terminal.
func (s *Service) Decline(ctx context.Context, challengedID int64) (int64, error) {
	pending, err := s.store.PendingDuelFor(ctx, challengedID)
	if err != nil {
		return 0, err
	}
	if err := s.store.DeclineDuel(ctx, pending.DuelID); err != nil {
		return 0, err
	}

	s.logger.Infof("duel %d declined by %d", pending.DuelID, challengedID)
	return pending.DuelID, nil
}

// Status reports the participant's most recent active duel. A duel whose
// end time has passed is transitioned to completed as a side effect; the
// transition is a status-guarded update, so concurrent calls complete it
// exactly once. No winner is determined here.
func (s *Service) Status(ctx context.Context, participantID int64) (*Status, error) {
	active, err := s.store.ActiveDuelFor(ctx, participantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if active.EndTime != nil && !now.Before(*active.EndTime) {
		if err := s.store.CompleteDuel(ctx, active.DuelID); err != nil {
			return nil, err
		}
		active.Status = models.DuelStatusCompleted
		s.logger.Infof("duel %d expired", active.DuelID)
		return &Status{Duel: *active, Expired: true}, nil
	}

	remaining := time.Duration(0)
	if active.EndTime != nil {
		remaining = active.EndTime.Sub(now).Truncate(time.Second)
	}
	return &Status{Duel: *active, Remaining: remaining}, nil
}
