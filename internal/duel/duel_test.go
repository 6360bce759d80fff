package duel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

// fakeStore is an in-memory Store that mirrors the record store's
// check-and-set semantics.
type fakeStore struct {
	duels  map[int64]*models.Duel
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{duels: make(map[int64]*models.Duel), nextID: 1}
}

func (f *fakeStore) EnsureUser(ctx context.Context, userID int64, username, firstName string) error {
	return nil
}

func (f *fakeStore) CreateDuel(ctx context.Context, chatID, challengerID, challengedID int64, rating int) (int64, error) {
	for _, d := range f.duels {
		if d.ChallengedID == challengedID && d.Status == models.DuelStatusPending {
			return 0, models.ErrAlreadyPending
		}
	}
	id := f.nextID
	f.nextID++
	f.duels[id] = &models.Duel{
		DuelID:        id,
		ChatID:        chatID,
		ChallengerID:  challengerID,
		ChallengedID:  challengedID,
		ProblemRating: rating,
		Status:        models.DuelStatusPending,
	}
	return id, nil
}

func (f *fakeStore) PendingDuelFor(ctx context.Context, challengedID int64) (*models.Duel, error) {
	for _, d := range f.duels {
		if d.ChallengedID == challengedID && d.Status == models.DuelStatusPending {
			copied := *d
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) ActivateDuel(ctx context.Context, duelID int64, problemName, problemURL string, start, end time.Time) error {
	d, ok := f.duels[duelID]
	if !ok || d.Status != models.DuelStatusPending {
		return models.ErrInvalidState
	}
	d.Status = models.DuelStatusActive
	d.ProblemName = &problemName
	d.ProblemURL = &problemURL
	d.StartTime = &start
	d.EndTime = &end
	return nil
}

func (f *fakeStore) DeclineDuel(ctx context.Context, duelID int64) error {
	d, ok := f.duels[duelID]
	if !ok || d.Status != models.DuelStatusPending {
		return models.ErrInvalidState
	}
	d.Status = models.DuelStatusDeclined
	return nil
}

func (f *fakeStore) ActiveDuelFor(ctx context.Context, userID int64) (*models.Duel, error) {
	for _, d := range f.duels {
		if d.Status != models.DuelStatusActive {
			continue
		}
		if d.ChallengerID == userID || d.ChallengedID == userID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) CompleteDuel(ctx context.Context, duelID int64) error {
	d, ok := f.duels[duelID]
	if !ok {
		return models.ErrNotFound
	}
	if d.Status == models.DuelStatusCompleted {
		return nil
	}
	if d.Status != models.DuelStatusActive {
		return models.ErrInvalidState
	}
	d.Status = models.DuelStatusCompleted
	return nil
}

type fakeSelector struct {
	problem *models.Problem
	err     error
}

func (f *fakeSelector) Select(ctx context.Context, platform string, rating int, topic string) (*models.Problem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.problem, nil
}

func testProblem() *models.Problem {
	rating := 1500
	return &models.Problem{
		ProblemID: "1500-A",
		Platform:  models.PlatformCodeforces,
		Name:      "Test Problem",
		Rating:    &rating,
		URL:       "https://codeforces.com/problemset/problem/1500/A",
	}
}

func newTestService(store Store, selector ProblemSelector, now time.Time) *Service {
	svc := NewService(store, selector, DefaultDuration, logger.New("error"))
	svc.now = func() time.Time { return now }
	return svc
}

var (
	challenger = Participant{ID: 10, Username: "alice", FirstName: "Alice"}
	challenged = Participant{ID: 20, Username: "bob", FirstName: "Bob"}
)

func TestChallengeCreatesPendingDuel(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, time.Now())

	id, err := svc.Challenge(ctx, -100, "supergroup", challenger, challenged, 1500)
	if err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}

	pending, err := store.PendingDuelFor(ctx, challenged.ID)
	if err != nil {
		t.Fatalf("Expected pending duel: %v", err)
	}
	if pending.DuelID != id {
		t.Errorf("Expected duel id %d, got %d", id, pending.DuelID)
	}
	if pending.ProblemRating != 1500 {
		t.Errorf("Expected rating 1500, got %d", pending.ProblemRating)
	}
}

func TestChallengeRejectsPrivateChat(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeSelector{}, time.Now())

	_, err := svc.Challenge(context.Background(), 1, "private", challenger, challenged, 1500)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for private chat, got %v", err)
	}
}

func TestChallengeRejectsRatingOutOfBounds(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeSelector{}, time.Now())

	for _, rating := range []int{799, 3501, 0, -100} {
		_, err := svc.Challenge(context.Background(), -100, "group", challenger, challenged, rating)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for rating %d, got %v", rating, err)
		}
	}
}

func TestChallengeRejectsSelf(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeSelector{}, time.Now())

	_, err := svc.Challenge(context.Background(), -100, "group", challenger, challenger, 1500)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for self-challenge, got %v", err)
	}
}

func TestChallengeSinglePendingPerChallenged(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, time.Now())

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("First challenge failed: %v", err)
	}

	other := Participant{ID: 30, Username: "carol", FirstName: "Carol"}
	_, err := svc.Challenge(ctx, -100, "group", other, challenged, 1200)
	if !errors.Is(err, models.ErrAlreadyPending) {
		t.Errorf("Expected ErrAlreadyPending for second challenge, got %v", err)
	}
}

func TestAcceptActivatesDuel(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, now)

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}

	active, err := svc.Accept(ctx, challenged.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if active.Status != models.DuelStatusActive {
		t.Errorf("Expected status active, got %s", active.Status)
	}
	if active.StartTime == nil || !active.StartTime.Equal(now) {
		t.Errorf("Expected start time %v, got %v", now, active.StartTime)
	}
	wantEnd := now.Add(DefaultDuration)
	if active.EndTime == nil || !active.EndTime.Equal(wantEnd) {
		t.Errorf("Expected end time %v, got %v", wantEnd, active.EndTime)
	}
	if active.ProblemName == nil || *active.ProblemName != "Test Problem" {
		t.Errorf("Expected problem bound on accept, got %v", active.ProblemName)
	}
}

func TestAcceptWithoutPending(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeSelector{problem: testProblem()}, time.Now())

	_, err := svc.Accept(context.Background(), challenged.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAcceptKeepsDuelPendingWhenProblemFetchFails(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, &fakeSelector{err: models.ErrUnavailable}, time.Now())

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}

	_, err := svc.Accept(ctx, challenged.ID)
	if !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}

	pending, err := store.PendingDuelFor(ctx, challenged.ID)
	if err != nil {
		t.Fatalf("Duel should still be pending: %v", err)
	}
	if pending.Status != models.DuelStatusPending {
		t.Errorf("Expected status pending, got %s", pending.Status)
	}
}

func TestDeclineIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, time.Now())

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	if _, err := svc.Decline(ctx, challenged.ID); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}

	if _, err := svc.Accept(ctx, challenged.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Declined duel should not be acceptable, got %v", err)
	}
	if _, err := svc.Decline(ctx, challenged.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Declined duel should not be declinable again, got %v", err)
	}
}

func TestStatusReportsRemainingTime(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, start)

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	if _, err := svc.Accept(ctx, challenged.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	svc.now = func() time.Time { return start.Add(20 * time.Minute) }
	status, err := svc.Status(ctx, challenger.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Expired {
		t.Error("Duel should not be expired yet")
	}
	if status.Remaining != 40*time.Minute {
		t.Errorf("Expected 40m remaining, got %v", status.Remaining)
	}
}

func TestStatusExpiresDuelExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, &fakeSelector{problem: testProblem()}, start)

	if _, err := svc.Challenge(ctx, -100, "group", challenger, challenged, 1500); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	if _, err := svc.Accept(ctx, challenged.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	svc.now = func() time.Time { return start.Add(DefaultDuration) }
	status, err := svc.Status(ctx, challenged.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Expired {
		t.Error("Duel at end time should be expired")
	}
	if status.Duel.Status != models.DuelStatusCompleted {
		t.Errorf("Expected completed status, got %s", status.Duel.Status)
	}

	// Once completed the duel is no longer anyone's active duel.
	if _, err := svc.Status(ctx, challenged.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestNewServiceDefaultsDuration(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeSelector{}, 0, logger.New("error"))
	if svc.Duration() != DefaultDuration {
		t.Errorf("Expected default duration %v, got %v", DefaultDuration, svc.Duration())
	}
}
