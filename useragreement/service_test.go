package useragreement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

type fakeRepo struct {
	agreeability int64
	termsMissing bool
	hasAgreement bool
	unmet        []int64
	banned       bool

	insertedUser  int64
	insertedTerms int64
	insertedAt    time.Time
	insertCount   int
}

func (f *fakeRepo) TermsAgreeabilityType(ctx context.Context, tx pgx.Tx, termsID int64) (int64, error) {
	if f.termsMissing {
		return 0, ErrTermsNotFound
	}
	return f.agreeability, nil
}

func (f *fakeRepo) HasAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error) {
	return f.hasAgreement, nil
}

func (f *fakeRepo) UnmetDependencies(ctx context.Context, tx pgx.Tx, userID, termsID int64) ([]int64, error) {
	return f.unmet, nil
}

func (f *fakeRepo) IsBanned(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error) {
	return f.banned, nil
}

func (f *fakeRepo) InsertAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64, agreedAt time.Time) error {
	f.insertedUser = userID
	f.insertedTerms = termsID
	f.insertedAt = agreedAt
	f.insertCount++
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, zap.NewNop())
}

func agreedPayload() events.UserAgreedPayload {
	return events.UserAgreedPayload{UserID: 42, TermsOfUseID: 5001}
}

func TestAgree_RecordsAgreement(t *testing.T) {
	repo := &fakeRepo{agreeability: events.AgreeabilityElectronicallyAgreeable}
	svc := newTestService(repo)

	if err := svc.Agree(context.Background(), nil, agreedPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.insertCount != 1 {
		t.Fatalf("expected one insert, got %d", repo.insertCount)
	}
	if repo.insertedUser != 42 || repo.insertedTerms != 5001 {
		t.Errorf("unexpected agreement row: user %d terms %d", repo.insertedUser, repo.insertedTerms)
	}
}

func TestAgree_UsesPayloadTimestamp(t *testing.T) {
	repo := &fakeRepo{agreeability: events.AgreeabilityElectronicallyAgreeable}
	svc := newTestService(repo)

	created := time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)
	p := agreedPayload()
	p.Created = &created

	if err := svc.Agree(context.Background(), nil, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.insertedAt.Equal(created) {
		t.Errorf("expected agreed at %v, got %v", created, repo.insertedAt)
	}
}

func TestAgree_FallsBackToClock(t *testing.T) {
	repo := &fakeRepo{agreeability: events.AgreeabilityElectronicallyAgreeable}
	fixed := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo).WithClock(func() time.Time { return fixed })

	if err := svc.Agree(context.Background(), nil, agreedPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.insertedAt.Equal(fixed) {
		t.Errorf("expected agreed at %v, got %v", fixed, repo.insertedAt)
	}
}

func TestAgree_UnknownTerms(t *testing.T) {
	repo := &fakeRepo{termsMissing: true}
	svc := newTestService(repo)

	err := svc.Agree(context.Background(), nil, agreedPayload())
	if !errors.Is(err, ErrTermsNotFound) {
		t.Fatalf("expected ErrTermsNotFound, got %v", err)
	}
	if repo.insertCount != 0 {
		t.Error("no insert expected")
	}
}

func TestAgree_RejectsDocusignableTerms(t *testing.T) {
	repo := &fakeRepo{agreeability: events.AgreeabilityDocusignable}
	svc := newTestService(repo)

	err := svc.Agree(context.Background(), nil, agreedPayload())
	if !errors.Is(err, ErrNotElectronicallyAgreeable) {
		t.Fatalf("expected ErrNotElectronicallyAgreeable, got %v", err)
	}
	if repo.insertCount != 0 {
		t.Error("no insert expected")
	}
}

func TestAgree_RejectsDuplicate(t *testing.T) {
	repo := &fakeRepo{
		agreeability: events.AgreeabilityElectronicallyAgreeable,
		hasAgreement: true,
	}
	svc := newTestService(repo)

	err := svc.Agree(context.Background(), nil, agreedPayload())
	if !errors.Is(err, ErrAlreadyAgreed) {
		t.Fatalf("expected ErrAlreadyAgreed, got %v", err)
	}
	if repo.insertCount != 0 {
		t.Error("no insert expected")
	}
}

func TestAgree_RejectsUnmetDependencies(t *testing.T) {
	repo := &fakeRepo{
		agreeability: events.AgreeabilityElectronicallyAgreeable,
		unmet:        []int64{4999},
	}
	svc := newTestService(repo)

	err := svc.Agree(context.Background(), nil, agreedPayload())
	if !errors.Is(err, ErrDependenciesNotMet) {
		t.Fatalf("expected ErrDependenciesNotMet, got %v", err)
	}
	if repo.insertCount != 0 {
		t.Error("no insert expected")
	}
}

func TestAgree_RejectsBannedUser(t *testing.T) {
	repo := &fakeRepo{
		agreeability: events.AgreeabilityElectronicallyAgreeable,
		banned:       true,
	}
	svc := newTestService(repo)

	err := svc.Agree(context.Background(), nil, agreedPayload())
	if !errors.Is(err, ErrUserBanned) {
		t.Fatalf("expected ErrUserBanned, got %v", err)
	}
	if repo.insertCount != 0 {
		t.Error("no insert expected")
	}
}
