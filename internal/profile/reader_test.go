package profile

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"talent-radar/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestReaderEmptyProfile(t *testing.T) {
	t.Parallel()

	r := NewReader(&stubStore{}, nil)
	p, err := r.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if p.Education != nil || p.ExperienceYears != 0 || len(p.Skills) != 0 {
		t.Fatalf("expected empty profile, got %+v", p)
	}
}

func TestReaderCombinesRecords(t *testing.T) {
	t.Parallel()

	now := date(2026, 1, 1)
	store := &stubStore{
		edu: &model.UserEducation{Level: model.EducationMasters, EndDate: ptr(date(2020, 6, 1))},
		exps: []model.UserExperience{
			{StartDate: date(2020, 1, 1), EndDate: ptr(date(2022, 1, 1)), Skills: []string{"Go", " SQL "}},
			{StartDate: date(2023, 1, 1), Skills: []string{"go", "Kafka"}},
		},
	}
	r := NewReader(store, func() time.Time { return now })

	p, err := r.Read(context.Background(), 7)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if p.Education == nil || *p.Education != model.EducationMasters {
		t.Fatalf("expected masters education, got %v", p.Education)
	}
	if p.ExperienceYears != 5 {
		t.Fatalf("expected 5 years of experience, got %v", p.ExperienceYears)
	}
	if want := []string{"Go", "SQL", "Kafka"}; !reflect.DeepEqual(p.Skills, want) {
		t.Fatalf("skills = %v, want %v", p.Skills, want)
	}
	if store.lastUser != 7 {
		t.Fatalf("expected lookups for applicant 7, got %d", store.lastUser)
	}
	if !store.asOf.Equal(now) {
		t.Fatalf("expected education lookup as of reader clock, got %v", store.asOf)
	}
}

func TestTotalYearsIgnoresNegativeSpans(t *testing.T) {
	t.Parallel()

	exps := []model.UserExperience{
		{StartDate: date(2022, 1, 1), EndDate: ptr(date(2021, 1, 1))},
		{StartDate: date(2021, 1, 1), EndDate: ptr(date(2021, 7, 2))},
	}
	if got := TotalYears(exps, date(2026, 1, 1)); got != 0.5 {
		t.Fatalf("expected 0.5 years, got %v", got)
	}
}

func TestReaderPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	r := NewReader(&stubStore{err: boom}, nil)
	if _, err := r.Read(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

type stubStore struct {
	edu      *model.UserEducation
	exps     []model.UserExperience
	err      error
	lastUser uint
	asOf     time.Time
}

func (s *stubStore) LatestEducation(ctx context.Context, userID uint, asOf time.Time) (*model.UserEducation, error) {
	s.lastUser = userID
	s.asOf = asOf
	return s.edu, s.err
}

func (s *stubStore) ListExperience(ctx context.Context, userID uint) ([]model.UserExperience, error) {
	s.lastUser = userID
	return s.exps, nil
}
