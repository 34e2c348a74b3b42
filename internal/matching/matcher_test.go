package matching

import (
	"context"
	"errors"
	"testing"

	"talent-radar/internal/model"
	"talent-radar/internal/storage"
)

func TestMatchesPredicate(t *testing.T) {
	t.Parallel()

	it := model.JobCategory{ID: 1, Name: "IT"}
	design := model.JobCategory{ID: 2, Name: "Design"}
	posting := model.JobPosting{CategoryID: 1, PositionType: model.PositionFullTime, SalaryMax: 60000, IsActive: true}

	cases := []struct {
		name string
		pref model.JobPreference
		want bool
	}{
		{"all criteria", model.JobPreference{Categories: []model.JobCategory{it}, MinSalary: 50000, PositionType: model.PositionFullTime}, true},
		{"salary equal to max", model.JobPreference{Categories: []model.JobCategory{design, it}, MinSalary: 60000, PositionType: model.PositionFullTime}, true},
		{"salary too high", model.JobPreference{Categories: []model.JobCategory{it}, MinSalary: 70000, PositionType: model.PositionFullTime}, false},
		{"other category", model.JobPreference{Categories: []model.JobCategory{design}, MinSalary: 50000, PositionType: model.PositionFullTime}, false},
		{"other position type", model.JobPreference{Categories: []model.JobCategory{it}, MinSalary: 50000, PositionType: model.PositionPartTime}, false},
		{"no categories", model.JobPreference{MinSalary: 0, PositionType: model.PositionFullTime}, false},
	}
	for _, tc := range cases {
		if got := Matches(tc.pref, posting); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMatcherFiltersDedupsAndSorts(t *testing.T) {
	t.Parallel()

	it := model.JobCategory{ID: 1, Name: "IT"}
	store := &stubStore{prefs: []model.JobPreference{
		{ID: 3, ApplicantID: 9, Applicant: model.User{ID: 9, Email: "z@example.com"}, Categories: []model.JobCategory{it}, MinSalary: 40000, PositionType: model.PositionFullTime},
		{ID: 4, ApplicantID: 5, Applicant: model.User{ID: 5, Email: "a@example.com"}, Categories: []model.JobCategory{it}, MinSalary: 50000, PositionType: model.PositionFullTime},
		{ID: 7, ApplicantID: 9, Applicant: model.User{ID: 9, Email: "z@example.com"}, Categories: []model.JobCategory{it}, MinSalary: 30000, PositionType: model.PositionFullTime},
		// 存储层多返回的不匹配行会被内存谓词过滤
		{ID: 8, ApplicantID: 6, Applicant: model.User{ID: 6, Email: "b@example.com"}, Categories: []model.JobCategory{it}, MinSalary: 90000, PositionType: model.PositionFullTime},
	}}
	m := NewMatcher(store, nil)
	posting := model.JobPosting{ID: 11, CategoryID: 1, PositionType: model.PositionFullTime, SalaryMax: 60000, IsActive: true}

	got, err := m.Match(context.Background(), posting)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 applicants, got %+v", got)
	}
	if got[0].ApplicantID != 5 || got[1].ApplicantID != 9 {
		t.Fatalf("expected applicants ordered by id, got %+v", got)
	}
	if got[1].PreferenceID != 3 || got[1].Email != "z@example.com" {
		t.Fatalf("unexpected dedup result: %+v", got[1])
	}
	if store.last.CategoryID != 1 || store.last.SalaryCeiling != 60000 || store.last.PositionType != model.PositionFullTime {
		t.Fatalf("unexpected filter: %+v", store.last)
	}

	again, err := m.Match(context.Background(), posting)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if len(again) != len(got) || again[0] != got[0] || again[1] != got[1] {
		t.Fatalf("expected repeated match to be identical, got %+v vs %+v", again, got)
	}
}

func TestMatcherInactivePosting(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	got, err := NewMatcher(store, nil).Match(context.Background(), model.JobPosting{ID: 1, IsActive: false})
	if err != nil || got != nil {
		t.Fatalf("expected no matches for inactive posting, got %v, %v", got, err)
	}
	if store.calls != 0 {
		t.Fatalf("expected store not to be queried")
	}
}

func TestMatcherStoreErrorIsRetryable(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	_, err := NewMatcher(&stubStore{err: boom}, nil).Match(context.Background(), model.JobPosting{IsActive: true})
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrUnavailable wrapping cause, got %v", err)
	}
}

func TestMatcherAgainstStore(t *testing.T) {
	t.Parallel()

	st, err := storage.NewStore(t.TempDir() + "/match.db")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()

	hr := &model.User{Email: "hr@example.com", AccountType: model.AccountHR}
	alice := &model.User{Email: "alice@example.com", AccountType: model.AccountApplicant}
	bob := &model.User{Email: "bob@example.com", AccountType: model.AccountApplicant}
	for _, u := range []*model.User{hr, alice, bob} {
		if err := st.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser error: %v", err)
		}
	}
	it := &model.JobCategory{Name: "IT"}
	design := &model.JobCategory{Name: "Design"}
	for _, c := range []*model.JobCategory{it, design} {
		if err := st.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory error: %v", err)
		}
	}
	prefs := []*model.JobPreference{
		{ApplicantID: alice.ID, Categories: []model.JobCategory{*it}, MinSalary: 50000, PositionType: model.PositionFullTime},
		{ApplicantID: bob.ID, Categories: []model.JobCategory{*design}, MinSalary: 50000, PositionType: model.PositionFullTime},
	}
	for _, p := range prefs {
		if err := st.CreatePreference(ctx, p); err != nil {
			t.Fatalf("CreatePreference error: %v", err)
		}
	}

	posting := model.JobPosting{ID: 1, CreatorID: hr.ID, CategoryID: it.ID, PositionType: model.PositionFullTime, SalaryMin: 50000, SalaryMax: 70000, IsActive: true}
	got, err := NewMatcher(st, nil).Match(ctx, posting)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if len(got) != 1 || got[0].ApplicantID != alice.ID || got[0].Email != "alice@example.com" {
		t.Fatalf("expected only alice to match, got %+v", got)
	}
}

type stubStore struct {
	prefs []model.JobPreference
	err   error
	last  storage.PreferenceFilter
	calls int
}

func (s *stubStore) FindPreferences(ctx context.Context, f storage.PreferenceFilter) ([]model.JobPreference, error) {
	s.calls++
	s.last = f
	if s.err != nil {
		return nil, s.err
	}
	return s.prefs, nil
}
