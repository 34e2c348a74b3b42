package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"talent-radar/internal/matching"
	"talent-radar/internal/model"
	"talent-radar/internal/posting"
	"talent-radar/internal/preference"
	"talent-radar/internal/screening"
	"talent-radar/internal/storage"
	"talent-radar/internal/validate"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	w := serve(NewHandler(Deps{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPublishPosting(t *testing.T) {
	t.Parallel()

	ps := &stubPostings{res: posting.Result{Posting: &model.JobPosting{ID: 7, Title: "Backend"}, Matched: 2}}
	h := NewHandler(Deps{Postings: ps})

	w := serve(h, http.MethodPost, "/api/postings", `{"creator_id":1,"title":"Backend"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if ps.calls != 1 || ps.lastReq.Title != "Backend" {
		t.Fatalf("unexpected service call: %+v", ps)
	}
	var body posting.Result
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Posting == nil || body.Posting.ID != 7 || body.Matched != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}

	if w := serve(h, http.MethodGet, "/api/postings", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w := serve(h, http.MethodPost, "/api/postings", `{`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad payload, got %d", w.Code)
	}
}

func TestPublishPostingMatchPending(t *testing.T) {
	t.Parallel()

	ps := &stubPostings{
		res: posting.Result{Posting: &model.JobPosting{ID: 7}},
		err: fmt.Errorf("match posting 7: %w", matching.ErrUnavailable),
	}
	w := serve(NewHandler(Deps{Postings: ps}), http.MethodPost, "/api/postings", `{}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if w.Header().Get("X-Match-Pending") != "true" {
		t.Fatalf("expected X-Match-Pending header")
	}
}

func TestRematch(t *testing.T) {
	t.Parallel()

	ps := &stubPostings{res: posting.Result{Posting: &model.JobPosting{ID: 3}}}
	h := NewHandler(Deps{Postings: ps})

	if w := serve(h, http.MethodPost, "/api/postings/rematch?id=3", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ps.lastID != 3 {
		t.Fatalf("expected posting 3, got %d", ps.lastID)
	}
	if w := serve(h, http.MethodPost, "/api/postings/rematch?id=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
	}{
		{validate.Field("title", "is required"), http.StatusBadRequest},
		{fmt.Errorf("user 2: %w", posting.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("user 2: %w", preference.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("get posting: %w", storage.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("posting 1: %w", screening.ErrPostingClosed), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewHandler(Deps{Screening: &stubScreening{err: tc.err}})
		w := serve(h, http.MethodPost, "/api/applications", `{"applicant_id":1,"job_posting_id":2}`)
		if w.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, w.Code)
		}
	}

	h := NewHandler(Deps{Screening: &stubScreening{err: validate.Field("title", "is required")}})
	w := serve(h, http.MethodPost, "/api/applications", `{}`)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Fields["title"] != "is required" {
		t.Fatalf("expected field errors in body, got %s", w.Body.String())
	}
}

func TestSubmitApplication(t *testing.T) {
	t.Parallel()

	sc := &stubScreening{app: &model.JobApplication{ID: 5, ScreeningScore: 80, PassedScreening: true}}
	w := serve(NewHandler(Deps{Screening: sc}), http.MethodPost, "/api/applications", `{"applicant_id":1,"job_posting_id":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if sc.lastReq.ApplicantID != 1 || sc.lastReq.JobPostingID != 2 {
		t.Fatalf("unexpected request: %+v", sc.lastReq)
	}
}

func TestCreatePreference(t *testing.T) {
	t.Parallel()

	pr := &stubPreferences{}
	w := serve(NewHandler(Deps{Preferences: pr}), http.MethodPost, "/api/preferences", `{"applicant_id":1,"category_ids":[1,2],"min_salary":50000,"position_type":"FULL_TIME"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(pr.lastReq.CategoryIDs) != 2 || pr.lastReq.MinSalary != 50000 {
		t.Fatalf("unexpected request: %+v", pr.lastReq)
	}
}

func TestListNotifications(t *testing.T) {
	t.Parallel()

	ns := &stubNotifications{items: []model.Notification{{ID: 1, Subject: "hi"}}}
	h := NewHandler(Deps{Notifications: ns})

	w := serve(h, http.MethodGet, "/api/notifications?user_id=4&limit=500", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ns.lastUser != 4 || ns.lastLimit != 100 {
		t.Fatalf("unexpected query: user %d limit %d", ns.lastUser, ns.lastLimit)
	}
	if w := serve(h, http.MethodGet, "/api/notifications", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", w.Code)
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	t.Parallel()

	ns := &stubNotifications{items: []model.Notification{{ID: 1}, {ID: 2}}}
	h := NewHandler(Deps{Notifications: ns})

	if w := serve(h, http.MethodPost, "/api/notifications/read?user_id=4&id=2", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(ns.read) != 1 || ns.read[0] != 2 || ns.lastUser != 4 {
		t.Fatalf("unexpected single read: %+v", ns)
	}

	w := serve(h, http.MethodPost, "/api/notifications/read?user_id=4", "")
	if w.Code != http.StatusOK || ns.readAll != 1 {
		t.Fatalf("expected mark-all to run, got %d (calls %d)", w.Code, ns.readAll)
	}
	if !strings.Contains(w.Body.String(), `"updated":2`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	if w := serve(h, http.MethodPost, "/api/notifications/read?user_id=4&id=9", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown notification, got %d", w.Code)
	}
	if w := serve(h, http.MethodPost, "/api/notifications/read?user_id=4&id=x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if w := serve(h, http.MethodGet, "/api/notifications/read?user_id=4", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestRunTask(t *testing.T) {
	t.Parallel()

	sch := &stubScheduler{}
	h := NewHandler(Deps{Scheduler: sch})
	w := serve(h, http.MethodPost, "/api/tasks/run?name=notification-retry", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sch.calls != 1 || sch.last != "notification-retry" {
		t.Fatalf("expected scheduler called once, got %+v", sch)
	}
}

func TestDisabledServices(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{})
	for _, path := range []string{"/api/postings", "/api/applications", "/api/preferences", "/api/tasks/run"} {
		if w := serve(h, http.MethodPost, path, `{}`); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, w.Code)
		}
	}
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// --- stubs ---

type stubPostings struct {
	res     posting.Result
	err     error
	calls   int
	lastReq posting.Request
	lastID  uint
}

func (s *stubPostings) Publish(ctx context.Context, req posting.Request) (posting.Result, error) {
	s.calls++
	s.lastReq = req
	return s.res, s.err
}

func (s *stubPostings) Rematch(ctx context.Context, id uint) (posting.Result, error) {
	s.calls++
	s.lastID = id
	return s.res, s.err
}

type stubScreening struct {
	app     *model.JobApplication
	err     error
	lastReq screening.Request
}

func (s *stubScreening) Submit(ctx context.Context, req screening.Request) (*model.JobApplication, error) {
	s.lastReq = req
	return s.app, s.err
}

type stubPreferences struct {
	lastReq preference.Request
}

func (s *stubPreferences) Create(ctx context.Context, req preference.Request) (model.JobPreference, error) {
	s.lastReq = req
	return model.JobPreference{ID: 1, ApplicantID: req.ApplicantID}, nil
}

type stubNotifications struct {
	items     []model.Notification
	lastUser  uint
	lastLimit int
	read      []uint
	readAll   int
}

func (s *stubNotifications) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	s.lastUser = userID
	for _, n := range s.items {
		if n.ID == id {
			s.read = append(s.read, id)
			return nil
		}
	}
	return fmt.Errorf("mark notification read %d: %w", id, storage.ErrNotFound)
}

func (s *stubNotifications) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	s.lastUser = userID
	s.readAll++
	return int64(len(s.items)), nil
}

func (s *stubNotifications) ListNotificationsForUser(ctx context.Context, userID uint, limit int) ([]model.Notification, error) {
	s.lastUser = userID
	s.lastLimit = limit
	return s.items, nil
}

type stubScheduler struct {
	calls int
	last  string
}

func (s *stubScheduler) RunOnce(ctx context.Context, name string) (bool, error) {
	s.calls++
	s.last = name
	return true, nil
}
