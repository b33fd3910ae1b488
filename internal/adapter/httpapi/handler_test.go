package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studyplan/internal/adapter/mapping"
	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/internal/usecase"
	"github.com/eslsoft/studyplan/internal/usecase/backup"
)

type memoryRepo struct {
	mu   sync.RWMutex
	snap *entity.Snapshot
}

func (r *memoryRepo) Load(ctx context.Context) (*entity.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snap == nil {
		return nil, entity.ErrCurriculumNotInitialized
	}
	return r.snap.Clone(), nil
}

func (r *memoryRepo) Save(ctx context.Context, snapshot *entity.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snapshot.Clone()
	return nil
}

func (r *memoryRepo) ListStudyItems(ctx context.Context, query *repository.ListStudyItemQuery) ([]entity.CategorizedItem, int64, error) {
	if query.Filter != "" {
		return nil, 0, entity.ErrInvalidQuery
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := entity.FlattenItems(r.snap.Categories)
	start := min(int(query.Offset()), len(items))
	end := min(start+int(query.PageSize), len(items))
	return items[start:end], int64(len(items)), nil
}

type testEnv struct {
	repo    *memoryRepo
	hub     *Hub
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := &memoryRepo{}
	hub := NewHub(logger)
	plan := usecase.NewStudyPlanUsecase(repo, usecase.PlanSettings{ExamOffsetDays: 30}, hub, logger)
	h := NewHandler(plan, backup.NewService(repo), hub, logger)
	return &testEnv{repo: repo, hub: hub, handler: NewRouter(h)}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestOverviewSeedsDefaultPlan(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}
	overview := decodeBody[mapping.Overview](t, rec)
	if overview.Metrics.ItemsCompleted != 3 || overview.Metrics.ItemsOutstanding != 26 {
		t.Fatalf("unexpected metrics %+v", overview.Metrics)
	}
	if overview.Availability.Total != 10 || len(overview.Availability.Days) != 7 {
		t.Fatalf("unexpected availability %+v", overview.Availability)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestToggleCompletionRemovesFromSchedule(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/categories/1/standards/LKAS1/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", rec.Code, rec.Body.String())
	}
	item := decodeBody[mapping.StudyItem](t, rec)
	if !item.Completed || item.HoursSpent != 3 || item.CategoryID != 1 {
		t.Fatalf("unexpected item %+v", item)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/schedule", "")
	schedule := decodeBody[struct {
		Schedule []mapping.ScheduleEntry `json:"schedule"`
	}](t, rec)
	for _, entry := range schedule.Schedule {
		if entry.ItemID == "LKAS1" {
			t.Fatalf("completed item still scheduled")
		}
	}
}

func TestItemMutationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing hours", http.MethodPut, "/api/v1/categories/1/standards/LKAS1/hours", `{}`, http.StatusBadRequest, "InvalidArgument"},
		{"unknown field", http.MethodPut, "/api/v1/categories/1/standards/LKAS1/hours", `{"hours": 1, "extra": true}`, http.StatusBadRequest, "InvalidArgument"},
		{"unknown item", http.MethodPut, "/api/v1/categories/1/standards/NOPE/hours", `{"hours": 1}`, http.StatusNotFound, "NotFound"},
		{"unknown category", http.MethodPost, "/api/v1/categories/77/standards/LKAS1/toggle", "", http.StatusNotFound, "NotFound"},
		{"bad priority", http.MethodPut, "/api/v1/categories/1/standards/LKAS1/priority", `{"priority": "urgent"}`, http.StatusBadRequest, "InvalidArgument"},
		{"bad date", http.MethodPut, "/api/v1/categories/1/standards/LKAS1/scheduled-date", `{"date": "03/05/2025"}`, http.StatusBadRequest, "InvalidArgument"},
		{"date in the past", http.MethodPut, "/api/v1/categories/1/standards/LKAS1/scheduled-date", `{"date": "2001-01-01"}`, http.StatusBadRequest, "OutOfRange"},
		{"availability too high", http.MethodPut, "/api/v1/availability/3", `{"hours": 30}`, http.StatusBadRequest, "InvalidArgument"},
		{"weekday out of range", http.MethodPut, "/api/v1/availability/9", `{"hours": 1}`, http.StatusBadRequest, "InvalidArgument"},
		{"bad filter", http.MethodGet, "/api/v1/standards?filter=priority%3D%3D'high'", "", http.StatusBadRequest, "InvalidArgument"},
		{"bad page", http.MethodGet, "/api/v1/standards?page_size=abc", "", http.StatusBadRequest, "InvalidArgument"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := decodeBody[errorResponse](t, rec); got.Code != tc.code {
				t.Fatalf("expected code %s, got %+v", tc.code, got)
			}
		})
	}
}

func TestItemMutations(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/categories/2/standards/LKAS41/hours", `{"hours": -3}`)
	if item := decodeBody[mapping.StudyItem](t, rec); rec.Code != http.StatusOK || item.HoursSpent != 0 || item.Completed {
		t.Fatalf("expected clamped hours, got %d %+v", rec.Code, item)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/categories/2/standards/LKAS41/priority", `{"priority": "high"}`)
	if item := decodeBody[mapping.StudyItem](t, rec); item.Priority != "high" {
		t.Fatalf("priority not updated: %+v", item)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/categories/2/standards/LKAS41/notes", `{"notes": "biological assets"}`)
	if item := decodeBody[mapping.StudyItem](t, rec); item.Notes != "biological assets" {
		t.Fatalf("notes not updated: %+v", item)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format(mapping.DateLayout)
	rec = env.do(t, http.MethodPut, "/api/v1/categories/2/standards/LKAS41/scheduled-date", `{"date": "`+tomorrow+`"}`)
	if item := decodeBody[mapping.StudyItem](t, rec); item.ScheduledDate == nil || *item.ScheduledDate != tomorrow {
		t.Fatalf("scheduled date not updated: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/v1/categories/2/standards/LKAS41/scheduled-date", `{"date": null}`)
	if item := decodeBody[mapping.StudyItem](t, rec); item.ScheduledDate != nil {
		t.Fatalf("scheduled date not cleared: %+v", item)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/categories/2/expand", "")
	if cat := decodeBody[mapping.Category](t, rec); !cat.Expanded || len(cat.Standards) != 5 {
		t.Fatalf("unexpected category %+v", cat)
	}
}

func TestPlanSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/availability/3", `{"hours": 0}`)
	avail := decodeBody[mapping.Availability](t, rec)
	if rec.Code != http.StatusOK || avail.Days[3].Hours != 0 || avail.Days[3].Name != "Thursday" || avail.Total != 8 {
		t.Fatalf("unexpected availability %d %+v", rec.Code, avail)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/exam-date", `{"date": "2099-01-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set exam date: %d %s", rec.Code, rec.Body.String())
	}
	exam := decodeBody[map[string]any](t, rec)
	if exam["examDate"] != "2099-01-01" {
		t.Fatalf("unexpected exam date %v", exam)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/exam-date", `{"date": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty date, got %d", rec.Code)
	}
}

func TestReadViews(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/standards?page_size=5&page_no=2", "")
	list := decodeBody[struct {
		Standards []mapping.StudyItem `json:"standards"`
		Total     int64               `json:"total"`
		PageNo    int32               `json:"pageNo"`
	}](t, rec)
	if list.Total != 29 || len(list.Standards) != 5 || list.PageNo != 2 || list.Standards[0].ID != "LKAS37" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/categories", "")
	cats := decodeBody[struct {
		Categories []mapping.Category `json:"categories"`
	}](t, rec)
	if len(cats.Categories) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(cats.Categories))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/analytics", "")
	analytics := decodeBody[mapping.Analytics](t, rec)
	if len(analytics.ThisWeek) != 3 || analytics.LightestDay == nil {
		t.Fatalf("unexpected analytics %+v", analytics)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/timeline", "")
	timeline := decodeBody[mapping.Timeline](t, rec)
	if len(timeline.Weeks) == 0 || len(timeline.Rows) == 0 {
		t.Fatalf("unexpected timeline %+v", timeline)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/metrics", "")
	if m := decodeBody[mapping.Metrics](t, rec); m.DaysRemaining != 29 && m.DaysRemaining != 30 {
		t.Fatalf("unexpected days remaining %d", m.DaysRemaining)
	}
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/categories/1/standards/LKAS7/toggle", "")

	rec := env.do(t, http.MethodGet, "/api/v1/export?categories=1,8", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "study_plan_") {
		t.Fatalf("missing attachment header")
	}
	exported := rec.Body.Bytes()

	rec = env.do(t, http.MethodGet, "/api/v1/export?categories=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad category list, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/import?dry_run=true", string(exported))
	if res := decodeBody[map[string]any](t, rec); rec.Code != http.StatusOK || res["dryRun"] != true || res["categories"] != float64(2) {
		t.Fatalf("unexpected dry run %d %v", rec.Code, res)
	}
	snap, _ := env.repo.Load(context.Background())
	if len(snap.Categories) != 8 {
		t.Fatalf("dry run must not replace the plan")
	}

	rec = env.do(t, http.MethodPost, "/api/v1/import", string(exported))
	if rec.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	snap, _ = env.repo.Load(context.Background())
	if len(snap.Categories) != 2 || !snap.Categories[0].Items[1].Completed {
		t.Fatalf("import did not replace the plan: %+v", snap.Categories)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/import", `{"categories": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing exam date, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/exam-date", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", rec.Header())
	}
}

func TestEventsStreamChanges(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for env.hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(srv.URL+"/api/v1/categories/1/standards/LKAS1/toggle", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var change mapping.Change
	if err := conn.ReadJSON(&change); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if change.Kind != "item" || change.ItemID != "LKAS1" || change.Metrics.ItemsCompleted != 4 {
		t.Fatalf("unexpected change %+v", change)
	}
}
