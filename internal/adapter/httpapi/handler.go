package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/studyplan/internal/adapter/mapping"
	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/internal/usecase"
	"github.com/eslsoft/studyplan/internal/usecase/backup"
)

const maxBodyBytes = 1 << 20

var errMalformedRequest = errors.New("malformed request")

// Handler serves the plan over JSON.
type Handler struct {
	plan     usecase.StudyPlanUsecase
	backup   *backup.Service
	hub      *Hub
	logger   *logrus.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
	location *time.Location
}

func NewHandler(plan usecase.StudyPlanUsecase, backupSvc *backup.Service, hub *Hub, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		plan:     plan,
		backup:   backupSvc,
		hub:      hub,
		logger:   logger,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		location: time.Local,
	}
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusBadRequest
	grpcCode := "InvalidArgument"
	if !errors.Is(err, errMalformedRequest) {
		code = mapping.HTTPStatus(err)
		grpcCode = status.Code(mapping.ToStatus(err)).String()
	}
	if code >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, errorResponse{Error: err.Error(), Code: grpcCode}, code)
}

// decode reads a JSON body into dst and runs its validation tags.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	return nil
}

func (h *Handler) parseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(mapping.DateLayout, strings.TrimSpace(raw), h.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	return t, nil
}

func itemPath(r *http.Request) (int, string, error) {
	vars := mux.Vars(r)
	categoryID, err := strconv.Atoi(vars["categoryId"])
	if err != nil {
		return 0, "", fmt.Errorf("%w: category id %q", errMalformedRequest, vars["categoryId"])
	}
	return categoryID, vars["itemId"], nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) (*usecase.Dashboard, bool) {
	d, err := h.plan.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":      "ok",
		"subscribers": h.hub.Subscribers(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, mapping.ToOverview(d), http.StatusOK)
	}
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, mapping.ToMetrics(d.Metrics), http.StatusOK)
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, map[string]any{"categories": mapping.ToCategories(d.Categories)}, http.StatusOK)
	}
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, map[string]any{"schedule": mapping.ToSchedule(d.Schedule)}, http.StatusOK)
	}
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, mapping.ToAnalytics(d.Analytics, d.Availability), http.StatusOK)
	}
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, mapping.ToTimeline(d.Timeline), http.StatusOK)
	}
}

func (h *Handler) ListStandards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := listStandardsQuery{Filter: q.Get("filter"), OrderBy: q.Get("order_by")}
	for key, dst := range map[string]*int32{"page_no": &query.PageNo, "page_size": &query.PageSize} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %s=%q", errMalformedRequest, key, raw))
			return
		}
		*dst = int32(n)
	}
	if err := h.validate.Struct(query); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errMalformedRequest, err))
		return
	}

	listQuery := &repository.ListStudyItemQuery{
		Pagination:  repository.Pagination{PageNo: query.PageNo, PageSize: query.PageSize},
		FilterOrder: repository.FilterOrder{Filter: query.Filter, OrderBy: query.OrderBy},
	}
	items, total, err := h.plan.ListStudyItems(r.Context(), listQuery)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, listStandardsResponse{
		Standards: lo.Map(items, func(item entity.CategorizedItem, _ int) mapping.StudyItem { return mapping.ToCategorizedItem(item) }),
		Total:     total,
		PageNo:    max(query.PageNo, 1),
	}, http.StatusOK)
}

// itemHandler adapts an item mutation into an HTTP handler.
func (h *Handler) itemHandler(run func(ctx context.Context, r *http.Request, categoryID int, itemID string) (*entity.StudyItem, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, itemID, err := itemPath(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		item, err := run(r.Context(), r, categoryID, itemID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out := mapping.ToStudyItem(*item)
		out.CategoryID = categoryID
		writeJSON(w, out, http.StatusOK)
	}
}

func (h *Handler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(func(ctx context.Context, _ *http.Request, categoryID int, itemID string) (*entity.StudyItem, error) {
		return h.plan.ToggleCompletion(ctx, categoryID, itemID)
	})(w, r)
}

func (h *Handler) SetHoursSpent(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(func(ctx context.Context, r *http.Request, categoryID int, itemID string) (*entity.StudyItem, error) {
		var req setHoursRequest
		if err := h.decode(r, &req); err != nil {
			return nil, err
		}
		return h.plan.SetHoursSpent(ctx, categoryID, itemID, *req.Hours)
	})(w, r)
}

func (h *Handler) SetPriority(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(func(ctx context.Context, r *http.Request, categoryID int, itemID string) (*entity.StudyItem, error) {
		var req setPriorityRequest
		if err := h.decode(r, &req); err != nil {
			return nil, err
		}
		return h.plan.SetPriority(ctx, categoryID, itemID, entity.ParseLevel(req.Priority))
	})(w, r)
}

func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(func(ctx context.Context, r *http.Request, categoryID int, itemID string) (*entity.StudyItem, error) {
		var req setNotesRequest
		if err := h.decode(r, &req); err != nil {
			return nil, err
		}
		return h.plan.SetNotes(ctx, categoryID, itemID, req.Notes)
	})(w, r)
}

func (h *Handler) SetScheduledDate(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(func(ctx context.Context, r *http.Request, categoryID int, itemID string) (*entity.StudyItem, error) {
		var req setScheduledDateRequest
		if err := h.decode(r, &req); err != nil {
			return nil, err
		}
		var date *time.Time
		if req.Date != nil && *req.Date != "" {
			parsed, err := h.parseDate(*req.Date)
			if err != nil {
				return nil, err
			}
			date = &parsed
		}
		return h.plan.SetScheduledDate(ctx, categoryID, itemID, date)
	})(w, r)
}

func (h *Handler) ToggleCategoryExpansion(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(mux.Vars(r)["categoryId"])
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: category id", errMalformedRequest))
		return
	}
	cat, err := h.plan.ToggleCategoryExpansion(r.Context(), categoryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, mapping.ToCategory(*cat), http.StatusOK)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, mapping.ToAvailability(d.Availability), http.StatusOK)
	}
}

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: day", errMalformedRequest))
		return
	}
	var req setAvailabilityRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	avail, err := h.plan.SetWeeklyAvailability(r.Context(), day, *req.Hours)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, mapping.ToAvailability(avail), http.StatusOK)
}

func (h *Handler) GetExamDate(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		writeJSON(w, map[string]any{
			"examDate":      d.ExamDate.Format(mapping.DateLayout),
			"daysRemaining": d.Metrics.DaysRemaining,
		}, http.StatusOK)
	}
}

func (h *Handler) SetExamDate(w http.ResponseWriter, r *http.Request) {
	var req setExamDateRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.plan.SetExamDate(r.Context(), date); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.GetExamDate(w, r)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var opts []backup.ExportOption
	if raw := r.URL.Query().Get("categories"); raw != "" {
		var ids []int
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				h.writeError(w, r, fmt.Errorf("%w: categories=%q", errMalformedRequest, raw))
				return
			}
			ids = append(ids, id)
		}
		opts = append(opts, backup.WithCategories(ids))
	}

	// Seeds the store on first use so an export never fails on an empty plan.
	if _, ok := h.dashboard(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="study_plan_%s.json"`, time.Now().Format("20060102")))
	if err := h.backup.Export(r.Context(), w, opts...); err != nil {
		h.writeError(w, r, err)
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	snapshot, err := h.backup.Import(r.Context(), r.Body, backup.WithDryRun())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !dryRun {
		if err := h.plan.ReplacePlan(r.Context(), snapshot); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, map[string]any{
		"dryRun":     dryRun,
		"categories": len(snapshot.Categories),
		"standards":  len(entity.FlattenItems(snapshot.Categories)),
		"examDate":   snapshot.ExamDate.Format(mapping.DateLayout),
	}, http.StatusOK)
}

// Events upgrades to a websocket that receives every plan change.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	h.hub.serve(conn)
}
