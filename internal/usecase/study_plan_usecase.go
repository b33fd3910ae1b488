package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/internal/usecase/planner"
)

// StudyPlanUsecase is the single entry point for reading and changing the
// stored study plan. Writes are serialized: each one loads the plan, applies
// the change to a Session and saves the result before the next one starts.
type StudyPlanUsecase interface {
	// Seed stores the default curriculum when the store is empty, or always
	// when reset is set. It reports whether anything was written.
	Seed(ctx context.Context, reset bool) (bool, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListStudyItems(ctx context.Context, query *repository.ListStudyItemQuery) ([]entity.CategorizedItem, int64, error)

	ToggleCompletion(ctx context.Context, categoryID int, itemID string) (*entity.StudyItem, error)
	SetHoursSpent(ctx context.Context, categoryID int, itemID string, hours float64) (*entity.StudyItem, error)
	SetPriority(ctx context.Context, categoryID int, itemID string, priority entity.Level) (*entity.StudyItem, error)
	SetNotes(ctx context.Context, categoryID int, itemID, notes string) (*entity.StudyItem, error)
	SetScheduledDate(ctx context.Context, categoryID int, itemID string, date *time.Time) (*entity.StudyItem, error)
	SetWeeklyAvailability(ctx context.Context, day int, hours float64) (entity.WeeklyAvailability, error)
	SetExamDate(ctx context.Context, date time.Time) (time.Time, error)
	ToggleCategoryExpansion(ctx context.Context, categoryID int) (*entity.Category, error)
	// ReplacePlan swaps in a whole snapshot, as produced by an import.
	ReplacePlan(ctx context.Context, snapshot *entity.Snapshot) error
}

// Dashboard is everything derived from the plan at one instant.
type Dashboard struct {
	Now          time.Time
	ExamDate     time.Time
	Availability entity.WeeklyAvailability
	Categories   []entity.Category
	Schedule     []entity.ScheduleEntry
	Metrics      planner.Metrics
	Analytics    planner.Analytics
	Timeline     planner.Timeline
}

// PlanSettings carries the tunables of the plan.
type PlanSettings struct {
	ForecastHorizonDays int
	ExamOffsetDays      int
}

type ChangeKind string

const (
	ChangeItem         ChangeKind = "item"
	ChangeCategory     ChangeKind = "category"
	ChangeAvailability ChangeKind = "availability"
	ChangeExamDate     ChangeKind = "exam_date"
	ChangePlan         ChangeKind = "plan"
)

// Change describes a stored mutation and the metrics that resulted from it.
type Change struct {
	Kind       ChangeKind
	CategoryID int
	ItemID     string
	At         time.Time
	Metrics    planner.Metrics
}

// ChangeNotifier is told about every successful write. Notify must not block.
type ChangeNotifier interface {
	Notify(change Change)
}

const (
	_defaultPageSize = int32(20)
	_maxPageSize     = int32(1000)
)

type studyPlanUsecase struct {
	mu       sync.Mutex
	repo     repository.CurriculumRepository
	settings PlanSettings
	notifier ChangeNotifier
	logger   *logrus.Logger
	clock    func() time.Time
}

// NewStudyPlanUsecase wires the repository with default behaviour. notifier
// may be nil.
func NewStudyPlanUsecase(repo repository.CurriculumRepository, settings PlanSettings, notifier ChangeNotifier, logger *logrus.Logger) StudyPlanUsecase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &studyPlanUsecase{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		logger:   logger,
		clock:    time.Now,
	}
}

func (u *studyPlanUsecase) Seed(ctx context.Context, reset bool) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !reset {
		_, err := u.repo.Load(ctx)
		switch {
		case err == nil:
			return false, nil
		case !errors.Is(err, entity.ErrCurriculumNotInitialized):
			return false, err
		}
	}
	snapshot := entity.DefaultCurriculum(u.clock(), u.settings.ExamOffsetDays)
	if err := u.repo.Save(ctx, snapshot); err != nil {
		return false, fmt.Errorf("seed curriculum: %w", err)
	}
	u.logger.WithField("exam_date", snapshot.ExamDate.Format(time.DateOnly)).Info("seeded default curriculum")
	if reset {
		u.notify(ChangePlan, 0, "", snapshot)
	}
	return true, nil
}

// loadLocked returns the stored plan as a session, seeding the default
// curriculum on first use.
func (u *studyPlanUsecase) loadLocked(ctx context.Context) (*Session, error) {
	snapshot, err := u.repo.Load(ctx)
	if errors.Is(err, entity.ErrCurriculumNotInitialized) {
		snapshot = entity.DefaultCurriculum(u.clock(), u.settings.ExamOffsetDays)
		if err = u.repo.Save(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("seed curriculum: %w", err)
		}
		u.logger.Info("plan store was empty, seeded default curriculum")
	} else if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	// One instant per operation keeps schedule, metrics and timeline on the same day.
	now := u.clock()
	return NewSession(snapshot,
		WithSessionClock(func() time.Time { return now }),
		WithPlannerOptions(planner.Options{ForecastHorizonDays: u.settings.ForecastHorizonDays}),
	)
}

func (u *studyPlanUsecase) Dashboard(ctx context.Context) (*Dashboard, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sess, err := u.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Now:          sess.Now(),
		ExamDate:     sess.ExamDate(),
		Availability: sess.WeeklyAvailability(),
		Categories:   sess.Categories(),
		Schedule:     sess.Schedule(),
		Metrics:      sess.Metrics(),
		Analytics:    sess.Analytics(),
		Timeline:     sess.Timeline(),
	}, nil
}

func (u *studyPlanUsecase) ListStudyItems(ctx context.Context, query *repository.ListStudyItemQuery) ([]entity.CategorizedItem, int64, error) {
	if query == nil {
		query = &repository.ListStudyItemQuery{}
	}
	q := *query
	if q.PageSize <= 0 {
		q.PageSize = _defaultPageSize
	}
	if q.PageSize > _maxPageSize {
		q.PageSize = _maxPageSize
	}
	if q.PageNo <= 0 {
		q.PageNo = 1
	}

	// Make sure a first-time caller sees the default catalog.
	u.mu.Lock()
	_, err := u.loadLocked(ctx)
	u.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	return u.repo.ListStudyItems(ctx, &q)
}

// mutate runs fn against the current plan and persists the result.
func (u *studyPlanUsecase) mutate(ctx context.Context, kind ChangeKind, categoryID int, itemID string, fn func(*Session) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	sess, err := u.loadLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	snapshot := sess.Snapshot()
	if err := u.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	u.logger.WithFields(logrus.Fields{"change": kind, "category": categoryID, "item": itemID}).Debug("plan updated")
	u.notifyMetrics(kind, categoryID, itemID, sess.Metrics())
	return nil
}

func (u *studyPlanUsecase) notify(kind ChangeKind, categoryID int, itemID string, snapshot *entity.Snapshot) {
	if u.notifier == nil {
		return
	}
	m := planner.ComputeMetrics(snapshot.Categories, snapshot.WeeklyAvailability, snapshot.ExamDate, u.clock(),
		planner.Options{ForecastHorizonDays: u.settings.ForecastHorizonDays})
	u.notifyMetrics(kind, categoryID, itemID, m)
}

func (u *studyPlanUsecase) notifyMetrics(kind ChangeKind, categoryID int, itemID string, m planner.Metrics) {
	if u.notifier == nil {
		return
	}
	u.notifier.Notify(Change{Kind: kind, CategoryID: categoryID, ItemID: itemID, At: u.clock(), Metrics: m})
}

func (u *studyPlanUsecase) itemMutation(ctx context.Context, categoryID int, itemID string, fn func(*Session) (entity.StudyItem, error)) (*entity.StudyItem, error) {
	var out entity.StudyItem
	err := u.mutate(ctx, ChangeItem, categoryID, itemID, func(s *Session) error {
		item, err := fn(s)
		out = item
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *studyPlanUsecase) ToggleCompletion(ctx context.Context, categoryID int, itemID string) (*entity.StudyItem, error) {
	return u.itemMutation(ctx, categoryID, itemID, func(s *Session) (entity.StudyItem, error) {
		return s.ToggleCompletion(categoryID, itemID)
	})
}

func (u *studyPlanUsecase) SetHoursSpent(ctx context.Context, categoryID int, itemID string, hours float64) (*entity.StudyItem, error) {
	return u.itemMutation(ctx, categoryID, itemID, func(s *Session) (entity.StudyItem, error) {
		return s.SetHoursSpent(categoryID, itemID, hours)
	})
}

func (u *studyPlanUsecase) SetPriority(ctx context.Context, categoryID int, itemID string, priority entity.Level) (*entity.StudyItem, error) {
	return u.itemMutation(ctx, categoryID, itemID, func(s *Session) (entity.StudyItem, error) {
		return s.SetPriority(categoryID, itemID, priority)
	})
}

func (u *studyPlanUsecase) SetNotes(ctx context.Context, categoryID int, itemID, notes string) (*entity.StudyItem, error) {
	return u.itemMutation(ctx, categoryID, itemID, func(s *Session) (entity.StudyItem, error) {
		return s.SetNotes(categoryID, itemID, notes)
	})
}

func (u *studyPlanUsecase) SetScheduledDate(ctx context.Context, categoryID int, itemID string, date *time.Time) (*entity.StudyItem, error) {
	return u.itemMutation(ctx, categoryID, itemID, func(s *Session) (entity.StudyItem, error) {
		return s.SetScheduledDate(categoryID, itemID, date)
	})
}

func (u *studyPlanUsecase) SetWeeklyAvailability(ctx context.Context, day int, hours float64) (entity.WeeklyAvailability, error) {
	var out entity.WeeklyAvailability
	err := u.mutate(ctx, ChangeAvailability, 0, "", func(s *Session) error {
		var err error
		out, err = s.SetWeeklyAvailability(day, hours)
		return err
	})
	return out, err
}

func (u *studyPlanUsecase) SetExamDate(ctx context.Context, date time.Time) (time.Time, error) {
	var out time.Time
	err := u.mutate(ctx, ChangeExamDate, 0, "", func(s *Session) error {
		var err error
		out, err = s.SetExamDate(date)
		return err
	})
	return out, err
}

func (u *studyPlanUsecase) ToggleCategoryExpansion(ctx context.Context, categoryID int) (*entity.Category, error) {
	var out entity.Category
	err := u.mutate(ctx, ChangeCategory, categoryID, "", func(s *Session) error {
		var err error
		out, err = s.ToggleCategoryExpansion(categoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *studyPlanUsecase) ReplacePlan(ctx context.Context, snapshot *entity.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("replace plan: %w", err)
	}
	u.logger.WithField("categories", len(snapshot.Categories)).Info("plan replaced")
	u.notify(ChangePlan, 0, "", snapshot)
	return nil
}
