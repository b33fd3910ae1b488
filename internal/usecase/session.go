package usecase

import (
	"math"
	"strings"
	"time"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/usecase/planner"
)

// Session holds one study plan in memory together with the schedule derived
// from it. Every mutation that can move study days rebuilds the schedule.
// A Session is not safe for concurrent use.
type Session struct {
	categories   []entity.Category
	availability entity.WeeklyAvailability
	examDate     time.Time
	schedule     []entity.ScheduleEntry
	clock        func() time.Time
	opts         planner.Options
}

type SessionOption func(*Session)

// WithSessionClock overrides the time source used for "today".
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPlannerOptions tunes metric computation.
func WithPlannerOptions(opts planner.Options) SessionOption {
	return func(s *Session) { s.opts = opts }
}

// NewSession validates the snapshot, copies it and builds the first schedule.
func NewSession(snapshot *entity.Snapshot, opts ...SessionOption) (*Session, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	copied := snapshot.Clone()
	s := &Session{
		categories:   copied.Categories,
		availability: copied.WeeklyAvailability,
		examDate:     copied.ExamDate,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Regenerate()
	return s, nil
}

// Regenerate discards the current schedule and allocates a new one.
func (s *Session) Regenerate() {
	s.schedule = planner.Allocate(s.categories, s.availability, s.examDate, s.clock())
}

func (s *Session) findCategory(categoryID int) (*entity.Category, error) {
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			return &s.categories[i], nil
		}
	}
	return nil, entity.ErrCategoryNotFound
}

func (s *Session) findItem(categoryID int, itemID string) (*entity.StudyItem, error) {
	cat, err := s.findCategory(categoryID)
	if err != nil {
		return nil, err
	}
	item := cat.FindItem(strings.TrimSpace(itemID))
	if item == nil {
		return nil, entity.ErrStudyItemNotFound
	}
	return item, nil
}

// ToggleCompletion flips the completed flag. Marking an item complete also
// logs its full estimate as spent.
func (s *Session) ToggleCompletion(categoryID int, itemID string) (entity.StudyItem, error) {
	item, err := s.findItem(categoryID, itemID)
	if err != nil {
		return entity.StudyItem{}, err
	}
	item.Completed = !item.Completed
	if item.Completed {
		item.HoursSpent = item.TotalHours
	}
	s.Regenerate()
	return item.Clone(), nil
}

// SetHoursSpent records logged hours, clamped at zero, and derives completion.
func (s *Session) SetHoursSpent(categoryID int, itemID string, hours float64) (entity.StudyItem, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return entity.StudyItem{}, entity.ErrInvalidHours
	}
	item, err := s.findItem(categoryID, itemID)
	if err != nil {
		return entity.StudyItem{}, err
	}
	item.HoursSpent = math.Max(0, hours)
	item.Completed = item.HoursSpent >= item.TotalHours
	s.Regenerate()
	return item.Clone(), nil
}

func (s *Session) SetPriority(categoryID int, itemID string, priority entity.Level) (entity.StudyItem, error) {
	if !priority.Assignable() {
		return entity.StudyItem{}, entity.ErrInvalidPriority
	}
	item, err := s.findItem(categoryID, itemID)
	if err != nil {
		return entity.StudyItem{}, err
	}
	item.Priority = priority
	s.Regenerate()
	return item.Clone(), nil
}

// SetNotes replaces the free-text notes. The schedule is left alone.
func (s *Session) SetNotes(categoryID int, itemID, notes string) (entity.StudyItem, error) {
	item, err := s.findItem(categoryID, itemID)
	if err != nil {
		return entity.StudyItem{}, err
	}
	item.Notes = notes
	return item.Clone(), nil
}

// SetScheduledDate pins a user-chosen date on the item, or clears it when date
// is nil. The date must fall between today and the exam day inclusive.
func (s *Session) SetScheduledDate(categoryID int, itemID string, date *time.Time) (entity.StudyItem, error) {
	item, err := s.findItem(categoryID, itemID)
	if err != nil {
		return entity.StudyItem{}, err
	}
	if date != nil {
		day := entity.StartOfDay(*date)
		today := entity.StartOfDay(s.clock().In(date.Location()))
		exam := entity.StartOfDay(s.examDate.In(date.Location()))
		if day.Before(today) || day.After(exam) {
			return entity.StudyItem{}, entity.ErrScheduledDateOutOfRange
		}
		pinned := *date
		item.ScheduledDate = &pinned
	} else {
		item.ScheduledDate = nil
	}
	s.Regenerate()
	return item.Clone(), nil
}

// SetWeeklyAvailability changes the hours for one weekday, Monday=0.
func (s *Session) SetWeeklyAvailability(day int, hours float64) (entity.WeeklyAvailability, error) {
	if day < 0 || day >= len(s.availability) {
		return s.availability, entity.ErrInvalidWeekday
	}
	if err := entity.ValidateDayHours(hours); err != nil {
		return s.availability, err
	}
	s.availability[day] = hours
	s.Regenerate()
	return s.availability, nil
}

func (s *Session) SetExamDate(date time.Time) (time.Time, error) {
	if date.IsZero() {
		return s.examDate, entity.ErrInvalidExamDate
	}
	s.examDate = date
	s.Regenerate()
	return s.examDate, nil
}

// ToggleCategoryExpansion flips the display state of a category.
func (s *Session) ToggleCategoryExpansion(categoryID int) (entity.Category, error) {
	cat, err := s.findCategory(categoryID)
	if err != nil {
		return entity.Category{}, err
	}
	cat.Expanded = !cat.Expanded
	return cat.Clone(), nil
}

func (s *Session) Categories() []entity.Category {
	out := make([]entity.Category, len(s.categories))
	for i, cat := range s.categories {
		out[i] = cat.Clone()
	}
	return out
}

func (s *Session) WeeklyAvailability() entity.WeeklyAvailability { return s.availability }

func (s *Session) ExamDate() time.Time { return s.examDate }

// Schedule returns a copy of the cached allocation.
func (s *Session) Schedule() []entity.ScheduleEntry {
	out := make([]entity.ScheduleEntry, len(s.schedule))
	for i, entry := range s.schedule {
		entry.Item = entry.Item.Clone()
		if entry.StartDate != nil {
			start := *entry.StartDate
			entry.StartDate = &start
		}
		if entry.EndDate != nil {
			end := *entry.EndDate
			entry.EndDate = &end
		}
		out[i] = entry
	}
	return out
}

// Now is the session's reference instant.
func (s *Session) Now() time.Time {
	return s.clock()
}

func (s *Session) Metrics() planner.Metrics {
	return planner.ComputeMetrics(s.categories, s.availability, s.examDate, s.clock(), s.opts)
}

func (s *Session) Analytics() planner.Analytics {
	return planner.ComputeAnalytics(s.categories, s.availability, s.schedule, s.Metrics())
}

func (s *Session) Timeline() planner.Timeline {
	return planner.BuildTimeline(s.categories, s.schedule, s.examDate, s.clock())
}

// Snapshot exports the persistent part of the session.
func (s *Session) Snapshot() *entity.Snapshot {
	return &entity.Snapshot{
		Categories:         s.Categories(),
		ExamDate:           s.examDate,
		WeeklyAvailability: s.availability,
	}
}
