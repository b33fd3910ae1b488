package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eslsoft/studyplan/internal/entity"
)

const formatVersion = 1

var (
	errMissingExamDate = fmt.Errorf("%w: exam_date is required", entity.ErrInvalidBackup)
	errAvailabilityLen = fmt.Errorf("%w: daily_study_hours must have 7 entries", entity.ErrInvalidBackup)
)

// document is the interchange layout. Field names match the files written by
// earlier versions of the dashboard so old exports keep importing.
type document struct {
	Version         int              `json:"version,omitempty"`
	ExportedAt      *time.Time       `json:"exported_at,omitempty"`
	Categories      []categoryRecord `json:"categories"`
	ExamDate        string           `json:"exam_date"`
	DailyStudyHours []float64        `json:"daily_study_hours"`
}

type categoryRecord struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Expanded  bool             `json:"expanded"`
	Standards []standardRecord `json:"standards"`
}

type standardRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Completed       bool    `json:"completed"`
	Priority        string  `json:"priority"`
	Difficulty      string  `json:"difficulty"`
	TotalHours      float64 `json:"totalHours"`
	HoursSpent      float64 `json:"hoursSpent"`
	Notes           string  `json:"notes"`
	ScheduledDate   *string `json:"scheduledDate"`
	RecommendedDays int     `json:"recommendedDays"`
}

// Encode renders a snapshot as an interchange document.
func Encode(snapshot *entity.Snapshot, exportedAt time.Time) ([]byte, error) {
	if snapshot == nil {
		return nil, entity.ErrCurriculumNotInitialized
	}
	doc := document{
		Version:         formatVersion,
		ExamDate:        snapshot.ExamDate.Format(time.RFC3339),
		DailyStudyHours: snapshot.WeeklyAvailability[:],
		Categories:      make([]categoryRecord, 0, len(snapshot.Categories)),
	}
	if !exportedAt.IsZero() {
		at := exportedAt.UTC()
		doc.ExportedAt = &at
	}
	for _, cat := range snapshot.Categories {
		rec := categoryRecord{ID: cat.ID, Name: cat.Name, Expanded: cat.Expanded, Standards: make([]standardRecord, 0, len(cat.Items))}
		for _, item := range cat.Items {
			std := standardRecord{
				ID:              item.ID,
				Name:            item.Name,
				Completed:       item.Completed,
				Priority:        string(item.Priority),
				Difficulty:      string(item.Difficulty),
				TotalHours:      item.TotalHours,
				HoursSpent:      item.HoursSpent,
				Notes:           item.Notes,
				RecommendedDays: item.RecommendedDays,
			}
			if item.ScheduledDate != nil {
				s := item.ScheduledDate.Format(time.RFC3339)
				std.ScheduledDate = &s
			}
			rec.Standards = append(rec.Standards, std)
		}
		doc.Categories = append(doc.Categories, rec)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and validates an interchange document. Dates without a zone
// are read in loc.
func Decode(data []byte, loc *time.Location) (*entity.Snapshot, error) {
	if loc == nil {
		loc = time.Local
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBackup, err)
	}
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", entity.ErrInvalidBackup, doc.Version)
	}
	if strings.TrimSpace(doc.ExamDate) == "" {
		return nil, errMissingExamDate
	}
	examDate, err := parseDate(doc.ExamDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: exam_date: %v", entity.ErrInvalidBackup, err)
	}

	snapshot := &entity.Snapshot{
		ExamDate:           examDate,
		WeeklyAvailability: entity.DefaultWeeklyAvailability,
		Categories:         make([]entity.Category, 0, len(doc.Categories)),
	}
	if doc.DailyStudyHours != nil {
		if len(doc.DailyStudyHours) != len(snapshot.WeeklyAvailability) {
			return nil, errAvailabilityLen
		}
		copy(snapshot.WeeklyAvailability[:], doc.DailyStudyHours)
	}

	for _, rec := range doc.Categories {
		cat := entity.Category{ID: rec.ID, Name: rec.Name, Expanded: rec.Expanded, Items: make([]entity.StudyItem, 0, len(rec.Standards))}
		for _, std := range rec.Standards {
			item := entity.StudyItem{
				ID:              strings.TrimSpace(std.ID),
				Name:            strings.TrimSpace(std.Name),
				Completed:       std.Completed,
				Priority:        entity.ParseLevel(std.Priority),
				Difficulty:      entity.ParseLevel(std.Difficulty),
				TotalHours:      std.TotalHours,
				HoursSpent:      std.HoursSpent,
				Notes:           std.Notes,
				RecommendedDays: std.RecommendedDays,
			}
			if std.ScheduledDate != nil && strings.TrimSpace(*std.ScheduledDate) != "" {
				date, err := parseDate(*std.ScheduledDate, loc)
				if err != nil {
					return nil, fmt.Errorf("%w: standard %q scheduledDate: %v", entity.ErrInvalidBackup, std.ID, err)
				}
				item.ScheduledDate = &date
			}
			cat.Items = append(cat.Items, item)
		}
		snapshot.Categories = append(snapshot.Categories, cat)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	return snapshot, nil
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
