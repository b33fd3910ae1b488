package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Snapshot is the complete mutable state of one study plan.
type Snapshot struct {
	Categories         []Category
	ExamDate           time.Time
	WeeklyAvailability WeeklyAvailability
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Categories:         make([]Category, len(s.Categories)),
		ExamDate:           s.ExamDate,
		WeeklyAvailability: s.WeeklyAvailability,
	}
	for i, cat := range s.Categories {
		out.Categories[i] = cat.Clone()
	}
	return out
}

// Validate checks the catalog invariants before a snapshot is accepted.
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrCurriculumNotInitialized
	}
	if s.ExamDate.IsZero() {
		return ErrInvalidExamDate
	}
	if err := s.WeeklyAvailability.Validate(); err != nil {
		return fmt.Errorf("weekly availability: %w", err)
	}

	categoryIDs := make(map[int]struct{}, len(s.Categories))
	itemIDs := make(map[string]struct{})
	for _, cat := range s.Categories {
		if _, dup := categoryIDs[cat.ID]; dup {
			return fmt.Errorf("category %d: duplicate id", cat.ID)
		}
		categoryIDs[cat.ID] = struct{}{}

		for _, item := range cat.Items {
			if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
				return fmt.Errorf("category %d: %w", cat.ID, ErrInvalidStudyItemName)
			}
			if _, dup := itemIDs[item.ID]; dup {
				return fmt.Errorf("item %q: %w", item.ID, ErrDuplicateStudyItem)
			}
			itemIDs[item.ID] = struct{}{}

			if err := validateItem(item); err != nil {
				return fmt.Errorf("item %q: %w", item.ID, err)
			}
		}
	}
	return nil
}

func validateItem(item StudyItem) error {
	for _, h := range []float64{item.TotalHours, item.HoursSpent} {
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			return ErrInvalidHours
		}
	}
	if !item.Priority.Valid() || !item.Difficulty.Valid() {
		return ErrInvalidLevel
	}
	// Zero days is kept as stored; the allocator spans at least one day.
	if item.RecommendedDays < 0 {
		return ErrInvalidRecommendedDays
	}
	return nil
}
