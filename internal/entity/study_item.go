package entity

import (
	"strings"
	"time"
)

// StudyItem is one standard of the curriculum together with its progress.
type StudyItem struct {
	ID              string
	Name            string
	Completed       bool
	Priority        Level
	Difficulty      Level
	TotalHours      float64
	HoursSpent      float64
	Notes           string
	ScheduledDate   *time.Time
	RecommendedDays int
}

// RemainingHours is the effort still outstanding; it is negative when the
// user logged more hours than estimated.
func (s *StudyItem) RemainingHours() float64 {
	return s.TotalHours - s.HoursSpent
}

// ShortName returns the code part of names such as "LKAS 1 - Presentation".
func (s *StudyItem) ShortName() string {
	if code, _, ok := strings.Cut(s.Name, " - "); ok {
		return code
	}
	return s.Name
}

// Started reports whether any time has been logged against the item.
func (s *StudyItem) Started() bool {
	return s.HoursSpent > 0
}

// Clone returns a deep copy of the item.
func (s StudyItem) Clone() StudyItem {
	if s.ScheduledDate != nil {
		date := *s.ScheduledDate
		s.ScheduledDate = &date
	}
	return s
}

// Category is a named, ordered grouping of study items.
type Category struct {
	ID       int
	Name     string
	Expanded bool
	Items    []StudyItem
}

// Clone returns a deep copy of the category and its items.
func (c Category) Clone() Category {
	items := make([]StudyItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.Clone()
	}
	c.Items = items
	return c
}

// FindItem returns a pointer into the category's items, or nil.
func (c *Category) FindItem(id string) *StudyItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// CategorizedItem pairs an item with its owning category and catalog position.
type CategorizedItem struct {
	StudyItem
	CategoryID   int
	CategoryName string
	Position     int
}

// FlattenItems walks categories in stored order, then items in stored order.
func FlattenItems(categories []Category) []CategorizedItem {
	var out []CategorizedItem
	for _, cat := range categories {
		for _, item := range cat.Items {
			out = append(out, CategorizedItem{
				StudyItem:    item.Clone(),
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Position:     len(out),
			})
		}
	}
	return out
}
