package repository

import (
	"context"

	"github.com/eslsoft/studyplan/internal/entity"
)

// ListStudyItemQuery selects a page of the standards list. Filter is a CEL
// conjunction over priority, difficulty, status, category, name and id.
type ListStudyItemQuery struct {
	Pagination
	FilterOrder
}

// CurriculumRepository persists the whole study plan as one snapshot.
type CurriculumRepository interface {
	// Load returns entity.ErrCurriculumNotInitialized when nothing was saved yet.
	Load(ctx context.Context) (*entity.Snapshot, error)
	// Save replaces the stored plan atomically.
	Save(ctx context.Context, snapshot *entity.Snapshot) error
	ListStudyItems(ctx context.Context, query *ListStudyItemQuery) ([]entity.CategorizedItem, int64, error)
}
