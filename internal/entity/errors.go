package entity

import "errors"

// Domain errors for the curriculum and its schedule.
var (
	ErrCategoryNotFound         = errors.New("category not found")
	ErrStudyItemNotFound        = errors.New("study item not found")
	ErrDuplicateStudyItem       = errors.New("study item already exists")
	ErrInvalidHours             = errors.New("invalid hours")
	ErrInvalidPriority          = errors.New("invalid priority")
	ErrInvalidLevel             = errors.New("invalid level")
	ErrInvalidRecommendedDays   = errors.New("invalid recommended days")
	ErrInvalidWeekday           = errors.New("invalid weekday")
	ErrInvalidExamDate          = errors.New("invalid exam date")
	ErrScheduledDateOutOfRange  = errors.New("scheduled date must be between today and the exam date")
	ErrCurriculumNotInitialized = errors.New("curriculum not initialized")
	ErrInvalidStudyItemName     = errors.New("invalid study item name")
	ErrInvalidQuery             = errors.New("invalid list query")
	ErrInvalidBackup            = errors.New("invalid backup document")
)
