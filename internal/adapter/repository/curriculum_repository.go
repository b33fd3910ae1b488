package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/infrastructure/database"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/pkg/filterexpr"
)

const settingExamDate = "exam_date"

// CurriculumRepository stores the study plan in SQLite or PostgreSQL.
type CurriculumRepository struct {
	db *database.DB
}

// NewCurriculumRepository constructs a database/sql backed repository.
func NewCurriculumRepository(db *database.DB) repository.CurriculumRepository {
	return &CurriculumRepository{db: db}
}

func (r *CurriculumRepository) Load(ctx context.Context) (*entity.Snapshot, error) {
	examDate, ok, err := r.examDate(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrCurriculumNotInitialized
	}

	categories, err := r.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	availability, err := r.loadAvailability(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.Snapshot{
		Categories:         categories,
		ExamDate:           examDate,
		WeeklyAvailability: availability,
	}, nil
}

func (r *CurriculumRepository) Save(ctx context.Context, snapshot *entity.Snapshot) (err error) {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM study_items",
		"DELETE FROM categories",
		"DELETE FROM weekly_availability",
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear plan: %w", err)
		}
	}

	insertCategory := r.db.Rebind("INSERT INTO categories (id, position, name, expanded) VALUES (?, ?, ?, ?)")
	insertItem := r.db.Rebind(`INSERT INTO study_items
		(id, category_id, position, name, completed, priority, difficulty, total_hours, hours_spent, notes, scheduled_date, recommended_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	for catPos, cat := range snapshot.Categories {
		if _, err = tx.ExecContext(ctx, insertCategory, cat.ID, catPos, cat.Name, cat.Expanded); err != nil {
			return fmt.Errorf("insert category %d: %w", cat.ID, translateError(err))
		}
		for itemPos, item := range cat.Items {
			if _, err = tx.ExecContext(ctx, insertItem,
				item.ID, cat.ID, itemPos, item.Name, item.Completed,
				string(item.Priority), string(item.Difficulty),
				item.TotalHours, item.HoursSpent, item.Notes,
				formatOptionalDate(item.ScheduledDate), item.RecommendedDays,
			); err != nil {
				return fmt.Errorf("insert study item %q: %w", item.ID, translateError(err))
			}
		}
	}

	insertDay := r.db.Rebind("INSERT INTO weekly_availability (day, hours) VALUES (?, ?)")
	for day, hours := range snapshot.WeeklyAvailability {
		if _, err = tx.ExecContext(ctx, insertDay, day, hours); err != nil {
			return fmt.Errorf("insert availability: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, r.db.Rebind("DELETE FROM plan_settings WHERE key = ?"), settingExamDate); err != nil {
		return fmt.Errorf("clear exam date: %w", err)
	}
	if _, err = tx.ExecContext(ctx, r.db.Rebind("INSERT INTO plan_settings (key, value) VALUES (?, ?)"),
		settingExamDate, snapshot.ExamDate.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("store exam date: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// catalogView numbers every item by its category/item position before any
// filter applies, so positions stay stable across filtered pages.
const catalogView = `WITH catalog AS (
	SELECT i.id AS id, i.name AS name, i.completed AS completed, i.priority AS priority,
		i.difficulty AS difficulty, i.total_hours AS total_hours, i.hours_spent AS hours_spent,
		i.notes AS notes, i.scheduled_date AS scheduled_date, i.recommended_days AS recommended_days,
		c.id AS category_id, c.name AS category_name,
		ROW_NUMBER() OVER (ORDER BY c.position, i.position) - 1 AS position
	FROM study_items i JOIN categories c ON c.id = i.category_id
)`

const catalogColumns = `id, name, completed, priority, difficulty, total_hours, hours_spent, notes,
	scheduled_date, recommended_days, category_id, category_name, position`

func (r *CurriculumRepository) ListStudyItems(ctx context.Context, query *repository.ListStudyItemQuery) ([]entity.CategorizedItem, int64, error) {
	params, err := bindStudyItemsQuery(query.GetFilter(), query.GetOrderBy())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidQuery, err)
	}

	where, args := buildStudyItemFilters(params)

	var total int64
	countQuery := r.db.Rebind(catalogView + " SELECT COUNT(*) FROM catalog" + where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count study items: %w", err)
	}

	listQuery := catalogView + " SELECT " + catalogColumns + " FROM catalog" + where + buildStudyItemOrdering(params)
	if query.PageSize > 0 {
		listQuery += " LIMIT ? OFFSET ?"
		args = append(args, query.PageSize, query.Offset())
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(listQuery), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list study items: %w", err)
	}
	defer rows.Close()

	var results []entity.CategorizedItem
	for rows.Next() {
		var (
			item      entity.CategorizedItem
			priority  string
			difficult string
			scheduled sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Completed, &priority, &difficult,
			&item.TotalHours, &item.HoursSpent, &item.Notes, &scheduled, &item.RecommendedDays,
			&item.CategoryID, &item.CategoryName, &item.Position,
		); err != nil {
			return nil, 0, fmt.Errorf("scan study item: %w", err)
		}
		item.Priority = entity.ParseLevel(priority)
		item.Difficulty = entity.ParseLevel(difficult)
		if item.ScheduledDate, err = parseOptionalDate(scheduled); err != nil {
			return nil, 0, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate study items: %w", err)
	}

	return results, total, nil
}

func buildStudyItemFilters(params listStudyItemsParams) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")))
		args = append(args, lo.ToAnySlice(values)...)
	}

	in("priority", params.Priorities)
	in("difficulty", params.Difficulties)
	switch params.Status {
	case statusCompleted:
		clauses = append(clauses, "completed = ?")
		args = append(args, true)
	case statusIncomplete:
		clauses = append(clauses, "completed = ?")
		args = append(args, false)
	}
	if params.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *params.CategoryID)
	}
	if params.NamePrefix != "" {
		clauses = append(clauses, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(strings.ToLower(params.NamePrefix))+"%")
	}
	in("id", params.IDs)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildStudyItemOrdering(params listStudyItemsParams) string {
	terms := make([]string, 0, len(params.Order)+2)
	for _, term := range params.Order {
		dir := "ASC"
		if term.Desc {
			dir = "DESC"
		}
		terms = append(terms, studyItemOrderExprs[term.Key]+" "+dir)
	}
	if !lo.ContainsBy(params.Order, func(t filterexpr.Term) bool { return t.Key == "position" }) {
		terms = append(terms, "position ASC")
	}
	terms = append(terms, "id ASC")
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (r *CurriculumRepository) examDate(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT value FROM plan_settings WHERE key = ?"), settingExamDate).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load exam date: %w", err)
	}
	date, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse exam date %q: %w", raw, err)
	}
	return date, true, nil
}

func (r *CurriculumRepository) loadCategories(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, expanded FROM categories ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	index := make(map[int]int)
	for rows.Next() {
		var cat entity.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Expanded); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		index[cat.ID] = len(categories)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	itemRows, err := r.db.QueryContext(ctx, `SELECT id, category_id, name, completed, priority, difficulty,
		total_hours, hours_spent, notes, scheduled_date, recommended_days
		FROM study_items ORDER BY category_id, position`)
	if err != nil {
		return nil, fmt.Errorf("load study items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			item       entity.StudyItem
			categoryID int
			priority   string
			difficult  string
			scheduled  sql.NullString
		)
		if err := itemRows.Scan(&item.ID, &categoryID, &item.Name, &item.Completed, &priority, &difficult,
			&item.TotalHours, &item.HoursSpent, &item.Notes, &scheduled, &item.RecommendedDays); err != nil {
			return nil, fmt.Errorf("scan study item: %w", err)
		}
		item.Priority = entity.ParseLevel(priority)
		item.Difficulty = entity.ParseLevel(difficult)
		if item.ScheduledDate, err = parseOptionalDate(scheduled); err != nil {
			return nil, err
		}
		idx, ok := index[categoryID]
		if !ok {
			return nil, fmt.Errorf("study item %q: %w", item.ID, entity.ErrCategoryNotFound)
		}
		categories[idx].Items = append(categories[idx].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study items: %w", err)
	}
	return categories, nil
}

func (r *CurriculumRepository) loadAvailability(ctx context.Context) (entity.WeeklyAvailability, error) {
	var availability entity.WeeklyAvailability
	rows, err := r.db.QueryContext(ctx, "SELECT day, hours FROM weekly_availability")
	if err != nil {
		return availability, fmt.Errorf("load availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day   int
			hours float64
		)
		if err := rows.Scan(&day, &hours); err != nil {
			return availability, fmt.Errorf("scan availability: %w", err)
		}
		if day < 0 || day >= len(availability) {
			return availability, fmt.Errorf("availability day %d: %w", day, entity.ErrInvalidWeekday)
		}
		availability[day] = hours
	}
	return availability, rows.Err()
}

func formatOptionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseOptionalDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse scheduled date %q: %w", raw.String, err)
	}
	return &t, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entity.ErrDuplicateStudyItem
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return entity.ErrDuplicateStudyItem
	}
	return err
}
