package repository

import (
	"fmt"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/pkg/filterexpr"
)

const (
	statusCompleted  = "completed"
	statusIncomplete = "incomplete"
)

var studyItemsParser = filterexpr.MustParser(filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"priority":   {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEq, filterexpr.OpIn}},
		"difficulty": {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEq, filterexpr.OpIn}},
		"status":     {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEq}},
		"category":   {Kind: filterexpr.KindInt, Ops: []filterexpr.Op{filterexpr.OpEq}},
		"name":       {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpStartsWith}},
		"id":         {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpIn}},
	},
	Sortable:     []string{"position", "priority", "difficulty", "name", "remaining_hours", "id"},
	DefaultOrder: []filterexpr.Term{{Key: "position"}},
})

// studyItemOrderExprs maps order keys onto catalog columns.
var studyItemOrderExprs = map[string]string{
	"position":        "position",
	"priority":        levelRankExpr("priority"),
	"difficulty":      levelRankExpr("difficulty"),
	"name":            "name",
	"remaining_hours": "(total_hours - hours_spent)",
	"id":              "id",
}

func levelRankExpr(column string) string {
	return fmt.Sprintf("CASE %s WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END", column)
}

// listStudyItemsParams is the SQL-ready form of a standards list query.
type listStudyItemsParams struct {
	Priorities   []string
	Difficulties []string
	Status       string
	CategoryID   *int
	NamePrefix   string
	IDs          []string
	Order        []filterexpr.Term
}

func bindStudyItemsQuery(filter, orderBy string) (listStudyItemsParams, error) {
	q, err := studyItemsParser.Parse(filter, orderBy)
	if err != nil {
		return listStudyItemsParams{}, err
	}

	params := listStudyItemsParams{Order: q.Order}
	for _, pred := range q.Predicates {
		switch pred.Field {
		case "priority", "difficulty":
			levels, err := filterLevels(pred)
			if err != nil {
				return listStudyItemsParams{}, err
			}
			if pred.Field == "priority" {
				params.Priorities = levels
			} else {
				params.Difficulties = levels
			}
		case "status":
			status := normalizeLowerStrings([]string{pred.Str})
			if len(status) != 1 || (status[0] != statusCompleted && status[0] != statusIncomplete) {
				return listStudyItemsParams{}, fmt.Errorf("status must be %q or %q, got %q", statusCompleted, statusIncomplete, pred.Str)
			}
			params.Status = status[0]
		case "category":
			id := int(pred.Int)
			params.CategoryID = &id
		case "name":
			params.NamePrefix = pred.Str
		case "id":
			params.IDs = uniqueStrings(pred.Strs)
		}
	}
	return params, nil
}

func filterLevels(pred filterexpr.Predicate) ([]string, error) {
	raw := pred.Strs
	if pred.Op == filterexpr.OpEq {
		raw = []string{pred.Str}
	}
	levels := make([]string, 0, len(raw))
	for _, value := range normalizeLowerStrings(raw) {
		level := entity.ParseLevel(value)
		if !level.Valid() {
			return nil, fmt.Errorf("%s: %w: %q", pred.Field, entity.ErrInvalidLevel, value)
		}
		levels = append(levels, string(level))
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%s: %w", pred.Field, entity.ErrInvalidLevel)
	}
	return levels, nil
}
