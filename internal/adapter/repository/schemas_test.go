package repository

import (
	"errors"
	"reflect"
	"testing"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/pkg/filterexpr"
)

func TestBindStudyItemsQuery(t *testing.T) {
	params, err := bindStudyItemsQuery(
		"priority == 'HIGH' && difficulty in ['low', 'medium', 'low'] && status == 'Completed' && category == 2 && id in ['LKAS1', ' LKAS1 ', 'LKAS7']",
		"remaining_hours desc",
	)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !reflect.DeepEqual(params.Priorities, []string{"high"}) {
		t.Fatalf("priorities: %v", params.Priorities)
	}
	if !reflect.DeepEqual(params.Difficulties, []string{"low", "medium"}) {
		t.Fatalf("difficulties: %v", params.Difficulties)
	}
	if params.Status != statusCompleted || params.CategoryID == nil || *params.CategoryID != 2 {
		t.Fatalf("unexpected status/category: %+v", params)
	}
	if !reflect.DeepEqual(params.IDs, []string{"LKAS1", "LKAS7"}) {
		t.Fatalf("ids: %v", params.IDs)
	}
	if !reflect.DeepEqual(params.Order, []filterexpr.Term{{Key: "remaining_hours", Desc: true}}) {
		t.Fatalf("order: %v", params.Order)
	}
}

func TestBindStudyItemsQueryDefaults(t *testing.T) {
	params, err := bindStudyItemsQuery("", "")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := buildStudyItemOrdering(params); got != " ORDER BY position ASC, id ASC" {
		t.Fatalf("unexpected ordering %q", got)
	}
	if where, args := buildStudyItemFilters(params); where != "" || args != nil {
		t.Fatalf("expected no filters, got %q %v", where, args)
	}
}

func TestBindStudyItemsQueryRejectsUnknownLevel(t *testing.T) {
	if _, err := bindStudyItemsQuery("difficulty in ['hard']", ""); !errors.Is(err, entity.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
	if _, err := bindStudyItemsQuery("status == 'done'", ""); err == nil {
		t.Fatalf("expected status error")
	}
}
