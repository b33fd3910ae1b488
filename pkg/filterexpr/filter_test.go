package filterexpr

import (
	"reflect"
	"strings"
	"testing"
)

var testSchema = Schema{
	Fields: map[string]Field{
		"priority": {Kind: KindString, Ops: []Op{OpEq, OpIn}},
		"category": {Kind: KindInt, Ops: []Op{OpEq}},
		"name":     {Kind: KindString, Ops: []Op{OpStartsWith}},
	},
	Sortable:     []string{"position", "priority", "name"},
	DefaultOrder: []Term{{Key: "position"}},
}

func TestFilterConjunction(t *testing.T) {
	p := MustParser(testSchema)

	got, err := p.Filter("priority in ['high', 'low'] && category == 3 && name.startsWith('LKAS')")
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	want := []Predicate{
		{Field: "priority", Op: OpIn, Strs: []string{"high", "low"}},
		{Field: "category", Op: OpEq, Int: 3},
		{Field: "name", Op: OpStartsWith, Str: "LKAS"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected predicates:\n got %+v\nwant %+v", got, want)
	}
}

func TestFilterEmpty(t *testing.T) {
	got, err := MustParser(testSchema).Filter("   ")
	if err != nil || got != nil {
		t.Fatalf("expected no predicates, got %v, %v", got, err)
	}
}

func TestFilterAcceptsWholeDoubles(t *testing.T) {
	got, err := MustParser(testSchema).Filter("category == 4.0")
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(got) != 1 || got[0].Int != 4 {
		t.Fatalf("unexpected predicates %+v", got)
	}
}

func TestFilterRejects(t *testing.T) {
	p := MustParser(testSchema)
	cases := map[string]string{
		"priority == 'high' || category == 1": "not supported",
		"!(category == 1)":                    "not supported",
		"notes == 'x'":                        "not filterable",
		"name == 'LKAS 1'":                    "not allowed",
		"category in ['1']":                   "not allowed",
		"priority == 1":                       "string literal",
		"category == 'one'":                   "number literal",
		"category == 1.5":                     "whole number",
		"priority in []":                      "must not be empty",
		"priority in ['high', '']":            "is empty",
		"priority in ['high', 2]":             "string literal",
		"size(name) == 3":                     "must compare a field",
		"priority.contains('h')":              "not supported",
		"priority ==":                         "invalid expression",
	}
	for filter, want := range cases {
		_, err := p.Filter(filter)
		if err == nil {
			t.Fatalf("expected error for %q", filter)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error for %q = %q, want it to mention %q", filter, err, want)
		}
	}
}

func TestOrderBy(t *testing.T) {
	p := MustParser(testSchema)

	got, err := p.OrderBy("priority desc, name")
	if err != nil {
		t.Fatalf("OrderBy returned error: %v", err)
	}
	want := []Term{{Key: "priority", Desc: true}, {Key: "name"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected terms %+v", got)
	}

	got, err = p.OrderBy(" , ")
	if err != nil || !reflect.DeepEqual(got, testSchema.DefaultOrder) {
		t.Fatalf("expected default order, got %+v, %v", got, err)
	}
}

func TestOrderByRejects(t *testing.T) {
	p := MustParser(testSchema)
	for _, raw := range []string{
		"notes",
		"name sideways",
		"name asc extra",
		"name, name desc",
		"priority, name, position",
	} {
		if _, err := p.OrderBy(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseWrapsSection(t *testing.T) {
	p := MustParser(testSchema)
	if _, err := p.Parse("notes == 'x'", ""); err == nil || !strings.HasPrefix(err.Error(), "filter:") {
		t.Fatalf("expected filter error, got %v", err)
	}
	if _, err := p.Parse("", "notes"); err == nil || !strings.HasPrefix(err.Error(), "order_by:") {
		t.Fatalf("expected order_by error, got %v", err)
	}
	q, err := p.Parse("category == 2", "")
	if err != nil || len(q.Predicates) != 1 || len(q.Order) != 1 {
		t.Fatalf("unexpected query %+v, %v", q, err)
	}
}

func TestNewParserValidatesSchema(t *testing.T) {
	if _, err := NewParser(Schema{}); err == nil {
		t.Fatalf("expected error for empty schema")
	}
	if _, err := NewParser(Schema{Fields: map[string]Field{"x": {Kind: KindString}}}); err == nil {
		t.Fatalf("expected error for field without operators")
	}
	bad := testSchema
	bad.DefaultOrder = []Term{{Key: "missing"}}
	if _, err := NewParser(bad); err == nil {
		t.Fatalf("expected error for unknown default order key")
	}
}
