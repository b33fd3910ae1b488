// Package filterexpr turns a restricted CEL filter and an order_by clause into
// plain predicates and sort terms that a repository can render as SQL.
//
// A filter is a conjunction of atomic comparisons:
//
//	priority in ['high', 'medium'] && category == 3 && name.startsWith('LKAS')
//
// Disjunction, negation and the ternary operator are rejected.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Kind is the literal type a field accepts.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
)

// Op is a comparison allowed inside a filter.
type Op string

const (
	OpEq         Op = "=="
	OpIn         Op = "in"
	OpStartsWith Op = "startsWith"
)

// Field declares a filterable identifier.
type Field struct {
	Kind Kind
	Ops  []Op
}

// Predicate is one validated comparison. Str is set for string equality and
// prefixes, Strs for in-lists and Int for integer equality.
type Predicate struct {
	Field string
	Op    Op
	Str   string
	Strs  []string
	Int   int64
}

// Term is one order_by key with its direction.
type Term struct {
	Key  string
	Desc bool
}

// Schema lists what a resource can be filtered and ordered by.
type Schema struct {
	Fields map[string]Field
	// Sortable keys accepted in order_by.
	Sortable []string
	// DefaultOrder applies when order_by is empty.
	DefaultOrder []Term
	// MaxTerms caps the number of order_by keys; zero means two.
	MaxTerms int
}

// Query is the parsed form of a filter and order_by pair.
type Query struct {
	Predicates []Predicate
	Order      []Term
}

// Parser validates filters and orderings against one schema. It is safe for
// concurrent use.
type Parser struct {
	schema Schema
	env    *cel.Env
}

// NewParser checks the schema and prepares the CEL environment.
func NewParser(schema Schema) (*Parser, error) {
	if len(schema.Fields) == 0 {
		return nil, errors.New("schema has no filter fields")
	}
	opts := make([]cel.EnvOption, 0, len(schema.Fields))
	for name, field := range schema.Fields {
		var typ *cel.Type
		switch field.Kind {
		case KindString:
			typ = cel.StringType
		case KindInt:
			typ = cel.IntType
		default:
			return nil, fmt.Errorf("field %q has unknown kind %d", name, field.Kind)
		}
		if len(field.Ops) == 0 {
			return nil, fmt.Errorf("field %q allows no operators", name)
		}
		opts = append(opts, cel.Variable(name, typ))
	}
	for _, term := range schema.DefaultOrder {
		if !slices.Contains(schema.Sortable, term.Key) {
			return nil, fmt.Errorf("default order key %q is not sortable", term.Key)
		}
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("build cel env: %w", err)
	}
	return &Parser{schema: schema, env: env}, nil
}

// MustParser is NewParser for package level schemas.
func MustParser(schema Schema) *Parser {
	p, err := NewParser(schema)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse validates both inputs.
func (p *Parser) Parse(filter, orderBy string) (Query, error) {
	predicates, err := p.Filter(filter)
	if err != nil {
		return Query{}, fmt.Errorf("filter: %w", err)
	}
	order, err := p.OrderBy(orderBy)
	if err != nil {
		return Query{}, fmt.Errorf("order_by: %w", err)
	}
	return Query{Predicates: predicates, Order: order}, nil
}

// Filter parses a conjunction into predicates in source order.
func (p *Parser) Filter(filter string) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	ast, issues := p.env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid expression: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert ast: %w", err)
	}

	var conjuncts []*exprpb.Expr
	if err := flattenAnd(parsed.GetExpr(), &conjuncts); err != nil {
		return nil, err
	}

	predicates := make([]Predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := p.predicate(expr)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, pred)
	}
	return predicates, nil
}

func flattenAnd(expr *exprpb.Expr, out *[]*exprpb.Expr) error {
	call := expr.GetCallExpr()
	if call == nil {
		*out = append(*out, expr)
		return nil
	}
	switch call.GetFunction() {
	case "_&&_":
		for _, arg := range call.GetArgs() {
			if err := flattenAnd(arg, out); err != nil {
				return err
			}
		}
		return nil
	case "_||_", "!_", "_?_:_":
		return fmt.Errorf("operator %q is not supported, combine comparisons with &&", call.GetFunction())
	default:
		*out = append(*out, expr)
		return nil
	}
}

func (p *Parser) predicate(expr *exprpb.Expr) (Predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Predicate{}, errors.New("expected a comparison")
	}

	var (
		op           Op
		ident, value *exprpb.Expr
		args         = call.GetArgs()
	)
	switch call.GetFunction() {
	case "_==_":
		op = OpEq
		if len(args) == 2 {
			ident, value = args[0], args[1]
		}
	case "@in":
		op = OpIn
		if len(args) == 2 {
			ident, value = args[0], args[1]
		}
	case "startsWith":
		op = OpStartsWith
		if call.GetTarget() != nil && len(args) == 1 {
			ident, value = call.GetTarget(), args[0]
		}
	default:
		return Predicate{}, fmt.Errorf("function %q is not supported", call.GetFunction())
	}
	if ident == nil {
		return Predicate{}, fmt.Errorf("malformed %s comparison", op)
	}

	name := ident.GetIdentExpr().GetName()
	if name == "" {
		return Predicate{}, fmt.Errorf("%s must compare a field", op)
	}
	field, ok := p.schema.Fields[name]
	if !ok {
		return Predicate{}, fmt.Errorf("field %q is not filterable", name)
	}
	if !slices.Contains(field.Ops, op) {
		return Predicate{}, fmt.Errorf("operator %s is not allowed on %q", op, name)
	}

	pred := Predicate{Field: name, Op: op}
	var err error
	switch {
	case op == OpIn:
		pred.Strs, err = stringList(value)
	case field.Kind == KindInt:
		pred.Int, err = intLiteral(value)
	default:
		pred.Str, err = stringLiteral(value)
	}
	if err != nil {
		return Predicate{}, fmt.Errorf("field %q: %w", name, err)
	}
	return pred, nil
}

func stringLiteral(expr *exprpb.Expr) (string, error) {
	c := expr.GetConstExpr()
	if c == nil {
		return "", errors.New("expected a string literal")
	}
	v, ok := c.GetConstantKind().(*exprpb.Constant_StringValue)
	if !ok {
		return "", errors.New("expected a string literal")
	}
	return v.StringValue, nil
}

func intLiteral(expr *exprpb.Expr) (int64, error) {
	c := expr.GetConstExpr()
	if c == nil {
		return 0, errors.New("expected a number literal")
	}
	switch v := c.GetConstantKind().(type) {
	case *exprpb.Constant_Int64Value:
		return v.Int64Value, nil
	case *exprpb.Constant_Uint64Value:
		if v.Uint64Value > math.MaxInt64 {
			return 0, fmt.Errorf("number %d is out of range", v.Uint64Value)
		}
		return int64(v.Uint64Value), nil
	case *exprpb.Constant_DoubleValue:
		if v.DoubleValue != math.Trunc(v.DoubleValue) || math.Abs(v.DoubleValue) > 1<<53 {
			return 0, fmt.Errorf("number %v is not a whole number", v.DoubleValue)
		}
		return int64(v.DoubleValue), nil
	default:
		return 0, errors.New("expected a number literal")
	}
}

func stringList(expr *exprpb.Expr) ([]string, error) {
	list := expr.GetListExpr()
	if list == nil {
		return nil, errors.New("in expects a list literal")
	}
	elems := list.GetElements()
	if len(elems) == 0 {
		return nil, errors.New("in list must not be empty")
	}
	values := make([]string, 0, len(elems))
	for i, elem := range elems {
		s, err := stringLiteral(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("element %d is empty", i)
		}
		values = append(values, s)
	}
	return values, nil
}
