// Package filter translates AIP-160 list filters into parameterized SQL
// conditions for the request and audit listings.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// SQLCondition is a WHERE fragment with positional parameters, ready to be
// appended to a listing query.
type SQLCondition struct {
	Clause string // e.g. "status = ?"
	Params []any
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindTimestamp
)

// fieldSpec describes one filterable attribute: the value kind the
// typechecker accepts for it and the column its condition selects.
type fieldSpec struct {
	kind   fieldKind
	column string
}

// fieldSet maps the filter names exposed to callers onto column specs.
type fieldSet map[string]fieldSpec

// requestFields covers the document_requests listing.
var requestFields = fieldSet{
	"client_id":  {kindString, "client_id"},
	"status":     {kindString, "status"},
	"title":      {kindString, "title"},
	"created_by": {kindString, "created_by"},
	"created":    {kindTimestamp, "created_at"},
}

// auditFields covers the audit_events listing. ts selects the timestamp
// column.
var auditFields = fieldSet{
	"action":     {kindString, "action"},
	"actor_id":   {kindString, "actor_id"},
	"client_id":  {kindString, "client_id"},
	"request_id": {kindString, "request_id"},
	"ts":         {kindTimestamp, "timestamp"},
}

// sqlOperators maps CEL call names onto SQL operators. The parser emits
// infix functions such as _&&_ and _==_ for AIP-160 connectives and
// comparators.
var sqlOperators = map[string]string{
	"_&&_": "AND",
	"AND":  "AND",
	"_||_": "OR",
	"OR":   "OR",
	"_==_": "=",
	"=":    "=",
	"_!=_": "!=",
	"!=":   "!=",
	"_<_":  "<",
	"<":    "<",
	"_<=_": "<=",
	"<=":   "<=",
	"_>_":  ">",
	">":    ">",
	"_>=_": ">=",
	">=":   ">=",
}

// ParseRequestFilter parses an AIP-160 filter over document requests and
// returns a SQL condition. An empty filter yields an empty condition.
func ParseRequestFilter(filterStr string) (SQLCondition, error) {
	return parse(filterStr, requestFields)
}

// ParseAuditFilter parses an AIP-160 filter over audit events and returns a
// SQL condition. An empty filter yields an empty condition.
func ParseAuditFilter(filterStr string) (SQLCondition, error) {
	return parse(filterStr, auditFields)
}

func parse(filterStr string, fields fieldSet) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := fields.declarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	return fields.translate(parsed.CheckedExpr.GetExpr())
}

func (fs fieldSet) declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, spec := range fs {
		switch spec.kind {
		case kindTimestamp:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeTimestamp))
		default:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeString))
		}
	}
	return filtering.NewDeclarations(opts...)
}

// translate lowers a checked expression into SQL. Only binary connectives
// and comparisons survive typechecking against our declarations, so
// anything else is rejected here.
func (fs fieldSet) translate(e *expr.Expr) (SQLCondition, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}

	op, ok := sqlOperators[call.CallExpr.GetFunction()]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.CallExpr.GetFunction())
	}

	args := call.CallExpr.GetArgs()
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	if op == "AND" || op == "OR" {
		return fs.combine(op, args)
	}
	return fs.compare(op, args)
}

func (fs fieldSet) combine(op string, args []*expr.Expr) (SQLCondition, error) {
	var clauses [2]string
	var params []any
	for i, arg := range args {
		sub, err := fs.translate(arg)
		if err != nil {
			return SQLCondition{}, err
		}
		clauses[i] = sub.Clause
		params = append(params, sub.Params...)
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", clauses[0], op, clauses[1]),
		Params: params,
	}, nil
}

func (fs fieldSet) compare(op string, args []*expr.Expr) (SQLCondition, error) {
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("expected field name, got %T", args[0].GetExprKind())
	}

	name := ident.IdentExpr.GetName()
	spec, ok := fs[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}

	value, err := literalValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", spec.column, op),
		Params: []any{value},
	}, nil
}

func literalValue(e *expr.Expr) (any, error) {
	switch node := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		return constantValue(node.ConstExpr)
	case *expr.Expr_CallExpr:
		if node.CallExpr.GetFunction() == "timestamp" && len(node.CallExpr.GetArgs()) == 1 {
			return timestampMillis(node.CallExpr.GetArgs()[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", node.CallExpr.GetFunction())
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", node)
	}
}

func constantValue(c *expr.Constant) (any, error) {
	switch v := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return v.StringValue, nil
	case *expr.Constant_Int64Value:
		return v.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return v.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return v.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return v.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", v)
	}
}

// timestampMillis converts a timestamp("...") literal into the unix-milli
// integer form the sqlite stores persist.
func timestampMillis(arg *expr.Expr) (int64, error) {
	node, ok := arg.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	raw, ok := node.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a string")
	}

	t, err := time.Parse(time.RFC3339, raw.StringValue)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, raw.StringValue); err != nil {
			return 0, fmt.Errorf("invalid timestamp format: %s", raw.StringValue)
		}
	}
	return t.UTC().UnixMilli(), nil
}
