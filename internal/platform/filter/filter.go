// Package filter provides AIP-160 filter expression parsing and SQL translation.
package filter

import (
	"fmt"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType is the declared type of a filterable field.
type FieldType int

const (
	// String fields compare as text; ":" matches a case-insensitive substring.
	String FieldType = iota
	// Bool fields compare against true/false and are stored as 0/1.
	Bool
	// Int fields compare numerically.
	Int
)

// Field maps a filter identifier to a SQL column.
type Field struct {
	Column string
	Type   FieldType
}

// Schema lists the identifiers a filter may reference.
type Schema map[string]Field

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "category_key = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Empty reports whether the condition matches every row.
func (c SQLCondition) Empty() bool {
	return strings.TrimSpace(c.Clause) == ""
}

func (s Schema) declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, field := range s {
		opts = append(opts, filtering.DeclareIdent(name, field.Type.declared()))
	}
	return filtering.NewDeclarations(opts...)
}

func (t FieldType) declared() *expr.Type {
	switch t {
	case Bool:
		return filtering.TypeBool
	case Int:
		return filtering.TypeInt
	default:
		return filtering.TypeString
	}
}

// Parse parses an AIP-160 filter expression and returns a SQL condition.
// Returns an empty condition for an empty filter string.
func (s Schema) Parse(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := s.declarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse filter", err)
	}

	cond, err := s.translateExpr(parsed.CheckedExpr.GetExpr())
	if err != nil {
		return SQLCondition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "translate filter", err)
	}
	return cond, nil
}

func (s Schema) translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return s.translateCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean identifier reads as "field = true".
		field, ok := s[kind.IdentExpr.Name]
		if !ok || field.Type != Bool {
			return SQLCondition{}, fmt.Errorf("identifier %q is not a boolean field", kind.IdentExpr.Name)
		}
		return SQLCondition{Clause: field.Column + " = ?", Params: []any{1}}, nil
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (s Schema) translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", filtering.FunctionAnd:
		return s.translateJoin(call.Args, "AND")
	case "_||_", filtering.FunctionOr:
		return s.translateJoin(call.Args, "OR")
	case "!_", filtering.FunctionNot:
		return s.translateNot(call.Args)
	case "_==_", filtering.FunctionEquals:
		return s.translateComparison(call.Args, "=")
	case "_!=_", filtering.FunctionNotEquals:
		return s.translateComparison(call.Args, "!=")
	case "_<_", filtering.FunctionLessThan:
		return s.translateComparison(call.Args, "<")
	case "_<=_", filtering.FunctionLessEquals:
		return s.translateComparison(call.Args, "<=")
	case "_>_", filtering.FunctionGreaterThan:
		return s.translateComparison(call.Args, ">")
	case "_>=_", filtering.FunctionGreaterEquals:
		return s.translateComparison(call.Args, ">=")
	case filtering.FunctionHas:
		return s.translateHas(call.Args)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (s Schema) translateJoin(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) < 2 {
		return SQLCondition{}, fmt.Errorf("%s requires at least 2 arguments", op)
	}
	clauses := make([]string, 0, len(args))
	var params []any
	for _, arg := range args {
		cond, err := s.translateExpr(arg)
		if err != nil {
			return SQLCondition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	return SQLCondition{
		Clause: "(" + strings.Join(clauses, " "+op+" ") + ")",
		Params: params,
	}, nil
}

func (s Schema) translateNot(args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 1 {
		return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := s.translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}, nil
}

func (s Schema) translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := s.lookupField(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if field.Type == Bool {
		if op != "=" && op != "!=" {
			return SQLCondition{}, fmt.Errorf("operator %s is not defined for booleans", op)
		}
		flag, ok := value.(bool)
		if !ok {
			return SQLCondition{}, fmt.Errorf("boolean field compared to %T", value)
		}
		value = 0
		if flag {
			value = 1
		}
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", field.Column, op),
		Params: []any{value},
	}, nil
}

func (s Schema) translateHas(args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("has requires 2 arguments")
	}
	field, err := s.lookupField(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	if field.Type != String {
		return SQLCondition{}, fmt.Errorf("has is only defined for string fields")
	}
	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	text, ok := value.(string)
	if !ok {
		return SQLCondition{}, fmt.Errorf("has expects a string, got %T", value)
	}
	return SQLCondition{
		Clause: fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", field.Column),
		Params: []any{"%" + EscapeLike(strings.ToLower(text)) + "%"},
	}, nil
}

func (s Schema) lookupField(e *expr.Expr) (Field, error) {
	if e == nil {
		return Field{}, fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return Field{}, fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	field, ok := s[ident.IdentExpr.Name]
	if !ok {
		return Field{}, fmt.Errorf("unknown field: %s", ident.IdentExpr.Name)
	}
	return field, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_IdentExpr:
		// true/false are parsed as identifiers by the AIP grammar.
		switch kind.IdentExpr.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("unexpected identifier in value position: %s", kind.IdentExpr.Name)
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// EscapeLike escapes LIKE wildcards in value for use with ESCAPE '\'.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
