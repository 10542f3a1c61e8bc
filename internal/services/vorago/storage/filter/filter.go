// Package filter translates AIP-160 game filters into SQL conditions.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalidFilter wraps every parse or translation failure.
var ErrInvalidFilter = errors.New("invalid filter")

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "status = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Empty reports whether the condition matches every row.
func (c SQLCondition) Empty() bool {
	return c.Clause == ""
}

type field struct {
	column string
	// convert adapts a filter literal to the stored column value.
	convert func(any) (any, error)
}

var fields = map[string]field{
	"status":        {column: "status"},
	"ai_difficulty": {column: "ai_difficulty"},
	"winner":        {column: "winner"},
	"round":         {column: "round"},
	"updated_at":    {column: "updated_at", convert: timestampToMillis},
}

// Declarations returns the identifiers a game filter may reference.
func Declarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("status", filtering.TypeString),
		filtering.DeclareIdent("ai_difficulty", filtering.TypeString),
		filtering.DeclareIdent("winner", filtering.TypeInt),
		filtering.DeclareIdent("round", filtering.TypeInt),
		filtering.DeclareIdent("updated_at", filtering.TypeTimestamp),
	)
}

// Parse parses an AIP-160 filter and returns a SQL condition. An empty
// filter yields an empty condition.
func Parse(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}
	decls, err := Declarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	cond, err := translate(parsed.CheckedExpr.GetExpr())
	if err != nil {
		return SQLCondition{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return cond, nil
}

func translate(e *expr.Expr) (SQLCondition, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	args := call.CallExpr.GetArgs()
	switch fn := call.CallExpr.GetFunction(); fn {
	case "AND", "_&&_":
		return join(args, "AND")
	case "OR", "_||_":
		return join(args, "OR")
	case "NOT", "!_":
		if len(args) != 1 {
			return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := translate(args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}, nil
	case "=", "_==_":
		return compare(args, "=")
	case "!=", "_!=_":
		return compare(args, "!=")
	case "<", "_<_":
		return compare(args, "<")
	case "<=", "_<=_":
		return compare(args, "<=")
	case ">", "_>_":
		return compare(args, ">")
	case ">=", "_>=_":
		return compare(args, ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", fn)
	}
}

func join(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := translate(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := translate(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func compare(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	name := ident.IdentExpr.GetName()
	f, ok := fields[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}
	value, err := literal(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if f.convert != nil {
		if value, err = f.convert(value); err != nil {
			return SQLCondition{}, fmt.Errorf("field %s: %w", name, err)
		}
	}
	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", f.column, op),
		Params: []any{value},
	}, nil
}

func literal(e *expr.Expr) (any, error) {
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		case *expr.Constant_Uint64Value:
			return int64(c.Uint64Value), nil
		default:
			return nil, fmt.Errorf("unsupported constant type: %T", c)
		}
	case *expr.Expr_CallExpr:
		if kind.CallExpr.GetFunction() == "timestamp" && len(kind.CallExpr.GetArgs()) == 1 {
			inner, err := literal(kind.CallExpr.GetArgs()[0])
			if err != nil {
				return nil, err
			}
			s, ok := inner.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp argument must be a string")
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp format: %s", s)
			}
			return ts, nil
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.GetFunction())
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func timestampToMillis(v any) (any, error) {
	ts, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected timestamp, got %T", v)
	}
	return ts.UTC().UnixMilli(), nil
}
