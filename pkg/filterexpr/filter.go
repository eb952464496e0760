// Package filterexpr parses CEL list filters and order_by clauses into plain
// predicates that storage adapters translate into their own query language.
package filterexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// Field whitelists a filterable field. Column is the storage column name.
type Field struct {
	Column string
	Kind   ValueKind
	Ops    []Op
}

func (f Field) allows(op Op) bool {
	for _, candidate := range f.Ops {
		if candidate == op {
			return true
		}
	}
	return false
}

// Schema aggregates filtering and ordering rules for a resource.
type Schema struct {
	Fields map[string]Field
	Order  OrderSchema
}

// Predicate is one validated conjunct of a filter. Value holds a string,
// float64, time.Time or []string depending on the field kind and operator.
type Predicate struct {
	Field  string
	Column string
	Op     Op
	Value  any
}

// ParseFilter validates a CEL filter such as
// `status == 'review' && due_at <= timestamp('2024-01-01T00:00:00Z')`.
// Only AND chains of comparisons are accepted.
func ParseFilter(filter string, schema Schema) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(schema.Fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := newEnv(schema.Fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert filter ast: %w", err)
	}

	conjuncts, err := flattenAnd(parsed.GetExpr())
	if err != nil {
		return nil, err
	}

	predicates := make([]Predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := parseComparison(expr)
		if err != nil {
			return nil, err
		}
		field, ok := schema.Fields[pred.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not allowed", pred.Field)
		}
		if !field.allows(pred.Op) {
			return nil, fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := checkLiteral(field.Kind, pred.Op, pred.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", pred.Field, err)
		}
		pred.Column = field.Column
		if pred.Column == "" {
			pred.Column = pred.Field
		}
		predicates = append(predicates, pred)
	}
	return predicates, nil
}

func newEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, field := range fields {
		var typ *cel.Type
		switch field.Kind {
		case KindString:
			typ = cel.StringType
		case KindNumber:
			typ = cel.DoubleType
		case KindTimestamp:
			typ = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unsupported kind %s", name, field.Kind)
		}
		opts = append(opts, cel.Variable(name, typ))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func flattenAnd(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}
	switch call.Function {
	case "_&&_":
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			nested, err := flattenAnd(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parseComparison(expr *exprpb.Expr) (Predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Predicate{}, errors.New("expected comparison or function call")
	}

	var op Op
	var fieldExpr, valueExpr *exprpb.Expr
	switch call.Function {
	case "_==_", "_>=_", "_<=_":
		op = map[string]Op{"_==_": OpEQ, "_>=_": OpGTE, "_<=_": OpLTE}[call.Function]
		if len(call.Args) != 2 {
			return Predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
		}
		fieldExpr, valueExpr = call.Args[0], call.Args[1]
	case "@in":
		op = OpIN
		if len(call.Args) != 2 {
			return Predicate{}, errors.New("in operator expects two operands")
		}
		fieldExpr, valueExpr = call.Args[0], call.Args[1]
	case "startsWith":
		op = OpSW
		if call.Target == nil || len(call.Args) != 1 {
			return Predicate{}, errors.New("startsWith expects a receiver and one argument")
		}
		fieldExpr, valueExpr = call.Target, call.Args[0]
	default:
		return Predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}

	ident := fieldExpr.GetIdentExpr()
	if ident == nil {
		return Predicate{}, errors.New("left-hand side must be an identifier")
	}
	value, err := literal(valueExpr)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: ident.GetName(), Op: op, Value: value}, nil
}

func literal(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		values := make([]string, 0, len(list.GetElements()))
		for i, elem := range list.GetElements() {
			str := elem.GetConstExpr().GetStringValue()
			if str == "" {
				return nil, fmt.Errorf("list element %d must be a non-empty string literal", i)
			}
			values = append(values, str)
		}
		return values, nil
	}

	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" && len(call.Args) == 1 {
		raw := call.Args[0].GetConstExpr().GetStringValue()
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("timestamp literal %q is not RFC3339", raw)
		}
		return ts, nil
	}

	return nil, errors.New("right-hand side must be a literal, list literal, or timestamp() call")
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if op == OpIN {
		list, ok := value.([]string)
		if !ok || kind != KindString {
			return errors.New("in requires a list of strings")
		}
		if len(list) == 0 {
			return errors.New("list literal must not be empty")
		}
		return nil
	}
	var ok bool
	switch kind {
	case KindString:
		_, ok = value.(string)
	case KindNumber:
		_, ok = value.(float64)
	case KindTimestamp:
		_, ok = value.(time.Time)
	}
	if !ok {
		return fmt.Errorf("expected %s literal", kind)
	}
	return nil
}
