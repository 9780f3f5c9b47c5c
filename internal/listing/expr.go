package listing

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

// recordVar exposes the whole record, for fields whose names are not valid
// identifiers: record["hire-date"].
const recordVar = "record"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var celReserved = map[string]struct{}{
	"as": {}, "break": {}, "const": {}, "continue": {}, "else": {}, "false": {}, "for": {},
	"function": {}, "if": {}, "import": {}, "in": {}, "let": {}, "loop": {}, "package": {},
	"namespace": {}, "null": {}, "return": {}, "true": {}, "var": {}, "void": {}, "while": {},
	recordVar: {},
}

// expression is a compiled boolean CEL program over record fields.
// cel.Program is safe for concurrent use.
type expression struct {
	source string
	prg    cel.Program
	vars   []string
}

func compileExpression(schema metadata.Schema, source string) (*expression, error) {
	opts := []cel.EnvOption{
		cel.Variable(recordVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	}
	var vars []string
	for _, f := range schema.Fields {
		if !identRe.MatchString(f.Name) {
			continue
		}
		if _, reserved := celReserved[f.Name]; reserved {
			continue
		}
		opts = append(opts, cel.Variable(f.Name, cel.DynType))
		vars = append(vars, f.Name)
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, iss := env.Compile(source)
	if iss != nil && iss.Err() != nil {
		return nil, apperror.NewInvalidExpression(source, iss.Err())
	}
	switch ast.OutputType().String() {
	case "bool", "dyn":
	default:
		return nil, apperror.NewInvalidExpression(source, nil).
			WithDetail("outputType", ast.OutputType().String())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewInvalidExpression(source, err)
	}
	return &expression{source: source, prg: prg, vars: vars}, nil
}

// match evaluates the expression; evaluation errors (a missing field compared
// with a number, say) count as no match.
func (e *expression) match(r domain.Record) bool {
	activation := make(map[string]any, len(e.vars)+1)
	plain := celValue(r).(map[string]any)
	activation[recordVar] = plain
	for _, name := range e.vars {
		activation[name] = plain[name]
	}

	out, _, err := e.prg.Eval(activation)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// celValue converts record values into types the CEL runtime understands.
func celValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case domain.Record:
		return celValue(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = celValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = celValue(vv)
		}
		return out
	case decimal.Decimal:
		return x.InexactFloat64()
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	}
	return v
}
