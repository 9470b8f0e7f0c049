package eval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simon-lentz/ivm/internal/trace"
	"github.com/simon-lentz/ivm/ir"
)

// Evaluator evaluates compiled [ir.Expr] nodes. Evaluator is stateless and
// safe for concurrent use; all evaluation state lives in the [Scope]
// passed to each call.
type Evaluator struct {
	cfg *config
}

// NewEvaluator returns an Evaluator configured by opts.
func NewEvaluator(opts ...Option) *Evaluator {
	return &Evaluator{cfg: applyOptions(opts)}
}

// Eval evaluates expression against scope and returns its result.
// Aggregate nodes are rejected here; use [Fold] for groupBy aggregates,
// which operate over a group of rows rather than a single scope (§4.4:
// "aggregate used outside groupBy" is a compile-time error).
func (e *Evaluator) Eval(expression ir.Expr, scope Scope) (any, error) {
	if expression == nil {
		return nil, nil //nolint:nilnil // nil expression evaluates to nil
	}

	op := trace.Begin(context.Background(), e.cfg.logger, "ivm.eval.expr")
	var err error
	defer func() { op.End(err) }()

	var result any
	result, err = e.eval(expression, scope)
	return result, err
}

// EvalBool evaluates expression and requires the result to be a bool.
func (e *Evaluator) EvalBool(expression ir.Expr, scope Scope) (bool, error) {
	result, err := e.Eval(expression, scope)
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("eval: expected boolean result, got %T", result)
	}
	return b, nil
}

func (e *Evaluator) eval(expression ir.Expr, scope Scope) (any, error) {
	switch ex := expression.(type) {
	case ir.Val:
		return ex.Value, nil
	case ir.Ref:
		v, ok := scope.Lookup(ex.Alias, ex.Field)
		if !ok {
			return nil, nil
		}
		return v, nil
	case ir.Func:
		return e.evalFunc(ex, scope)
	case ir.Aggregate:
		return nil, fmt.Errorf("eval: aggregate expression used outside groupBy: %s", ex.Kind)
	default:
		return nil, fmt.Errorf("eval: unknown expression type %T", expression)
	}
}

func (e *Evaluator) evalFunc(fn ir.Func, scope Scope) (any, error) {
	trace.Debug(context.Background(), e.cfg.logger, "evaluating function",
		slog.String("name", fn.Name),
	)

	switch fn.Name {
	case "and":
		return e.evalAnd(fn.Args, scope)
	case "or":
		return e.evalOr(fn.Args, scope)
	case "not":
		return e.evalNot(fn.Args, scope)
	}

	args := make([]any, len(fn.Args))
	for i, a := range fn.Args {
		v, err := e.eval(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	def, ok := lookupBuiltin(fn.Name)
	if !ok {
		return nil, fmt.Errorf("eval: unknown function %q", fn.Name)
	}
	return def(args)
}

func (e *Evaluator) evalAnd(args []ir.Expr, scope Scope) (any, error) {
	for _, a := range args {
		v, err := e.EvalBool(a, scope)
		if err != nil {
			return nil, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) evalOr(args []ir.Expr, scope Scope) (any, error) {
	for _, a := range args {
		v, err := e.EvalBool(a, scope)
		if err != nil {
			return nil, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) evalNot(args []ir.Expr, scope Scope) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("eval: not expects exactly one argument, got %d", len(args))
	}
	v, err := e.EvalBool(args[0], scope)
	if err != nil {
		return nil, err
	}
	return !v, nil
}
