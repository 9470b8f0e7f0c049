package eval

import (
	"fmt"
	"iter"

	"github.com/simon-lentz/ivm/internal/collate"
	"github.com/simon-lentz/ivm/ir"
)

// Fold applies an aggregate over every (value, multiplicity) pair in a
// group, exactly reproducing the reduce operator's non-incremental fold
// contract (§4.3: "applies a user-supplied fold over (V,m)* to produce
// (K, R, m)"). Each entry contributes m copies of value to the fold; a
// negative multiplicity retracts copies rather than being treated as an
// error, so reduce can be re-run from scratch against the group's current
// (post-consolidation) contents on every change.
//
// arg extracts the folded field from each row scope; for AggregateCount
// arg may be nil.
func Fold(e *Evaluator, kind ir.AggregateKind, arg ir.Expr, alias string, group iter.Seq2[Scope, int64]) (any, error) {
	switch kind {
	case ir.AggregateCount:
		return foldCount(group), nil
	case ir.AggregateSum:
		return foldSum(e, arg, group)
	case ir.AggregateAvg:
		return foldAvg(e, arg, group)
	case ir.AggregateMin:
		return foldExtreme(e, arg, group, true)
	case ir.AggregateMax:
		return foldExtreme(e, arg, group, false)
	default:
		return nil, fmt.Errorf("eval: unknown aggregate kind %q", kind)
	}
}

func foldCount(group iter.Seq2[Scope, int64]) int64 {
	var total int64
	for _, m := range group {
		total += m
	}
	return total
}

func foldSum(e *Evaluator, arg ir.Expr, group iter.Seq2[Scope, int64]) (any, error) {
	var sum float64
	var isFloat bool
	for scope, m := range group {
		v, err := e.Eval(arg, scope)
		if err != nil {
			return nil, err
		}
		f, fok := collate.GetFloat64(v)
		if i, iok := collate.GetInt64(v); iok && !fok {
			f, fok = float64(i), true
		} else if fok {
			isFloat = true
		}
		if !fok {
			return nil, fmt.Errorf("eval: sum expects a numeric value, got %T", v)
		}
		sum += f * float64(m)
	}
	if isFloat {
		return sum, nil
	}
	return int64(sum), nil
}

func foldAvg(e *Evaluator, arg ir.Expr, group iter.Seq2[Scope, int64]) (any, error) {
	var sum float64
	var count int64
	for scope, m := range group {
		v, err := e.Eval(arg, scope)
		if err != nil {
			return nil, err
		}
		f, fok := collate.GetFloat64(v)
		if i, iok := collate.GetInt64(v); iok && !fok {
			f, fok = float64(i), true
		}
		if !fok {
			return nil, fmt.Errorf("eval: avg expects a numeric value, got %T", v)
		}
		sum += f * float64(m)
		count += m
	}
	if count == 0 {
		return nil, nil
	}
	return sum / float64(count), nil
}

func foldExtreme(e *Evaluator, arg ir.Expr, group iter.Seq2[Scope, int64], wantMin bool) (any, error) {
	var best any
	haveBest := false
	for scope, m := range group {
		if m <= 0 {
			continue
		}
		v, err := e.Eval(arg, scope)
		if err != nil {
			return nil, err
		}
		if !haveBest {
			best, haveBest = v, true
			continue
		}
		cmp, err := collate.ValueOrder(v, best)
		if err != nil {
			return nil, fmt.Errorf("eval: %w", err)
		}
		if (wantMin && cmp < 0) || (!wantMin && cmp > 0) {
			best = v
		}
	}
	return best, nil
}
