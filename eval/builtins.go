package eval

import (
	"fmt"

	"github.com/simon-lentz/ivm/internal/collate"
)

// builtinFunc implements a named function over already-evaluated args.
type builtinFunc func(args []any) (any, error)

var builtins = map[string]builtinFunc{
	"=":  cmpFunc(func(c int) bool { return c == 0 }),
	"!=": cmpFunc(func(c int) bool { return c != 0 }),
	"<":  cmpFunc(func(c int) bool { return c < 0 }),
	"<=": cmpFunc(func(c int) bool { return c <= 0 }),
	">":  cmpFunc(func(c int) bool { return c > 0 }),
	">=": cmpFunc(func(c int) bool { return c >= 0 }),
	"+":  arith(func(a, b float64) float64 { return a + b }),
	"-":  arith(func(a, b float64) float64 { return a - b }),
	"*":  arith(func(a, b float64) float64 { return a * b }),
	"/":  arith(func(a, b float64) float64 { return a / b }),
}

func lookupBuiltin(name string) (builtinFunc, bool) {
	f, ok := builtins[name]
	return f, ok
}

func cmpFunc(accept func(cmp int) bool) builtinFunc {
	return func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("eval: comparison expects 2 arguments, got %d", len(args))
		}
		if args[0] == nil || args[1] == nil {
			return args[0] == args[1] && accept(0), nil
		}
		cmp, err := collate.ValueOrder(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("eval: %w", err)
		}
		return accept(cmp), nil
	}
}

func arith(op func(a, b float64) float64) builtinFunc {
	return func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("eval: arithmetic expects 2 arguments, got %d", len(args))
		}
		a, ok := collate.GetFloat64(args[0])
		if !ok {
			if i, iok := collate.GetInt64(args[0]); iok {
				a, ok = float64(i), true
			}
		}
		b, bok := collate.GetFloat64(args[1])
		if !bok {
			if i, iok := collate.GetInt64(args[1]); iok {
				b, bok = float64(i), true
			}
		}
		if !ok || !bok {
			return nil, fmt.Errorf("eval: arithmetic expects numeric arguments, got %T and %T", args[0], args[1])
		}
		return op(a, b), nil
	}
}
