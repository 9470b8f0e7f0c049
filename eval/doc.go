// Package eval evaluates [ir.Expr] nodes against a row scope: where,
// having, and select projections go through [Evaluator.Eval] or
// [Evaluator.EvalBool]; groupBy aggregate folds go through [Fold]. Join
// conditions are not evaluated here; the compiler matches joined rows by
// key.
//
// Evaluator is stateless and safe for concurrent use; all evaluation
// state lives in the [Scope] passed to each call, following the same
// split the teacher's instance/eval package uses between a stateless
// Evaluator and an immutable, composable Scope.
package eval
