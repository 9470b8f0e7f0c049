// Package ir defines the query intermediate representation the compile
// package translates into a dataflow graph (§4.4, §9).
//
// All polymorphism is expressed as tagged variants, not an open
// interface hierarchy: [Expr] is a sealed union of [Ref], [Val], [Func],
// and [Aggregate] nodes, and [From] is a sealed union of [CollectionRef]
// and [QueryRef]. Each variant carries its own state; dispatch happens via
// a type switch in the consuming package (eval, compile), never via a
// virtual method the node itself implements beyond identifying its kind.
//
// ir is a pure data package: it has no evaluation or compilation logic of
// its own. [ir.Query] nodes are typically constructed by an external query
// builder (§1: "the query builder surface and IR data types" are an
// external collaborator) or directly by tests.
package ir
