// Package interpreter executes bound Quill ASTs. Expressions evaluate to a
// value or an error; statements produce a Completion record so break,
// continue, return and throw travel as ordinary results rather than host
// stack unwinding. The package also hosts the tree passes that run between
// binding and execution: Optimize, LinkVars and CheckCode.
package interpreter
