/*
Package executor evaluates parsed programs by walking the syntax tree.

Names resolve through a chain of scopes held in a scope.Arena. A fresh
child scope is entered for every function call, every executed if branch
and every loop iteration, and left again when that block finishes. A
called function's scope is parented to the scope active at the call site,
so functions see the variables of their callers (dynamic scoping), not
those of the place they were declared.

Only an explicit return statement produces a return signal. While and if
statements pass the signal upward; a call consumes it and yields its
value, or 0 when the body finished without returning.

Operators work on 64-bit integers with wrapping arithmetic. && and ||
evaluate their right operand only when the left one does not decide the
result: 0 && x is 0 and a non-zero left side of || yields 1. Otherwise the
right operand's value is the result. Comparisons yield 1 or 0.

All failures are *error.Error values carrying the source line:

	NAME_ERROR          unknown variable or function
	ARITY_ERROR         wrong argument count for a user function
	ARITHMETIC_ERROR    division or modulo by zero
	RESOURCE_EXHAUSTED  call depth limit exceeded
	CANCELLED           context cancelled during a loop or call
	INTERNAL            operator outside the known set

An Executor keeps its root scope between Run calls, which lets a REPL
build up definitions incrementally. It is not safe for concurrent use.
*/
package executor
