/*
Package lang is the entry point to the funlang toolchain. It combines the
lexer, parser and evaluator behind a single Engine.

	engine, err := lang.New(lang.Options{Stdout: &buf})
	if err != nil {
		return err
	}
	result, err := engine.Run(ctx, "println(1 + 2)")

Run captures everything the program prints in Result.Output and also
forwards it to Options.Stdout. Each Run starts from a fresh root scope.
A Session keeps its root scope between calls so definitions accumulate,
which is what an interactive prompt needs:

	session := engine.NewSession()
	session.Eval(ctx, "var a = 2")
	session.Eval(ctx, "println(a * a)")

Errors are *error.Error values from foundation/core/error. The Is*
helpers classify them by code, and Line reports the source line.
*/
package lang
