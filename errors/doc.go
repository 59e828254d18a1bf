/*
Package errors implements the error handling used by the ledger runtime and
every program running inside it.

Each failure is categorized by a root error that carries a numeric code. The
code is the only information a caller of a failed instruction can rely on, so
reuse one of the root errors declared here whenever possible and register a
custom one (using Register) only when a program needs to expose a distinct
failure. x/escrow and x/oracle are good examples of packages that declare their
own root errors.

Create error instances with ErrXyz.New("...") or Wrap(err, "...") at the point
of failure so that a stack trace is attached. Only the innermost wrap records
the stack trace. Do not declare wrapped instances as global variables, the
captured stack trace would be useless.

Once you have an error, use fmt to get more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
