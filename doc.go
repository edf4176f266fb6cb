/*
Package ebnfkit is a grammar-driven parsing toolbox.

ebnfkit compiles a small regular-expression dialect into nondeterministic
finite automata, compiles EBNF grammars (together with a regex-backed token
set) into a linked symbol graph, and drives a scanner and a backtracking
top-down parser which produces an abstract syntax tree. A companion LL(1)
analyzer computes FIRST/FOLLOW sets over the symbol graph and reports
conflicts. Package structure is as follows:

■ regex: Package regex implements the regex compiler, the NFA matcher and
the first-byte set export.

■ scanner: Package scanner implements a priority-ordered token scanner on
top of compiled regexes, plus an adapter for lexmachine in sub-package
lexmach.

■ ebnf: Package ebnf implements the grammar compiler, the symbol graph, the
backtracking parser driver and the LL(1) analysis.

■ arena: Package arena provides the bump allocator and node pools the graph
structures are carved from.

■ langs/json: Package json packages the standard JSON grammar as a reusable
formatter.

The base package contains data types which are used throughout all the
other packages: byte spans, the input cursor, and source positions.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package ebnfkit
