// Package query implements the boolean predicate language for selecting
// projects by attribute.
//
// Grammar:
//
//	expr    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | "(" expr ")" | term
//	term    = field op value { "," value }
//	op      = "=" | "!=" | "~"
//	field   = "id" | "language" | "type" | "tag"
//
// Comma-joined values inside one term are alternatives: "tag=a,b" is
// equivalent to "tag=a || tag=b". The "~" operator treats the value as a
// glob pattern against the attribute. Evaluation is pure; Select scans the
// graph linearly, which is plenty at workspace scale.
package query
