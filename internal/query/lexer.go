package query

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError reports malformed query syntax at a byte position.
type SyntaxError struct {
	Position int
	Expected string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: expected %s", e.Position, e.Expected)
}

// UnknownFieldError reports a comparison against a field the language does
// not define.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown query field %q (known fields: id, language, type, tag)", e.Field)
}

// InvalidPatternError reports a '~' comparison whose value is not a valid
// glob pattern. Caught at parse time so the term cannot silently match
// nothing at evaluation.
type InvalidPatternError struct {
	Position int
	Pattern  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q at position %d", e.Pattern, e.Position)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokEq
	tokNeq
	tokMatch
	tokNot
	tokAnd
	tokOr
	tokComma
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokWord:
		return "value"
	case tokEq:
		return "'='"
	case tokNeq:
		return "'!='"
	case tokMatch:
		return "'~'"
	case tokNot:
		return "'!'"
	case tokAnd:
		return "'&&'"
	case tokOr:
		return "'||'"
	case tokComma:
		return "','"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "token"
}

// isWordRune covers field names, project IDs, tags and glob patterns.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		strings.ContainsRune("_-./*?[]{}#:@", r)
}

func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '=':
			tokens = append(tokens, token{tokEq, "=", i})
			i++
		case r == '~':
			tokens = append(tokens, token{tokMatch, "~", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case r == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{tokNeq, "!=", i})
				i += 2
			} else {
				tokens = append(tokens, token{tokNot, "!", i})
				i++
			}
		case r == '&':
			if i+1 >= len(runes) || runes[i+1] != '&' {
				return nil, &SyntaxError{Position: i, Expected: "'&&'"}
			}
			tokens = append(tokens, token{tokAnd, "&&", i})
			i += 2
		case r == '|':
			if i+1 >= len(runes) || runes[i+1] != '|' {
				return nil, &SyntaxError{Position: i, Expected: "'||'"}
			}
			tokens = append(tokens, token{tokOr, "||", i})
			i += 2
		case isWordRune(r):
			start := i
			for i < len(runes) && isWordRune(runes[i]) {
				i++
			}
			tokens = append(tokens, token{tokWord, string(runes[start:i]), start})
		default:
			return nil, &SyntaxError{Position: i, Expected: "comparison, operator or parenthesis"}
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(runes)})
	return tokens, nil
}
