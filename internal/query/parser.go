package query

import "github.com/bmatcuk/doublestar/v4"

// Parse compiles a query expression into a Predicate. Malformed syntax
// returns SyntaxError, comparisons against undefined fields return
// UnknownFieldError, and malformed '~' globs return InvalidPatternError.
func Parse(expr string) (Predicate, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &SyntaxError{Position: p.peek().pos, Expected: "'&&', '||' or end of expression"}
	}
	return pred, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Predicate{left}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return orPredicate(terms), nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := []Predicate{left}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return andPredicate(terms), nil
}

func (p *parser) parseUnary() (Predicate, error) {
	switch t := p.peek(); t.kind {
	case tokNot:
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notPredicate{inner}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &SyntaxError{Position: p.peek().pos, Expected: "')'"}
		}
		p.next()
		return inner, nil
	case tokWord:
		return p.parseTerm()
	default:
		return nil, &SyntaxError{Position: t.pos, Expected: "comparison, '!' or '('"}
	}
}

func (p *parser) parseTerm() (Predicate, error) {
	fieldTok := p.next()
	field, ok := fieldByName(fieldTok.text)
	if !ok {
		return nil, &UnknownFieldError{Field: fieldTok.text}
	}

	var op compareOp
	switch t := p.next(); t.kind {
	case tokEq:
		op = opEq
	case tokNeq:
		op = opNeq
	case tokMatch:
		op = opGlob
	default:
		return nil, &SyntaxError{Position: t.pos, Expected: "'=', '!=' or '~'"}
	}

	valueTok := p.peek()
	if valueTok.kind != tokWord {
		return nil, &SyntaxError{Position: valueTok.pos, Expected: "value"}
	}
	valueToks := []token{p.next()}
	for p.peek().kind == tokComma {
		p.next()
		v := p.peek()
		if v.kind != tokWord {
			return nil, &SyntaxError{Position: v.pos, Expected: "value after ','"}
		}
		valueToks = append(valueToks, p.next())
	}

	values := make([]string, len(valueToks))
	for i, v := range valueToks {
		if op == opGlob && !doublestar.ValidatePattern(v.text) {
			return nil, &InvalidPatternError{Position: v.pos, Pattern: v.text}
		}
		values[i] = v.text
	}

	return term{field: field, op: op, values: values}, nil
}
