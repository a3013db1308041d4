package exprlang

import "fmt"

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token{kind: tkEOF, pos: -1}
}

func (p *parser) advance() token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.advance()
	if t.kind != kind {
		return t, fmt.Errorf("expected %s but got %q at position %d", what, t.value, t.pos)
	}
	return t, nil
}

// Operator precedence, lowest to highest:
//
//	||        (1)
//	&&        (2)
//	== != < > <= >= (3)
//	+ -       (4)
//	* /       (5)
//	unary ! - (6)
//	. [] ()   (7)
func (p *parser) parseExpression(minPrec int) (*astNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, op := p.infixInfo(p.peek())
		if prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &astNode{kind: ndBinary, value: op, children: []*astNode{left, right}}
	}
	return left, nil
}

func (p *parser) infixInfo(tok token) (int, string) {
	switch tok.kind {
	case tkOr:
		return 1, "||"
	case tkAnd:
		return 2, "&&"
	case tkEq:
		return 3, "=="
	case tkNe:
		return 3, "!="
	case tkLt:
		return 3, "<"
	case tkGt:
		return 3, ">"
	case tkLe:
		return 3, "<="
	case tkGe:
		return 3, ">="
	case tkPlus:
		return 4, "+"
	case tkMinus:
		return 4, "-"
	case tkStar:
		return 5, "*"
	case tkSlash:
		return 5, "/"
	}
	return -1, ""
}

func (p *parser) parseUnary() (*astNode, error) {
	tok := p.peek()
	if tok.kind == tkNot {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &astNode{kind: ndUnaryNot, children: []*astNode{inner}}, nil
	}
	if tok.kind == tkMinus {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &astNode{kind: ndUnaryNeg, children: []*astNode{inner}}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (*astNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		switch tok.kind {
		case tkDot:
			p.advance()
			identTok, err := p.expect(tkIdent, "identifier after '.'")
			if err != nil {
				return nil, err
			}
			if p.peek().kind == tkLParen {
				p.advance()
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(tkRParen, "')'"); err != nil {
					return nil, err
				}
				node = &astNode{kind: ndFunction, value: identTok.value, children: append([]*astNode{node}, args...)}
			} else {
				node = &astNode{kind: ndDot, value: identTok.value, children: []*astNode{node}}
			}
		case tkLBrack:
			p.advance()
			idxTok := p.advance()
			var idx interface{}
			switch idxTok.kind {
			case tkNumber:
				n, err := parseNumberLiteral(idxTok.value)
				if err != nil {
					return nil, fmt.Errorf("invalid index %q at position %d", idxTok.value, idxTok.pos)
				}
				idx = int(n)
			case tkString:
				idx = idxTok.value
			default:
				return nil, fmt.Errorf("expected number or string index at position %d", idxTok.pos)
			}
			if _, err := p.expect(tkRBrack, "']'"); err != nil {
				return nil, err
			}
			node = &astNode{kind: ndIndex, value: idx, children: []*astNode{node}}
		default:
			return node, nil
		}
	}
}

func (p *parser) parsePrimary() (*astNode, error) {
	tok := p.peek()
	switch tok.kind {
	case tkLParen:
		p.advance()
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tkString:
		p.advance()
		return &astNode{kind: ndLiteral, value: tok.value}, nil
	case tkNumber:
		p.advance()
		f, err := parseNumberLiteral(tok.value)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", tok.value, tok.pos)
		}
		return &astNode{kind: ndLiteral, value: f}, nil
	case tkIdent:
		p.advance()
		switch tok.value {
		case "true":
			return &astNode{kind: ndLiteral, value: true}, nil
		case "false":
			return &astNode{kind: ndLiteral, value: false}, nil
		case "null":
			return &astNode{kind: ndLiteral, value: nil}, nil
		}
		return &astNode{kind: ndPath, value: tok.value}, nil
	case tkEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", tok.value, tok.pos)
	}
}

func (p *parser) parseArgList() ([]*astNode, error) {
	var args []*astNode
	if p.peek().kind == tkRParen {
		return args, nil
	}
	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().kind != tkComma {
			break
		}
		p.advance()
	}
	return args, nil
}

// parse tokenizes and parses a full expression, verifying there is no
// trailing garbage after the top-level expression.
func parse(input string) (*astNode, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	ast, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tkEOF {
		return nil, fmt.Errorf("unexpected trailing token %q at position %d", p.peek().value, p.peek().pos)
	}
	return ast, nil
}
