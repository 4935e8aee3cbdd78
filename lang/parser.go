package lang

import (
	"fmt"
)

// ParseError is returned on the first unrecoverable token mismatch. The
// offending token carries the source position.
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Token.Pos, e.Message)
}

// Parse tokenizes and parses AgentScript source into a Program. It fails
// with a *LexError or *ParseError at the first problem; a malformed
// statement aborts the whole parse.
func Parse(source, filename string) (*Program, error) {
	tokens, err := NewLexer(source, filename).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{pos: Position{Line: 1, Column: 1, File: p.tokens[0].Pos.File}}

	for !p.isAtEnd() {
		// Newlines and comments are insignificant at the top level.
		if p.match(NEWLINE, COMMENT) {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	return prog, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case USE:
		return p.parseImport()
	case INTENT:
		return p.parseIntentDeclaration()
	case BEHAVIOR:
		return p.parseBehaviorDeclaration()
	case RESOURCE:
		return p.parseResourceDeclaration()
	default:
		return nil, p.errorf("unexpected token: %s", p.peek().Literal)
	}
}

// parseImport handles lines like 'use io.csv, validation.email'.
func (p *parser) parseImport() (*ImportStatement, error) {
	useTok := p.advance()

	module, err := p.parseModuleName()
	if err != nil {
		return nil, err
	}
	modules := []string{module}

	for p.match(COMMA) {
		module, err = p.parseModuleName()
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	return &ImportStatement{Modules: modules, pos: useTok.Pos}, nil
}

// Module names are dot-joined identifier chains collected as flat strings.
func (p *parser) parseModuleName() (string, error) {
	tok, err := p.expect(IDENT, "expected module name")
	if err != nil {
		return "", err
	}
	name := tok.Literal
	for p.match(DOT) {
		part, err := p.expect(IDENT, "expected module name part")
		if err != nil {
			return "", err
		}
		name += "." + part.Literal
	}
	return name, nil
}

func (p *parser) parseIntentDeclaration() (*IntentDeclaration, error) {
	intentTok := p.advance()
	nameTok, err := p.expect(IDENT, "expected intent name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	p.skipNewlines()

	decl := &IntentDeclaration{Name: nameTok.Literal, pos: intentTok.Pos}

	for !p.check(RBRACE) && !p.isAtEnd() {
		p.skipNewlines()
		if p.check(RBRACE) || p.isAtEnd() {
			break
		}

		switch p.peek().Type {
		case DESCRIPTION:
			desc, err := p.parseDescription()
			if err != nil {
				return nil, err
			}
			decl.Description = desc
		case PIPELINE:
			pipe, err := p.parsePipelineDeclaration()
			if err != nil {
				return nil, err
			}
			decl.Pipeline = pipe
		case ON_ERROR:
			eh, err := p.parseErrorHandling()
			if err != nil {
				return nil, err
			}
			decl.ErrorHandling = eh
		default:
			// Unknown fields are skipped one token at a time so files
			// written for newer compilers still parse.
			p.advance()
		}

		p.skipNewlines()
	}

	if _, err := p.expect(RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseDescription() (string, error) {
	p.advance()
	if _, err := p.expect(COLON, "expected ':'"); err != nil {
		return "", err
	}
	tok, err := p.expect(STRING, "expected string description")
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *parser) parseErrorHandling() (*ErrorHandling, error) {
	p.advance()
	if _, err := p.expect(COLON, "expected ':'"); err != nil {
		return nil, err
	}
	tok, err := p.expect(IDENT, "expected error handling strategy")
	if err != nil {
		return nil, err
	}
	return &ErrorHandling{Strategy: tok.Literal}, nil
}

func (p *parser) parsePipelineDeclaration() (*PipelineExpression, error) {
	p.advance()
	if _, err := p.expect(COLON, "expected ':'"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	return p.parsePipelineExpression()
}

// parsePipelineExpression parses one or more stages chained by '->'. Stages
// are restricted to primary expressions: operation invocations, not
// arbitrary computation.
func (p *parser) parsePipelineExpression() (*PipelineExpression, error) {
	op, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	stages := []*PipelineStage{{Operation: op, pos: op.Pos()}}

	for p.match(ARROW) {
		p.skipNewlines()
		op, err = p.parsePrimary()
		if err != nil {
			return nil, err
		}
		stages = append(stages, &PipelineStage{Operation: op, pos: op.Pos()})
	}

	return &PipelineExpression{Stages: stages, pos: stages[0].pos}, nil
}

func (p *parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

func (p *parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(OR) {
		op := p.previous()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(AND) {
		op := p.previous()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseEquality() (Expr, error) {
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.match(EQEQ, BANGEQ) {
		op := p.previous()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseComparison() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.match(LT, LTEQ, GT, GTEQ) {
		op := p.previous()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseTerm() (Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.match(PLUS, MINUS) {
		op := p.previous()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseFactor() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(STAR, SLASH, PERCENT) {
		op := p.previous()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOperation{Left: expr, Operator: op.Literal, Right: right, pos: op.Pos}
	}
	return expr, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.match(NOT, MINUS) {
		op := p.previous()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOperation{Operator: op.Literal, Operand: operand, pos: op.Pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.peek().Type {
	case IDENT:
		return p.parseIdentifierOrCall()
	case STRING:
		tok := p.advance()
		return &Literal{Kind: StringLit, Value: tok.Literal, pos: tok.Pos}, nil
	case INT:
		tok := p.advance()
		return &Literal{Kind: IntLit, Value: tok.Literal, pos: tok.Pos}, nil
	case FLOAT:
		tok := p.advance()
		return &Literal{Kind: FloatLit, Value: tok.Literal, pos: tok.Pos}, nil
	case BOOL:
		tok := p.advance()
		return &Literal{Kind: BoolLit, Value: tok.Literal, pos: tok.Pos}, nil
	case LBRACE:
		return p.parseObjectLiteral()
	case LBRACKET:
		return p.parseArrayLiteral()
	default:
		return nil, p.errorf("unexpected token in expression: %s", p.peek().Literal)
	}
}

func (p *parser) parseIdentifierOrCall() (Expr, error) {
	nameTok, err := p.expect(IDENT, "expected identifier")
	if err != nil {
		return nil, err
	}
	expr := Expr(&Identifier{Name: nameTok.Literal, pos: nameTok.Pos})

	for p.match(DOT) {
		attrTok, err := p.expect(IDENT, "expected attribute name")
		if err != nil {
			return nil, err
		}
		expr = &AttributeAccess{Object: expr, Attribute: attrTok.Literal, pos: attrTok.Pos}
	}

	if p.check(LPAREN) {
		return p.parseFunctionCall(expr)
	}
	return expr, nil
}

func (p *parser) parseFunctionCall(fn Expr) (*FunctionCall, error) {
	p.advance()

	var args []Expr
	if !p.check(RPAREN) {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		for p.match(COMMA) {
			if p.check(RPAREN) { // trailing comma
				break
			}
			arg, err = p.parseArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}

	if _, err := p.expect(RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	return &FunctionCall{Function: fn, Arguments: args, pos: fn.Pos()}, nil
}

// parseArgument parses one call argument, which may be a lambda like
// 'user => user.age >= 18'.
func (p *parser) parseArgument() (Expr, error) {
	if p.check(IDENT) && p.peekNext().Type == LAMBDA_ARROW {
		paramTok := p.advance()
		p.advance() // consume =>
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &LambdaExpression{Parameter: paramTok.Literal, Body: body, pos: paramTok.Pos}, nil
	}
	return p.parseExpression()
}

func (p *parser) parseObjectLiteral() (*ObjectLiteral, error) {
	braceTok := p.advance()
	p.skipNewlines()

	var fields []ObjectField
	if !p.check(RBRACE) {
		field, err := p.parseObjectField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)

		for p.match(COMMA) {
			p.skipNewlines()
			if p.check(RBRACE) { // trailing comma
				break
			}
			field, err = p.parseObjectField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		p.skipNewlines()
	}

	if _, err := p.expect(RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return &ObjectLiteral{Fields: fields, pos: braceTok.Pos}, nil
}

func (p *parser) parseObjectField() (ObjectField, error) {
	keyTok, err := p.expect(IDENT, "expected field name")
	if err != nil {
		return ObjectField{}, err
	}
	if _, err := p.expect(COLON, "expected ':'"); err != nil {
		return ObjectField{}, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return ObjectField{}, err
	}
	return ObjectField{Key: keyTok.Literal, Value: value, Pos: keyTok.Pos}, nil
}

func (p *parser) parseArrayLiteral() (*ArrayLiteral, error) {
	bracketTok := p.advance()

	var elements []Expr
	if !p.check(RBRACKET) {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)

		for p.match(COMMA) {
			if p.check(RBRACKET) { // trailing comma
				break
			}
			elem, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
	}

	if _, err := p.expect(RBRACKET, "expected ']'"); err != nil {
		return nil, err
	}
	return &ArrayLiteral{Elements: elements, pos: bracketTok.Pos}, nil
}

// Behavior bodies are not interpreted yet; the parser records the name and
// skips a balanced-brace body.
func (p *parser) parseBehaviorDeclaration() (*BehaviorDeclaration, error) {
	behaviorTok := p.advance()
	nameTok, err := p.expect(IDENT, "expected behavior name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	p.skipBalancedBraces()
	return &BehaviorDeclaration{Name: nameTok.Literal, pos: behaviorTok.Pos}, nil
}

func (p *parser) parseResourceDeclaration() (*ResourceDeclaration, error) {
	resourceTok := p.advance()
	nameTok, err := p.expect(IDENT, "expected resource name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	p.skipBalancedBraces()
	return &ResourceDeclaration{Name: nameTok.Literal, pos: resourceTok.Pos}, nil
}

// skipBalancedBraces consumes tokens through the brace matching an already
// consumed '{'. The depth counter is local, so an unterminated body cannot
// leak into the next top-level statement.
func (p *parser) skipBalancedBraces() {
	depth := 1
	for depth > 0 && !p.isAtEnd() {
		switch p.peek().Type {
		case LBRACE:
			depth++
		case RBRACE:
			depth--
		}
		p.advance()
	}
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *parser) previous() Token {
	if p.pos == 0 {
		return Token{}
	}
	return p.tokens[p.pos-1]
}

func (p *parser) advance() Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(t TokenType, msg string) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return Token{}, &ParseError{Message: msg, Token: p.peek()}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Token: p.peek()}
}

func (p *parser) skipNewlines() {
	for p.match(NEWLINE) {
	}
}

func (p *parser) isAtEnd() bool {
	return p.peek().Type == EOF
}
