package lang

import "fmt"

// Position tracks a 1-based line and column inside a named source file.
type Position struct {
	Line   int
	Column int
	File   string
}

func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Column)
}

// Program is the root node for an .ags file.
type Program struct {
	Statements []Stmt
	pos        Position
}

func (p *Program) Pos() Position { return p.pos }

type Stmt interface {
	stmtNode()
	Pos() Position
}

type Expr interface {
	exprNode()
	Pos() Position
}

// ImportStatement holds the dotted module names of one 'use' line.
type ImportStatement struct {
	Modules []string
	pos     Position
}

func (s *ImportStatement) stmtNode()     {}
func (s *ImportStatement) Pos() Position { return s.pos }

// IntentDeclaration is the main AgentScript construct: a named processing
// goal with an optional description, pipeline, and error strategy.
type IntentDeclaration struct {
	Name          string
	Description   string
	Pipeline      *PipelineExpression
	ErrorHandling *ErrorHandling
	pos           Position
}

func (s *IntentDeclaration) stmtNode()     {}
func (s *IntentDeclaration) Pos() Position { return s.pos }

type ErrorHandling struct {
	Strategy string
}

// BehaviorDeclaration is parsed as a named balanced-brace placeholder; its
// body is not interpreted yet.
type BehaviorDeclaration struct {
	Name  string
	Rules []*ValidationRule
	pos   Position
}

func (s *BehaviorDeclaration) stmtNode()     {}
func (s *BehaviorDeclaration) Pos() Position { return s.pos }

// ResourceDeclaration is parsed as a named balanced-brace placeholder.
type ResourceDeclaration struct {
	Name string
	pos  Position
}

func (s *ResourceDeclaration) stmtNode()     {}
func (s *ResourceDeclaration) Pos() Position { return s.pos }

type ValidationRule struct {
	Condition Expr
	Message   string
	pos       Position
}

func (r *ValidationRule) Pos() Position { return r.pos }

// PipelineExpression is an ordered chain of stages connected by '->'.
type PipelineExpression struct {
	Stages []*PipelineStage
	pos    Position
}

func (e *PipelineExpression) exprNode()     {}
func (e *PipelineExpression) Pos() Position { return e.pos }

type PipelineStage struct {
	Operation Expr
	pos       Position
}

func (s *PipelineStage) Pos() Position { return s.pos }

type Identifier struct {
	Name string
	pos  Position
}

func (e *Identifier) exprNode()     {}
func (e *Identifier) Pos() Position { return e.pos }

type LiteralKind int

const (
	StringLit LiteralKind = iota
	IntLit
	FloatLit
	BoolLit
)

// Literal keeps the raw literal text; numeric values re-render from it
// unchanged, strings hold their unescaped form.
type Literal struct {
	Kind  LiteralKind
	Value string
	pos   Position
}

func (e *Literal) exprNode()     {}
func (e *Literal) Pos() Position { return e.pos }

type FunctionCall struct {
	Function  Expr
	Arguments []Expr
	pos       Position
}

func (e *FunctionCall) exprNode()     {}
func (e *FunctionCall) Pos() Position { return e.pos }

// LambdaExpression is a single-parameter, single-expression-body function
// literal like 'user => user.age > 18'.
type LambdaExpression struct {
	Parameter string
	Body      Expr
	pos       Position
}

func (e *LambdaExpression) exprNode()     {}
func (e *LambdaExpression) Pos() Position { return e.pos }

type BinaryOperation struct {
	Left     Expr
	Operator string
	Right    Expr
	pos      Position
}

func (e *BinaryOperation) exprNode()     {}
func (e *BinaryOperation) Pos() Position { return e.pos }

type UnaryOperation struct {
	Operator string
	Operand  Expr
	pos      Position
}

func (e *UnaryOperation) exprNode()     {}
func (e *UnaryOperation) Pos() Position { return e.pos }

type AttributeAccess struct {
	Object    Expr
	Attribute string
	pos       Position
}

func (e *AttributeAccess) exprNode()     {}
func (e *AttributeAccess) Pos() Position { return e.pos }

// ObjectLiteral keeps its fields as an ordered slice so generated output is
// deterministic.
type ObjectLiteral struct {
	Fields []ObjectField
	pos    Position
}

type ObjectField struct {
	Key   string
	Value Expr
	Pos   Position
}

func (e *ObjectLiteral) exprNode()     {}
func (e *ObjectLiteral) Pos() Position { return e.pos }

type ArrayLiteral struct {
	Elements []Expr
	pos      Position
}

func (e *ArrayLiteral) exprNode()     {}
func (e *ArrayLiteral) Pos() Position { return e.pos }
