package lang

type TokenType int

const (
	EOF TokenType = iota
	NEWLINE
	COMMENT

	IDENT
	STRING
	INT
	FLOAT
	BOOL

	INTENT
	BEHAVIOR
	USE
	RESOURCE
	PIPELINE
	DESCRIPTION
	EXPECTS
	RETURNS
	VALIDATE
	TRANSFORM
	ON_ERROR
	AND
	OR
	NOT
	IN
	MATCHES
	CONTAINS
	BETWEEN
	IS

	ARROW
	LAMBDA_ARROW
	COLON
	COMMA
	DOT

	EQEQ
	BANGEQ
	LT
	LTEQ
	GT
	GTEQ

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
)

// Token is one lexical unit of an AgentScript source file. Tokens are built
// once by the lexer and never mutated afterwards.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

var keywords = map[string]TokenType{
	"intent":      INTENT,
	"behavior":    BEHAVIOR,
	"use":         USE,
	"resource":    RESOURCE,
	"pipeline":    PIPELINE,
	"description": DESCRIPTION,
	"expects":     EXPECTS,
	"returns":     RETURNS,
	"validate":    VALIDATE,
	"transform":   TRANSFORM,
	"on_error":    ON_ERROR,
	"and":         AND,
	"or":          OR,
	"not":         NOT,
	"in":          IN,
	"matches":     MATCHES,
	"contains":    CONTAINS,
	"between":     BETWEEN,
	"is":          IS,
}

func lookupIdent(ident string) TokenType {
	// true/false lex as boolean literals, not keywords.
	if ident == "true" || ident == "false" {
		return BOOL
	}
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

var tokenNames = map[TokenType]string{
	EOF:          "EOF",
	NEWLINE:      "NEWLINE",
	COMMENT:      "COMMENT",
	IDENT:        "IDENT",
	STRING:       "STRING",
	INT:          "INT",
	FLOAT:        "FLOAT",
	BOOL:         "BOOL",
	INTENT:       "intent",
	BEHAVIOR:     "behavior",
	USE:          "use",
	RESOURCE:     "resource",
	PIPELINE:     "pipeline",
	DESCRIPTION:  "description",
	EXPECTS:      "expects",
	RETURNS:      "returns",
	VALIDATE:     "validate",
	TRANSFORM:    "transform",
	ON_ERROR:     "on_error",
	AND:          "and",
	OR:           "or",
	NOT:          "not",
	IN:           "in",
	MATCHES:      "matches",
	CONTAINS:     "contains",
	BETWEEN:      "between",
	IS:           "is",
	ARROW:        "->",
	LAMBDA_ARROW: "=>",
	COLON:        ":",
	COMMA:        ",",
	DOT:          ".",
	EQEQ:         "==",
	BANGEQ:       "!=",
	LT:           "<",
	LTEQ:         "<=",
	GT:           ">",
	GTEQ:         ">=",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	LPAREN:       "(",
	RPAREN:       ")",
	LBRACE:       "{",
	RBRACE:       "}",
	LBRACKET:     "[",
	RBRACKET:     "]",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}
