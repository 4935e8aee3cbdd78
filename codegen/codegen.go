package codegen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"agentscript/lang"
)

// Generate renders the parsed program as Python source built on pandas. Each
// intent becomes one class with a pipeline method; accumulated imports are
// emitted first, sorted, so repeated runs over the same program produce
// byte-identical output. State lives in a fresh generator per call, making
// concurrent generation of independent programs safe.
func Generate(prog *lang.Program, sourceName string) string {
	g := &generator{
		imports: map[string]struct{}{},
		source:  sourceName,
	}
	return g.run(prog)
}

type generator struct {
	imports map[string]struct{}
	units   []string
	source  string
}

func (g *generator) run(prog *lang.Program) string {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *lang.ImportStatement:
			g.collectImports(s)
		case *lang.IntentDeclaration:
			g.emitIntent(s)
		}
		// Behavior and resource declarations have no generated form yet.
	}

	var out []string
	if len(g.imports) > 0 {
		names := make([]string, 0, len(g.imports))
		for name := range g.imports {
			names = append(names, name)
		}
		sort.Strings(names)
		out = append(out, names...)
		out = append(out, "")
	}
	out = append(out, g.units...)
	return strings.Join(out, "\n")
}

// collectImports maps 'use' modules onto the Python imports the generated
// code needs.
func (g *generator) collectImports(s *lang.ImportStatement) {
	for _, module := range s.Modules {
		switch {
		case strings.HasPrefix(module, "io."):
			if strings.Contains(module, "csv") {
				g.imports["import pandas as pd"] = struct{}{}
				g.imports["import csv"] = struct{}{}
			}
			if strings.Contains(module, "json") {
				g.imports["import json"] = struct{}{}
			}
		case strings.HasPrefix(module, "validation."):
			g.imports["import re"] = struct{}{}
		case strings.HasPrefix(module, "transformation."):
			// Built-in transformations need no import.
		}
	}
}

func (g *generator) emitIntent(intent *lang.IntentDeclaration) {
	_, needRe := g.imports["import re"]

	var lines []string
	lines = append(lines, fmt.Sprintf("class %s:", toClassName(intent.Name)))
	if intent.Description != "" {
		lines = append(lines, `    """`+intent.Description+`"""`, "")
	}

	lines = append(lines, "    def __init__(self):")
	lines = append(lines, "        self.validation_errors = []")
	if needRe {
		lines = append(lines, `        self.email_pattern = re.compile(r'^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$')`)
	}
	lines = append(lines, "")

	if intent.Pipeline != nil {
		lines = append(lines, g.pipelineMethod(intent)...)
		lines = append(lines, "")
	}

	lines = append(lines, helperMethods()...)

	g.units = append(g.units, lines...)
	g.units = append(g.units, "")
}

// pipelineMethod turns the intent's stage chain into one sequential method.
// Stage 0 loads the initial value; later stages are classified by their
// rendered text and emitted as a filter, a chained transform, a terminal
// write, or a generic pipe so no stage is silently dropped.
func (g *generator) pipelineMethod(intent *lang.IntentDeclaration) []string {
	methodName := toMethodName(intent.Name)

	lines := []string{
		fmt.Sprintf("    def %s(self, input_file: str = None, output_file: str = None):", methodName),
	}
	if intent.Description != "" {
		lines = append(lines, `        """`+intent.Description+`"""`, "")
	}
	lines = append(lines,
		"        # Process data through pipeline",
		"        try:",
		"            # Load data",
	)

	for i, stage := range intent.Pipeline.Stages {
		code := g.expr(stage.Operation)
		if i == 0 {
			lines = append(lines, "            df = "+code)
			continue
		}
		switch {
		case strings.Contains(code, "filter") || strings.Contains(code, "query"):
			if cond, ok := g.filterCondition(stage.Operation); ok {
				lines = append(lines, fmt.Sprintf("            df = df.query('%s')", cond))
			}
		case strings.Contains(code, "apply") || strings.Contains(code, "transform"):
			lines = append(lines, "            df = df."+code)
		case strings.Contains(code, "to_csv") || strings.Contains(code, "to_json"):
			// Terminal output stage, side effect only.
			lines = append(lines, "            df."+code)
		default:
			lines = append(lines, fmt.Sprintf("            df = df.pipe(lambda x: %s)", code))
		}
	}

	sourceFile := g.source
	if sourceFile == "" {
		sourceFile = "<unknown>"
	}
	lines = append(lines,
		"",
		"            return df",
		"        except Exception as e:",
		"            error_info = {",
		"                'error': str(e),",
		"                'error_type': type(e).__name__,",
		fmt.Sprintf("                'method': '%s',", methodName),
		fmt.Sprintf("                'source_file': '%s',", sourceFile),
		"            }",
		"            self.validation_errors.append(error_info)",
		"            raise",
	)
	return lines
}

// filterCondition rewrites a filter stage's lambda body into a pandas query
// condition by dropping the lambda parameter prefix from attribute
// references: 'user => user.age >= 18' becomes 'age >= 18'.
func (g *generator) filterCondition(op lang.Expr) (string, bool) {
	call, ok := op.(*lang.FunctionCall)
	if !ok || len(call.Arguments) == 0 {
		return "", false
	}
	lambda, ok := call.Arguments[0].(*lang.LambdaExpression)
	if !ok {
		return "", false
	}
	cond := g.expr(lambda.Body)
	return strings.ReplaceAll(cond, lambda.Parameter+".", ""), true
}

func helperMethods() []string {
	return []string{
		"    def is_valid_email(self, email: str) -> bool:",
		`        """Validate email format using regex pattern."""`,
		"        if not email:",
		"            return False",
		"        return bool(self.email_pattern.match(email))",
	}
}

// expr maps one AST expression to Python text, bottom-up.
func (g *generator) expr(e lang.Expr) string {
	switch e := e.(type) {
	case *lang.Identifier:
		// The DSL's data-manipulation verbs map to their pandas names.
		switch e.Name {
		case "filter":
			return "query"
		case "transform":
			return "apply"
		}
		return e.Name
	case *lang.Literal:
		return pyLiteral(e)
	case *lang.AttributeAccess:
		return g.expr(e.Object) + "." + e.Attribute
	case *lang.FunctionCall:
		return g.call(e)
	case *lang.LambdaExpression:
		return fmt.Sprintf("lambda %s: %s", e.Parameter, g.expr(e.Body))
	case *lang.BinaryOperation:
		// The DSL operator set mirrors Python's, so operators pass through.
		return fmt.Sprintf("%s %s %s", g.expr(e.Left), e.Operator, g.expr(e.Right))
	case *lang.UnaryOperation:
		return fmt.Sprintf("%s %s", e.Operator, g.expr(e.Operand))
	case *lang.ObjectLiteral:
		fields := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, fmt.Sprintf("'%s': %s", f.Key, g.expr(f.Value)))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	case *lang.ArrayLiteral:
		elements := make([]string, 0, len(e.Elements))
		for _, elem := range e.Elements {
			elements = append(elements, g.expr(elem))
		}
		return "[" + strings.Join(elements, ", ") + "]"
	default:
		return "None"
	}
}

// call renders a function call, translating the recognized source/sink forms
// into pandas read/write idioms.
func (g *generator) call(call *lang.FunctionCall) string {
	if attr, ok := call.Function.(*lang.AttributeAccess); ok {
		if obj, ok := attr.Object.(*lang.Identifier); ok {
			arg := `""`
			if len(call.Arguments) > 0 {
				arg = g.expr(call.Arguments[0])
			}
			switch {
			case obj.Name == "source" && attr.Attribute == "csv":
				return fmt.Sprintf("pd.read_csv(%s)", arg)
			case obj.Name == "sink" && attr.Attribute == "csv":
				return fmt.Sprintf("to_csv(%s, index=False)", arg)
			case obj.Name == "source" && attr.Attribute == "json":
				return fmt.Sprintf("pd.read_json(%s)", arg)
			case obj.Name == "sink" && attr.Attribute == "json":
				return fmt.Sprintf("to_json(%s, orient='records', indent=2)", arg)
			}
		}
	}

	args := make([]string, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		args = append(args, g.expr(a))
	}
	return fmt.Sprintf("%s(%s)", g.expr(call.Function), strings.Join(args, ", "))
}

func pyLiteral(e *lang.Literal) string {
	switch e.Kind {
	case lang.StringLit:
		return `"` + strings.ReplaceAll(e.Value, `"`, `\"`) + `"`
	case lang.BoolLit:
		if e.Value == "true" {
			return "True"
		}
		return "False"
	default:
		return e.Value
	}
}

// toClassName strips underscores and capitalizes each word. Capitalization
// lowercases the rest of the word, so ProcessUserData derives
// Processuserdata; collisions between intents that normalize to the same
// name are not checked, the later class shadows the earlier.
func toClassName(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, "_") {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(word)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}

var (
	snakeBoundary = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeTrailing = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// toMethodName converts CamelCase to snake_case at case-transition
// boundaries: ProcessUserData derives process_user_data.
func toMethodName(name string) string {
	s := snakeBoundary.ReplaceAllString(name, "${1}_${2}")
	s = snakeTrailing.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
