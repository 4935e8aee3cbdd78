package report

import (
	"fmt"
	"strings"

	"agentscript/lang"
)

// Render formats a compile error as a multi-line report with the source
// context around the failure and suggestions for fixing it. Errors other
// than lex and parse errors render as a single line. The function only
// depends on the message and position carried by the error shapes, so any
// caller holding a *lang.LexError or *lang.ParseError can use it.
func Render(err error, source string) string {
	switch e := err.(type) {
	case *lang.LexError:
		return render("lex error", e.Message, e.Pos, lexSuggestions(e), source)
	case *lang.ParseError:
		return render("parse error", e.Message, e.Token.Pos, parseSuggestions(e), source)
	default:
		return fmt.Sprintf("error: %v", err)
	}
}

type suggestion struct {
	Message string
	Fix     string
}

func render(kind, message string, pos lang.Position, suggestions []suggestion, source string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s at %s\n", kind, pos)
	fmt.Fprintf(&b, "  %s\n", message)

	lines := strings.Split(source, "\n")
	if pos.Line >= 1 && pos.Line <= len(lines) {
		b.WriteString("\nsource context:\n")
		start := pos.Line - 2
		if start < 1 {
			start = 1
		}
		end := pos.Line + 2
		if end > len(lines) {
			end = len(lines)
		}
		for n := start; n <= end; n++ {
			if n == pos.Line {
				fmt.Fprintf(&b, " -> %3d | %s\n", n, lines[n-1])
				col := pos.Column - 1
				if col < 0 {
					col = 0
				}
				fmt.Fprintf(&b, "        | %s^\n", strings.Repeat(" ", col))
			} else {
				fmt.Fprintf(&b, "    %3d | %s\n", n, lines[n-1])
			}
		}
	}

	if len(suggestions) > 0 {
		b.WriteString("\nsuggestions:\n")
		for i, s := range suggestions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s.Message)
			if s.Fix != "" {
				fmt.Fprintf(&b, "     fix: %s\n", s.Fix)
			}
		}
	}

	b.WriteString("\ncommon pattern: intent Name { pipeline: source -> filter -> sink }\n")
	return b.String()
}

func lexSuggestions(e *lang.LexError) []suggestion {
	var out []suggestion
	switch {
	case strings.Contains(e.Message, "unexpected character"):
		char := offendingChar(e.Message)
		if char == "{" {
			out = append(out, suggestion{
				Message: "did you forget to close a string with quotes before this brace?",
				Fix:     `add the missing quote (") before {`,
			})
		} else if char == "=" {
			out = append(out, suggestion{
				Message: "AgentScript uses ':' for assignment, not '='",
				Fix:     ":",
			})
		} else if char != "" && strings.Contains("!@#$^&", char) {
			out = append(out, suggestion{
				Message: fmt.Sprintf("character %q is not valid in AgentScript; identifiers use letters, digits, and underscores", char),
			})
		}
	case strings.Contains(e.Message, "unterminated string"):
		out = append(out, suggestion{
			Message: "add a closing quote to complete the string literal",
			Fix:     `add closing quote (")`,
		})
	}
	return out
}

func parseSuggestions(e *lang.ParseError) []suggestion {
	var out []suggestion
	switch {
	case strings.HasPrefix(e.Message, "expected"):
		switch {
		case strings.Contains(e.Message, "name") || strings.Contains(e.Message, "identifier"):
			out = append(out, suggestion{
				Message: "use a valid identifier: letters, digits, and underscores, starting with a letter or underscore",
			})
		case strings.Contains(e.Message, "'{'"):
			out = append(out, suggestion{Message: "add an opening brace '{' to start the block"})
		case strings.Contains(e.Message, "'}'"):
			out = append(out, suggestion{Message: "add a closing brace '}' to end the block"})
		}
	case strings.HasPrefix(e.Message, "unexpected token"):
		// Habits carried over from other languages get a direct rewrite.
		switch e.Token.Literal {
		case "def", "function":
			out = append(out, suggestion{
				Message: "AgentScript uses 'intent' to define processing logic",
				Fix:     "intent",
			})
		case "import":
			out = append(out, suggestion{
				Message: "AgentScript uses 'use' instead of 'import'",
				Fix:     "use",
			})
		case "class":
			out = append(out, suggestion{
				Message: "AgentScript uses 'behavior' to define reusable components",
				Fix:     "behavior",
			})
		}
	}
	return out
}

// offendingChar pulls the quoted character out of an unexpected-character
// message.
func offendingChar(message string) string {
	start := strings.Index(message, "'")
	end := strings.LastIndex(message, "'")
	if start < 0 || end <= start+1 {
		return ""
	}
	return message[start+1 : end]
}
