package report

import (
	"errors"
	"strings"
	"testing"

	"agentscript/lang"
)

func renderFailure(t *testing.T, source, filename string) string {
	t.Helper()
	_, err := lang.Parse(source, filename)
	if err == nil {
		t.Fatalf("Parse succeeded, expected an error")
	}
	return Render(err, source)
}

func TestRenderParseError(t *testing.T) {
	source := "def foo():"
	out := renderFailure(t, source, "test.ags")

	for _, want := range []string{
		"parse error at test.ags:1:1",
		"unexpected token: def",
		" ->   1 | def foo():",
		"        | ^",
		"AgentScript uses 'intent' to define processing logic",
		"fix: intent",
		"common pattern: intent Name { pipeline: source -> filter -> sink }",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderUnterminatedString(t *testing.T) {
	source := "intent Foo {\n    description: \"oops\n}"
	out := renderFailure(t, source, "test.ags")

	if !strings.Contains(out, "lex error at test.ags:2:18") {
		t.Errorf("wrong position:\n%s", out)
	}
	if !strings.Contains(out, "unterminated string literal") {
		t.Errorf("missing message:\n%s", out)
	}
	// The caret points at the opening quote.
	if !strings.Contains(out, "        | "+strings.Repeat(" ", 17)+"^") {
		t.Errorf("caret misplaced:\n%s", out)
	}
	if !strings.Contains(out, "add a closing quote to complete the string literal") {
		t.Errorf("missing suggestion:\n%s", out)
	}
}

func TestRenderEqualsSuggestion(t *testing.T) {
	out := renderFailure(t, "intent F { x = 1 }", "f.ags")

	if !strings.Contains(out, "AgentScript uses ':' for assignment, not '='") {
		t.Errorf("missing suggestion:\n%s", out)
	}
	if !strings.Contains(out, "fix: :") {
		t.Errorf("missing fix line:\n%s", out)
	}
}

func TestRenderKeywordRewrites(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"import os", "AgentScript uses 'use' instead of 'import'"},
		{"class Foo {}", "AgentScript uses 'behavior' to define reusable components"},
		{"function f() {}", "AgentScript uses 'intent' to define processing logic"},
	}
	for _, tt := range tests {
		out := renderFailure(t, tt.source, "f.ags")
		if !strings.Contains(out, tt.want) {
			t.Errorf("source %q: report missing %q:\n%s", tt.source, tt.want, out)
		}
	}
}

func TestRenderContextWindow(t *testing.T) {
	source := strings.Join([]string{
		"use io.csv",
		"",
		"intent A {",
		`    pipeline: load("x")`,
		"}",
		"def oops",
	}, "\n")
	out := renderFailure(t, source, "f.ags")

	// Two lines either side of the failure, capped at the file bounds.
	for _, want := range []string{
		"      4 |     pipeline: load(\"x\")",
		"      5 | }",
		" ->   6 | def oops",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "  1 | use io.csv") {
		t.Errorf("context window too wide:\n%s", out)
	}
}

func TestRenderMissingBrace(t *testing.T) {
	out := renderFailure(t, "intent Foo", "f.ags")
	if !strings.Contains(out, "add an opening brace '{' to start the block") {
		t.Errorf("missing suggestion:\n%s", out)
	}
}

func TestRenderPlainError(t *testing.T) {
	got := Render(errors.New("boom"), "")
	if got != "error: boom" {
		t.Errorf("Render = %q, want %q", got, "error: boom")
	}
}
