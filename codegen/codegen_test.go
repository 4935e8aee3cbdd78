package codegen

import (
	"strings"
	"testing"

	"agentscript/lang"
)

func compile(t *testing.T, source, sourceName string) string {
	t.Helper()
	prog, err := lang.Parse(source, sourceName)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return Generate(prog, sourceName)
}

func mustContainInOrder(t *testing.T, output string, wants ...string) {
	t.Helper()
	pos := 0
	for _, want := range wants {
		idx := strings.Index(output[pos:], want)
		if idx < 0 {
			t.Fatalf("output missing %q after offset %d:\n%s", want, pos, output)
		}
		pos += idx + len(want)
	}
}

const roundTripSource = `
use io.csv, io.json

intent ProcessUsers {
    description: "Keep adult users"
    pipeline: source.csv("a.csv") ->
        filter(x => x.age >= 18) ->
        sink.json("b.json")
}
`

func TestGenerateRoundTrip(t *testing.T) {
	output := compile(t, roundTripSource, "a.ags")

	// Load, filter condition with the lambda parameter stripped, then the
	// terminal write, in pipeline order.
	mustContainInOrder(t, output,
		`df = pd.read_csv("a.csv")`,
		`df = df.query('age >= 18')`,
		`df.to_json("b.json", orient='records', indent=2)`,
	)

	if !strings.Contains(output, "class Processusers:") {
		t.Errorf("missing class declaration:\n%s", output)
	}
	if !strings.Contains(output, "def process_users(self, input_file: str = None, output_file: str = None):") {
		t.Errorf("missing pipeline method:\n%s", output)
	}
	if !strings.Contains(output, `"""Keep adult users"""`) {
		t.Errorf("missing docstring:\n%s", output)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	prog, err := lang.Parse(roundTripSource, "a.ags")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	first := Generate(prog, "a.ags")
	second := Generate(prog, "a.ags")
	if first != second {
		t.Errorf("repeated generation differs:\n%s\n----\n%s", first, second)
	}
}

func TestImportMapping(t *testing.T) {
	output := compile(t, "use io.csv, io.json\nuse validation.email\n\nintent F { pipeline: source.csv(\"x\") }", "f.ags")

	// Imports are sorted, so the header order is fixed.
	mustContainInOrder(t, output,
		"import csv",
		"import json",
		"import pandas as pd",
		"import re",
		"class F:",
	)
	if !strings.HasPrefix(output, "import csv\n") {
		t.Errorf("imports not at the top:\n%s", output)
	}
}

func TestEmailPatternOnlyWithValidationImport(t *testing.T) {
	withRe := compile(t, "use validation.email\n\nintent F { pipeline: load(\"x\") }", "f.ags")
	if !strings.Contains(withRe, "self.email_pattern = re.compile(") {
		t.Errorf("email pattern missing with validation import:\n%s", withRe)
	}

	without := compile(t, "intent F { pipeline: load(\"x\") }", "f.ags")
	if strings.Contains(without, "self.email_pattern = re.compile(") {
		t.Errorf("email pattern emitted without validation import:\n%s", without)
	}
	// The helper itself is a fixed part of every unit.
	if !strings.Contains(without, "def is_valid_email(self, email: str) -> bool:") {
		t.Errorf("is_valid_email helper missing:\n%s", without)
	}
}

func TestNameDerivation(t *testing.T) {
	output := compile(t, "intent ProcessUserData { pipeline: load(\"x\") }", "f.ags")
	if !strings.Contains(output, "class Processuserdata:") {
		t.Errorf("class name:\n%s", output)
	}
	if !strings.Contains(output, "def process_user_data(self") {
		t.Errorf("method name:\n%s", output)
	}

	output = compile(t, "intent clean_data { pipeline: load(\"x\") }", "f.ags")
	if !strings.Contains(output, "class CleanData:") {
		t.Errorf("underscored class name:\n%s", output)
	}
	if !strings.Contains(output, "def clean_data(self") {
		t.Errorf("underscored method name:\n%s", output)
	}
}

func TestStageClassification(t *testing.T) {
	source := `
intent Mixed {
    pipeline: source.csv("in.csv") ->
        apply_tax(r => r.total * 1.2) ->
        normalize(limits) ->
        sink.csv("out.csv")
}
`
	output := compile(t, source, "m.ags")
	mustContainInOrder(t, output,
		`df = pd.read_csv("in.csv")`,
		`df = df.apply_tax(lambda r: r.total * 1.2)`,
		`df = df.pipe(lambda x: normalize(limits))`,
		`df.to_csv("out.csv", index=False)`,
	)
}

func TestErrorBoundary(t *testing.T) {
	output := compile(t, roundTripSource, "a.ags")
	mustContainInOrder(t, output,
		"        try:",
		"            return df",
		"        except Exception as e:",
		"                'error': str(e),",
		"                'error_type': type(e).__name__,",
		"                'method': 'process_users',",
		"                'source_file': 'a.ags',",
		"            self.validation_errors.append(error_info)",
		"            raise",
	)
}

func TestUnknownSourceName(t *testing.T) {
	prog, err := lang.Parse("intent F { pipeline: load(\"x\") }", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	output := Generate(prog, "")
	if !strings.Contains(output, "'source_file': '<unknown>',") {
		t.Errorf("missing unknown source marker:\n%s", output)
	}
}

func TestLiteralRendering(t *testing.T) {
	source := `intent F { pipeline: tag({ active: true, label: "say \"hi\"", limit: 3.5, tags: ["a", 2] }) }`
	output := compile(t, source, "f.ags")
	if !strings.Contains(output, `{'active': True, 'label': "say \"hi\"", 'limit': 3.5, 'tags': ["a", 2]}`) {
		t.Errorf("literal rendering:\n%s", output)
	}
}

func TestIntentsWithoutPipeline(t *testing.T) {
	output := compile(t, `intent Empty { description: "nothing yet" }`, "f.ags")
	if !strings.Contains(output, "class Empty:") {
		t.Errorf("missing class:\n%s", output)
	}
	if strings.Contains(output, "def empty(") {
		t.Errorf("pipeline method emitted without a pipeline:\n%s", output)
	}
}

func TestBehaviorAndResourceEmitNothing(t *testing.T) {
	output := compile(t, `
behavior Check { rules { } }
resource Db { }
intent F { pipeline: load("x") }
`, "f.ags")
	if strings.Contains(output, "Check") || strings.Contains(output, "Db") {
		t.Errorf("placeholder declarations leaked into output:\n%s", output)
	}
}

func TestGeneratedUnitOrderFollowsSource(t *testing.T) {
	output := compile(t, `
intent Second { pipeline: load("b") }
intent First { pipeline: load("a") }
`, "f.ags")
	mustContainInOrder(t, output, "class Second:", "class First:")
}
