package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentscript/codegen"
	"agentscript/lang"
	"agentscript/report"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "compile":
		runCompile(os.Args[2:])
	case "version":
		fmt.Println("agentscript compiler v0.1.0")
	default:
		usage()
	}
}

func runCompile(args []string) {
	var outPath string
	var checkOnly bool
	var inputs []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			usage()
			return
		case arg == "--check":
			checkOnly = true
		case arg == "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "-o flag requires a path")
				os.Exit(1)
			}
			outPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "-o="):
			outPath = strings.TrimPrefix(arg, "-o=")
		default:
			inputs = append(inputs, arg)
		}
	}

	if len(inputs) < 1 {
		fmt.Fprintln(os.Stderr, "compile requires an .ags input file")
		os.Exit(1)
	}
	if len(inputs) > 1 && outPath != "" {
		fmt.Fprintln(os.Stderr, "-o is only valid with a single input file")
		os.Exit(1)
	}

	exitCode := 0
	for _, inPath := range inputs {
		if filepath.Ext(inPath) != ".ags" {
			fmt.Fprintf(os.Stderr, "warning: %s does not have the .ags extension\n", inPath)
		}
		if err := compileFile(inPath, outPath, checkOnly); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func compileFile(inPath, outPath string, checkOnly bool) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	source := string(data)

	prog, err := lang.Parse(source, inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, report.Render(err, source))
		return fmt.Errorf("failed to compile %s", inPath)
	}

	if checkOnly {
		fmt.Printf("%s: syntax OK\n", inPath)
		return nil
	}

	code := codegen.Generate(prog, inPath)
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".py"
	}
	if err := os.WriteFile(outPath, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  agentscript compile <file.ags>... [-o out.py] [--check]")
	fmt.Println("  agentscript version")
}
