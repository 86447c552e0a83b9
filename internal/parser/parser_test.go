package parser

import (
	"testing"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/source"
)

func TestParseSimpleCommand(t *testing.T) {
	script, _, diags := Parse(source.New("x.sh", "echo hello world\n"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(script.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(script.Items))
	}
	cmd, ok := script.Items[0].(*ast.Command)
	if !ok {
		t.Fatalf("expected *ast.Command, got %T", script.Items[0])
	}
	if cmd.Name.Raw() != "echo" {
		t.Errorf("Name = %q, want %q", cmd.Name.Raw(), "echo")
	}
	if len(cmd.Args) != 2 || cmd.Args[0].Raw() != "hello" || cmd.Args[1].Raw() != "world" {
		t.Errorf("Args = %v, want [hello world]", cmd.Args)
	}
}

func TestParsePipeline(t *testing.T) {
	script, _, diags := Parse(source.New("x.sh", "cat file.txt | grep foo | wc -l\n"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	pl, ok := script.Items[0].(*ast.Pipeline)
	if !ok {
		t.Fatalf("expected *ast.Pipeline, got %T", script.Items[0])
	}
	if len(pl.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(pl.Stages))
	}
}

func TestParseIfStatement(t *testing.T) {
	src := "if true; then\n  echo yes\nelse\n  echo no\nfi\n"
	script, _, diags := Parse(source.New("x.sh", src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	ifItem, ok := script.Items[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", script.Items[0])
	}
	if len(ifItem.Then) != 1 || len(ifItem.Else) != 1 {
		t.Errorf("Then/Else lengths = %d/%d, want 1/1", len(ifItem.Then), len(ifItem.Else))
	}
}

func TestParseForLoop(t *testing.T) {
	src := "for f in a b c; do\n  echo $f\ndone\n"
	script, _, diags := Parse(source.New("x.sh", src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	forItem, ok := script.Items[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", script.Items[0])
	}
	if forItem.Var != "f" {
		t.Errorf("Var = %q, want %q", forItem.Var, "f")
	}
	if len(forItem.Words) != 3 {
		t.Errorf("Words = %v, want 3 entries", forItem.Words)
	}
}

func TestParseFunction(t *testing.T) {
	src := "greet() {\n  echo hi\n}\n"
	script, _, diags := Parse(source.New("x.sh", src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn, ok := script.Items[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", script.Items[0])
	}
	if fn.Name != "greet" {
		t.Errorf("Name = %q, want %q", fn.Name, "greet")
	}
	if fn.RsrvWord {
		t.Error("expected RsrvWord false for name() {} form")
	}
}

func TestParseNeverPanicsOnMalformedInput(t *testing.T) {
	inputs := []string{
		"if true; then",
		"for i in",
		"echo \"unterminated",
		"((((((",
		"",
		"\n\n\n",
		"fi fi fi esac done",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse panicked on %q: %v", in, r)
				}
			}()
			Parse(source.New("x.sh", in))
		}()
	}
}

func TestParseShebangItem(t *testing.T) {
	script, _, _ := Parse(source.New("x.sh", "#!/bin/bash\necho hi\n"))
	if len(script.Items) == 0 {
		t.Fatal("expected at least one item")
	}
	sb, ok := script.Items[0].(*ast.ShebangItem)
	if !ok {
		t.Fatalf("expected *ast.ShebangItem first, got %T", script.Items[0])
	}
	if sb.Interpreter != "/bin/bash" {
		t.Errorf("Interpreter = %q, want %q", sb.Interpreter, "/bin/bash")
	}
}
