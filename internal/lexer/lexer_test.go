package lexer

import (
	"testing"

	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexShebangAndWords(t *testing.T) {
	src := source.New("x.sh", "#!/bin/sh\necho hello\n")
	toks, diags := Lex(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(toks) == 0 || toks[0].Kind != token.Shebang {
		t.Fatalf("expected first token to be Shebang, got %v", toks)
	}
	foundEcho := false
	for _, tok := range toks {
		if tok.Kind == token.Word && tok.Lexeme == "echo" {
			foundEcho = true
		}
	}
	if !foundEcho {
		t.Errorf("expected an 'echo' word token, got %v", toks)
	}
}

func TestLexSingleQuotedString(t *testing.T) {
	src := source.New("x.sh", `echo 'hello world'`+"\n")
	toks, diags := Lex(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == token.String && tok.StringKind == token.SingleQuoted {
			found = true
			if tok.Lexeme != "hello world" {
				t.Errorf("lexeme = %q, want %q", tok.Lexeme, "hello world")
			}
		}
	}
	if !found {
		t.Error("expected a single-quoted string token")
	}
}

func TestLexUnterminatedDoubleQuoteProducesDiagnostic(t *testing.T) {
	src := source.New("x.sh", `echo "unterminated`)
	_, diags := Lex(src)
	if len(diags) == 0 {
		t.Error("expected a diagnostic for an unterminated double-quoted string")
	}
}

func TestLexEndsWithEOF(t *testing.T) {
	src := source.New("x.sh", "echo hi\n")
	toks, _ := Lex(src)
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Errorf("expected final token to be EOF, got %v", kinds(toks))
	}
}

func TestAssignmentWordRecognized(t *testing.T) {
	src := source.New("x.sh", "FOO=bar\n")
	toks, _ := Lex(src)
	if len(toks) == 0 || toks[0].Kind != token.AssignmentWord {
		t.Errorf("expected first token to be AssignmentWord, got %v", kinds(toks))
	}
}
