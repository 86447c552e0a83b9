package token

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Word, "Word"},
		{AssignmentWord, "AssignmentWord"},
		{Shebang, "Shebang"},
		{EOF, "EOF"},
		{Kind(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestQuotingContextString(t *testing.T) {
	tests := []struct {
		q    QuotingContext
		want string
	}{
		{Unquoted, "Unquoted"},
		{InSingleQuoted, "SingleQuoted"},
		{InDoubleQuoted, "DoubleQuoted"},
		{InHeredocQuoted, "Heredoc(quoted)"},
		{InCommandSub, "CommandSub"},
	}
	for _, tt := range tests {
		if got := tt.q.String(); got != tt.want {
			t.Errorf("QuotingContext(%d).String() = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"if", "done", "function", "{", "}"} {
		if !IsKeyword(kw) {
			t.Errorf("IsKeyword(%q) = false, want true", kw)
		}
	}
	if IsKeyword("echo") {
		t.Error(`IsKeyword("echo") = true, want false`)
	}
}

func TestIsReservedStatementBoundary(t *testing.T) {
	for _, b := range []string{"fi", "done", "esac", "}", ";", "\n"} {
		if !IsReservedStatementBoundary(b) {
			t.Errorf("IsReservedStatementBoundary(%q) = false, want true", b)
		}
	}
	if IsReservedStatementBoundary("echo") {
		t.Error(`IsReservedStatementBoundary("echo") = true, want false`)
	}
}
