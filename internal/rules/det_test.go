package rules

import (
	"testing"

	"github.com/paiml/bashrs-sub018/internal/diag"
)

func TestCheckDET001FlagsRandom(t *testing.T) {
	diags := checkDET001(buildContext("x=$RANDOM\n"))
	if len(diags) != 1 || diags[0].Code != "DET001" {
		t.Fatalf("got %v, want a single DET001", diags)
	}
	if diags[0].Fix == nil || diags[0].Fix.Safety != diag.Unsafe {
		t.Errorf("Fix = %+v, want Unsafe safety (purify-only rewrite)", diags[0].Fix)
	}
}

func TestCheckDET002FlagsPID(t *testing.T) {
	diags := checkDET002(buildContext("echo $$\n"))
	if len(diags) != 1 || diags[0].Code != "DET002" {
		t.Fatalf("got %v, want a single DET002", diags)
	}
}

func TestCheckDET003FlagsDateSubshell(t *testing.T) {
	diags := checkDET003(buildContext("ts=$(date +%s)\n"))
	if len(diags) != 1 || diags[0].Code != "DET003" {
		t.Fatalf("got %v, want a single DET003", diags)
	}
}

func TestCheckDET003FlagsUuidgenSubshell(t *testing.T) {
	diags := checkDET003(buildContext("id=$(uuidgen)\n"))
	if len(diags) != 1 || diags[0].Code != "DET003" {
		t.Fatalf("got %v, want a single DET003", diags)
	}
}

func TestCheckDET003IgnoresOrdinarySubshell(t *testing.T) {
	diags := checkDET003(buildContext("out=$(ls /tmp)\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no DET003 for a deterministic subshell", diags)
	}
}
