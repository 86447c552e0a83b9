package rules

import "testing"

func TestCheckCONFIG001FlagsDuplicatePathEntry(t *testing.T) {
	diags := checkCONFIG001(buildContext("PATH=/usr/bin:/usr/local/bin:/usr/bin\n"))
	if len(diags) != 1 || diags[0].Code != "CONFIG001" {
		t.Fatalf("got %v, want a single CONFIG001", diags)
	}
}

func TestCheckCONFIG001IgnoresDistinctEntries(t *testing.T) {
	diags := checkCONFIG001(buildContext("PATH=/usr/bin:/usr/local/bin\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no CONFIG001 for distinct entries", diags)
	}
}

func TestCheckCONFIG002FlagsUnquotedAssignmentValue(t *testing.T) {
	diags := checkCONFIG002(buildContext("EDITOR=$MY_EDITOR\n"))
	if len(diags) != 1 || diags[0].Code != "CONFIG002" {
		t.Fatalf("got %v, want a single CONFIG002", diags)
	}
}

func TestCheckCONFIG002IgnoresSelfReferentialAssignment(t *testing.T) {
	diags := checkCONFIG002(buildContext("PATH=$PATH\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no CONFIG002 for a PATH=$PATH style append", diags)
	}
}

func TestCheckCONFIG003FlagsShadowedAlias(t *testing.T) {
	diags := checkCONFIG003(buildContext("alias ll='ls -la'\nalias ll='ls -lah'\n"))
	if len(diags) != 1 || diags[0].Code != "CONFIG003" {
		t.Fatalf("got %v, want a single CONFIG003", diags)
	}
}

func TestCheckCONFIG004RecodesDeterminismFindings(t *testing.T) {
	diags := checkCONFIG004(buildContext("x=$RANDOM\n"))
	if len(diags) != 1 || diags[0].Code != "CONFIG004" {
		t.Fatalf("got %v, want a single CONFIG004", diags)
	}
}

func TestCheckCONFIG005FlagsEagerVersionManagerInit(t *testing.T) {
	diags := checkCONFIG005(buildContext(`eval "$(rbenv init -)"` + "\n"))
	if len(diags) != 1 || diags[0].Code != "CONFIG005" {
		t.Fatalf("got %v, want a single CONFIG005", diags)
	}
}

func TestCheckCONFIG005IgnoresUnknownCommand(t *testing.T) {
	diags := checkCONFIG005(buildContext(`eval "$(mytool init -)"` + "\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no CONFIG005 for a command outside the known initializer set", diags)
	}
}
