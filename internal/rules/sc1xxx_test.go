package rules

import "testing"

func TestCheckSC1084FlagsReversedShebang(t *testing.T) {
	diags := checkSC1084(buildContext("!#/bin/bash\necho hi\n"))
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Code != "SC1084" {
		t.Errorf("Code = %q, want SC1084", diags[0].Code)
	}
	if diags[0].Fix == nil || diags[0].Fix.Replacement != "#!/bin/bash" {
		t.Errorf("Fix = %+v, want a #!/bin/bash replacement", diags[0].Fix)
	}
}

func TestCheckSC1084AllowsCorrectShebang(t *testing.T) {
	diags := checkSC1084(buildContext("#!/bin/bash\necho hi\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no diagnostics for a correct shebang", diags)
	}
}

func TestCheckSC1090FlagsNonLiteralSource(t *testing.T) {
	diags := checkSC1090(buildContext(`source "$CONFIG_FILE"` + "\n"))
	if len(diags) != 1 || diags[0].Code != "SC1090" {
		t.Errorf("got %v, want a single SC1090", diags)
	}
}

func TestCheckSC1090IgnoresLiteralSource(t *testing.T) {
	diags := checkSC1090(buildContext("source /etc/profile\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no SC1090 for a literal absolute path", diags)
	}
}

func TestCheckSC1091FlagsLiteralRelativeSource(t *testing.T) {
	diags := checkSC1091(buildContext(". ./lib/common.sh\n"))
	if len(diags) != 1 || diags[0].Code != "SC1091" {
		t.Errorf("got %v, want a single SC1091", diags)
	}
}

func TestCheckSC1091IgnoresAbsoluteSource(t *testing.T) {
	diags := checkSC1091(buildContext("source /etc/profile\n"))
	if len(diags) != 0 {
		t.Errorf("got %v, want no SC1091 for an absolute path", diags)
	}
}
