package purify

import (
	"strings"
	"testing"

	"github.com/paiml/bashrs-sub018/internal/config"
	"github.com/paiml/bashrs-sub018/internal/posixcheck"
	"github.com/paiml/bashrs-sub018/internal/source"
)

func TestPurifyReplacesRandomWithPlaceholder(t *testing.T) {
	result := Purify(source.New("x.sh", "echo $RANDOM\n"), Options{})
	if strings.Contains(result.PurifiedSource, "$RANDOM") {
		t.Errorf("purified output still contains $RANDOM: %q", result.PurifiedSource)
	}
	if len(result.Report) == 0 {
		t.Error("expected at least one Transformation to be reported")
	}
}

func TestPurifyResolvesConfiguredStableSource(t *testing.T) {
	opts := Options{StableSource: config.StableSource{Kind: "literal", Value: "frozen"}}
	result := Purify(source.New("x.sh", "id=$(uuidgen)\n"), opts)
	if !strings.Contains(result.PurifiedSource, "frozen") {
		t.Errorf("purified output = %q, want the literal stable source substituted in", result.PurifiedSource)
	}
}

func TestPurifyMkdirAddsDashP(t *testing.T) {
	result := Purify(source.New("x.sh", "mkdir /tmp/out\n"), Options{})
	if !strings.Contains(result.PurifiedSource, "mkdir -p /tmp/out") {
		t.Errorf("purified output = %q, want mkdir -p", result.PurifiedSource)
	}
}

func TestPurifyMkdirIsIdempotent(t *testing.T) {
	first := Purify(source.New("x.sh", "mkdir /tmp/out\n"), Options{})
	second := Purify(source.New("x.sh", first.PurifiedSource), Options{})
	if first.PurifiedSource != second.PurifiedSource {
		t.Errorf("purify(purify(x)) != purify(x):\nfirst:  %q\nsecond: %q", first.PurifiedSource, second.PurifiedSource)
	}
}

func TestPurifyRmAddsDashF(t *testing.T) {
	result := Purify(source.New("x.sh", "rm /tmp/out\n"), Options{})
	if !strings.Contains(result.PurifiedSource, "rm -f /tmp/out") {
		t.Errorf("purified output = %q, want rm -f", result.PurifiedSource)
	}
}

func TestPurifyLnSymbolicPrefixesUnlink(t *testing.T) {
	result := Purify(source.New("x.sh", "ln -s /opt/app/current /opt/app/live\n"), Options{})
	if !strings.Contains(result.PurifiedSource, "rm -f /opt/app/live") {
		t.Errorf("purified output = %q, want a preceding rm -f on the link target", result.PurifiedSource)
	}
}

func TestPurifyDropsFunctionKeyword(t *testing.T) {
	result := Purify(source.New("x.sh", "function greet {\n  echo hi\n}\n"), Options{})
	if strings.Contains(result.PurifiedSource, "function ") {
		t.Errorf("purified output = %q, want `function` keyword dropped", result.PurifiedSource)
	}
}

func TestPurifyEchoDashEBecomesPrintf(t *testing.T) {
	result := Purify(source.New("x.sh", `echo -e "line1\nline2"`+"\n"), Options{})
	if !strings.Contains(result.PurifiedSource, "printf") {
		t.Errorf("purified output = %q, want printf", result.PurifiedSource)
	}
	if strings.Contains(result.PurifiedSource, "echo -e") {
		t.Errorf("purified output = %q, want echo -e removed", result.PurifiedSource)
	}
}

func TestPurifyDedupsAliasesKeepingLast(t *testing.T) {
	result := Purify(source.New("x.sh", "alias ll='ls -la'\nalias ll='ls -lah'\n"), Options{})
	if strings.Count(result.PurifiedSource, "alias ll=") != 1 {
		t.Errorf("purified output = %q, want exactly one surviving alias ll= definition", result.PurifiedSource)
	}
	if !strings.Contains(result.PurifiedSource, "ls -lah") {
		t.Errorf("purified output = %q, want the later definition to win", result.PurifiedSource)
	}
}

func TestPurifyDedupsDuplicatePathEntries(t *testing.T) {
	result := Purify(source.New("x.sh", "PATH=/usr/bin:/usr/local/bin:/usr/bin\n"), Options{})
	if !strings.Contains(result.PurifiedSource, "PATH=/usr/bin:/usr/local/bin") {
		t.Errorf("purified output = %q, want deduped PATH", result.PurifiedSource)
	}
	if strings.Count(result.PurifiedSource, "/usr/bin") != 1 {
		t.Errorf("purified output = %q, want /usr/bin to appear exactly once", result.PurifiedSource)
	}
}

func TestPurifyGuardsPathMutationWithCaseCheck(t *testing.T) {
	result := Purify(source.New("x.sh", "PATH=$PATH:/opt/tool/bin\n"), Options{})
	if !strings.Contains(result.PurifiedSource, `case ":$PATH:" in`) {
		t.Errorf("purified output = %q, want a case \":$PATH:\" guard", result.PurifiedSource)
	}
	if !strings.Contains(result.PurifiedSource, `*":/opt/tool/bin:"*`) {
		t.Errorf("purified output = %q, want a pattern matching the appended entry", result.PurifiedSource)
	}
	if !strings.Contains(result.PurifiedSource, "PATH=$PATH:/opt/tool/bin") {
		t.Errorf("purified output = %q, want the original mutation preserved inside the guard", result.PurifiedSource)
	}
}

func TestPurifyNormalizesBacktickCommandSubstitution(t *testing.T) {
	result := Purify(source.New("x.sh", "x=`date`\n"), Options{})
	if strings.Contains(result.PurifiedSource, "`") {
		t.Errorf("purified output = %q, want no backticks left", result.PurifiedSource)
	}
	if strings.Contains(result.PurifiedSource, "$(date)") {
		t.Errorf("purified output = %q, want the backtick date substitution replaced with a stable source, not merely normalized", result.PurifiedSource)
	}
}

func TestPurifiedOutputIsValidPOSIXsh(t *testing.T) {
	scripts := []string{
		"mkdir /tmp/out\nrm /tmp/out/file\necho $RANDOM\n",
		"function f {\n  echo -e \"hi\\n\"\n}\nf\n",
		"alias x=1\nalias x=2\n",
		"PATH=/usr/bin:/usr/local/bin:/usr/bin\n",
		"PATH=$PATH:/opt/tool/bin\n",
		"x=`date`\n",
	}
	for _, src := range scripts {
		result := Purify(source.New("x.sh", src), Options{})
		if err := posixcheck.Check(result.PurifiedSource); err != nil {
			t.Errorf("purified output for %q is not valid POSIX sh: %v\noutput: %q", src, err, result.PurifiedSource)
		}
	}
}
