// Package posixcheck provides a second, independent check that
// purified output actually parses as POSIX sh (spec §8 property P7),
// standing in for shelling out to `shellcheck -s sh` — the core never
// invokes external processes (spec §1 Non-goals). It reuses
// mvdan.cc/sh/v3/syntax, the same library the teacher's pkg/shellformat
// is built on, purely as a second pair of eyes: bashrs's own parser
// never validates its own output against itself.
package posixcheck

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/paiml/bashrs-sub018/internal/cerr"
)

// Check parses source as POSIX sh and reports whether it's accepted.
// A non-nil error means the purifier produced something shellcheck -s
// sh would reject — a P7 violation the purifier's test corpus must
// never exhibit.
func Check(purifiedSource string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	f, err := parser.Parse(strings.NewReader(purifiedSource), "")
	if err != nil {
		return cerr.NewError(cerr.Internal, "purified output is not valid POSIX sh", err)
	}
	bashism := false
	syntax.Walk(f, func(n syntax.Node) bool {
		if call, ok := n.(*syntax.CallExpr); ok && len(call.Args) > 0 && call.Args[0].Lit() == "[[" {
			bashism = true
		}
		return !bashism
	})
	if bashism {
		return cerr.NewError(cerr.Internal, "purified output uses [[ ]], which POSIX sh does not define", nil)
	}
	return nil
}
