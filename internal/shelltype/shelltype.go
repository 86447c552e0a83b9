// Package shelltype classifies a shell script's dialect (spec §4.3).
// Detection is total: every input resolves to a ShellType, falling back
// to Bash when nothing else matches.
package shelltype

import (
	"path/filepath"
	"regexp"
	"strings"
)

type ShellType string

const (
	Sh       ShellType = "sh"
	Bash     ShellType = "bash"
	Zsh      ShellType = "zsh"
	Ksh      ShellType = "ksh"
	Dash     ShellType = "dash"
	Ash      ShellType = "ash"
	BusyBox  ShellType = "busybox"
)

var directiveRe = regexp.MustCompile(`#\s*shellcheck\s+shell=(\w+)`)

const directiveScanLines = 20

// Detect classifies source per the priority order spec §4.3 defines:
// inline directive, then shebang, then extension, then basename, then a
// Bash default. path may be empty (e.g. stdin input); detection must
// still succeed.
func Detect(path string, source string) ShellType {
	if st, ok := fromDirective(source); ok {
		return st
	}
	if st, ok := fromShebang(source); ok {
		return st
	}
	if st, ok := fromExtension(path); ok {
		return st
	}
	if st, ok := fromBasename(path); ok {
		return st
	}
	return Bash
}

func fromDirective(source string) (ShellType, bool) {
	lines := strings.SplitN(source, "\n", directiveScanLines+1)
	if len(lines) > directiveScanLines {
		lines = lines[:directiveScanLines]
	}
	for _, line := range lines {
		if m := directiveRe.FindStringSubmatch(line); m != nil {
			if st, ok := fromName(m[1]); ok {
				return st, true
			}
		}
	}
	return "", false
}

func fromName(name string) (ShellType, bool) {
	switch name {
	case "sh":
		return Sh, true
	case "bash":
		return Bash, true
	case "zsh":
		return Zsh, true
	case "ksh":
		return Ksh, true
	case "dash":
		return Dash, true
	case "ash":
		return Ash, true
	case "busybox":
		return BusyBox, true
	default:
		return "", false
	}
}

func fromShebang(source string) (ShellType, bool) {
	if !strings.HasPrefix(source, "#!") {
		return "", false
	}
	nl := strings.IndexByte(source, '\n')
	line := source[2:]
	if nl >= 0 {
		line = source[2:nl]
	}
	line = strings.TrimSpace(line)

	switch {
	case strings.Contains(line, "busybox") && strings.HasSuffix(line, "sh"):
		return BusyBox, true
	case strings.HasSuffix(line, "/bin/sh"):
		return Sh, true
	case strings.Contains(line, "env bash") || strings.HasSuffix(line, "/bash"):
		return Bash, true
	case strings.Contains(line, "env zsh") || strings.HasSuffix(line, "/zsh"):
		return Zsh, true
	case strings.HasSuffix(line, "/dash"):
		return Dash, true
	case strings.HasSuffix(line, "/ksh"):
		return Ksh, true
	case strings.HasSuffix(line, "/ash"):
		return Ash, true
	default:
		return "", false
	}
}

func fromExtension(path string) (ShellType, bool) {
	switch filepath.Ext(path) {
	case ".sh":
		return Sh, true
	case ".bash":
		return Bash, true
	case ".zsh":
		return Zsh, true
	case ".ksh":
		return Ksh, true
	default:
		return "", false
	}
}

func fromBasename(path string) (ShellType, bool) {
	switch filepath.Base(path) {
	case ".bashrc", ".bash_profile", ".bash_login", ".bash_logout":
		return Bash, true
	case ".zshrc", ".zshenv", ".zprofile":
		return Zsh, true
	default:
		return "", false
	}
}

// Compat is a rule's declared shell compatibility (spec §4.4).
type Compat string

const (
	Universal Compat = "Universal"
	NotSh     Compat = "NotSh"
	ShOnly    Compat = "ShOnly"
	BashOnly  Compat = "BashOnly"
	ZshOnly   Compat = "ZshOnly"
)

// Allows reports whether a rule declared with compatibility c is
// eligible to run against shell type st (spec §4.4, property P9).
func (c Compat) Allows(st ShellType) bool {
	isPosixFamily := st == Sh || st == Dash || st == Ash || st == BusyBox
	switch c {
	case Universal:
		return true
	case NotSh:
		return !isPosixFamily
	case ShOnly:
		return isPosixFamily
	case BashOnly:
		return st == Bash
	case ZshOnly:
		return st == Zsh
	default:
		return true
	}
}
