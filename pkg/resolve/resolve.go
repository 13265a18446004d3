// Package resolve turns raw process records into the application names they
// are grouped under.
package resolve

import (
	"fmt"
	"path"
	"strings"

	"github.com/srodi/appmem/pkg/types"
)

// DefaultLaunchers are the interpreted runtime launchers disambiguated by their arguments.
var DefaultLaunchers = []string{"java", "javaw"}

// Resolver maps a process to its display name. It holds no per-run state and
// is safe for concurrent use.
type Resolver struct {
	mode types.JavaMode
	// command name -> runtime label used as the name prefix
	launchers map[string]string
}

// New builds a resolver for the given mode. A nil launchers slice selects DefaultLaunchers.
func New(mode types.JavaMode, launchers []string) *Resolver {
	if launchers == nil {
		launchers = DefaultLaunchers
	}
	r := &Resolver{mode: mode, launchers: make(map[string]string, len(launchers))}
	for _, name := range launchers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.launchers[name] = runtimeLabel(name)
	}
	return r
}

// runtimeLabel folds launcher variants (java, javaw) onto a single prefix.
func runtimeLabel(launcher string) string {
	if strings.HasPrefix(launcher, "java") {
		return "java"
	}
	return launcher
}

// Name returns the resolved name for rec. It never returns an empty string.
func (r *Resolver) Name(rec types.ProcessRecord) string {
	fallback := rec.CommandName
	if fallback == "" {
		fallback = fmt.Sprintf("pid-%d", rec.PID)
	}
	runtime, ok := r.launchers[rec.CommandName]
	if !ok || len(rec.Arguments) == 0 {
		return fallback
	}

	var entry string
	switch r.mode {
	case types.JavaJar:
		entry = archiveName(rec.Arguments)
	case types.JavaMain:
		entry = entryPoint(rec.Arguments)
	default:
		if entry = archiveName(rec.Arguments); entry == "" {
			entry = entryPoint(rec.Arguments)
		}
	}
	if entry == "" {
		return fallback
	}
	return runtime + ": " + entry
}

// archiveName returns the base name, without extension, of the archive given to
// -jar. Scanning stops at the first bare token since everything after it belongs
// to the application.
func archiveName(args []string) string {
	lx := newLexer(args)
	for {
		tok, ok := lx.next()
		if !ok {
			return ""
		}
		switch tok.kind {
		case tokenBare:
			return ""
		case tokenValueFlag:
			if tok.text == jarFlag && !tok.hasValue {
				return ""
			}
		case tokenFlagValue:
			if tok.flag == jarFlag {
				return stripArchive(tok.text)
			}
		}
	}
}

// entryPoint returns the first bare token that is not a path. Tokens consumed
// as option values are never candidates, and nothing after a -jar archive is
// either since those tokens are the archive's own arguments.
func entryPoint(args []string) string {
	lx := newLexer(args)
	for {
		tok, ok := lx.next()
		if !ok {
			return ""
		}
		if tok.kind == tokenFlagValue && tok.flag == jarFlag {
			return ""
		}
		if tok.kind == tokenBare && !hasPathSeparator(tok.text) {
			return tok.text
		}
	}
}

func stripArchive(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if trimmed := strings.TrimSuffix(base, path.Ext(base)); trimmed != "" {
		return trimmed
	}
	return base
}

func hasPathSeparator(s string) bool {
	return strings.ContainsAny(s, `/\`)
}
