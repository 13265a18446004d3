package resolve

import "strings"

const jarFlag = "-jar"

// valueFlags are launcher options whose value is the following token.
var valueFlags = map[string]struct{}{
	jarFlag:                 {},
	"-cp":                   {},
	"-classpath":            {},
	"--class-path":          {},
	"-p":                    {},
	"--module-path":         {},
	"--upgrade-module-path": {},
	"--add-modules":         {},
}

type tokenKind int

const (
	// tokenFlag is an option that stands alone, including --opt=value forms.
	tokenFlag tokenKind = iota
	// tokenValueFlag is an option that consumes the next token.
	tokenValueFlag
	// tokenFlagValue is the token consumed by the preceding tokenValueFlag.
	tokenFlagValue
	// tokenBare is anything else: an entry point, a path or an application argument.
	tokenBare
)

func (k tokenKind) String() string {
	switch k {
	case tokenFlag:
		return "flag"
	case tokenValueFlag:
		return "value-flag"
	case tokenFlagValue:
		return "flag-value"
	case tokenBare:
		return "bare"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	// flag is the option a tokenFlagValue belongs to.
	flag string
	// hasValue reports whether a tokenValueFlag is followed by a value.
	hasValue bool
}

// lexer classifies launcher arguments one token at a time.
type lexer struct {
	args []string
	pos  int
	// pending is set after a value flag so the next token is read as its value.
	pending string
}

func newLexer(args []string) *lexer {
	return &lexer{args: args}
}

func (lx *lexer) next() (token, bool) {
	if lx.pos >= len(lx.args) {
		return token{}, false
	}
	text := lx.args[lx.pos]
	lx.pos++

	if lx.pending != "" {
		tok := token{kind: tokenFlagValue, text: text, flag: lx.pending}
		lx.pending = ""
		return tok, true
	}
	if !strings.HasPrefix(text, "-") || text == "-" {
		return token{kind: tokenBare, text: text}, true
	}
	if _, ok := valueFlags[text]; ok {
		tok := token{kind: tokenValueFlag, text: text, hasValue: lx.pos < len(lx.args)}
		if tok.hasValue {
			lx.pending = text
		}
		return tok, true
	}
	return token{kind: tokenFlag, text: text}, true
}
