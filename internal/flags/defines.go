package flags

import (
	"strings"
)

// Define is one preprocessor macro. Value is empty for a bare -DNAME.
type Define struct {
	Name  string
	Value string
}

// Defines is an ordered set of macros as seen by the compiler.
type Defines []Define

// ParseDefines extracts macros from compiler arguments. Each element may
// itself hold several whitespace-separated flags, as PlatformIO build_flags
// lines do. Both "-DNAME=V" and "-D NAME=V" are understood; anything that is
// not a define is ignored.
func ParseDefines(args ...string) Defines {
	var tokens []string
	for _, a := range args {
		tokens = append(tokens, splitArgs(a)...)
	}

	var defs Defines
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "-D") {
			continue
		}
		body := tok[2:]
		if body == "" {
			if i+1 >= len(tokens) {
				break
			}
			i++
			body = tokens[i]
		}
		name, value, _ := strings.Cut(body, "=")
		if name == "" {
			continue
		}
		defs = append(defs, Define{Name: name, Value: value})
	}
	return defs
}

// Lookup returns the value of the last definition of name; later flags
// override earlier ones the way the compiler sees them.
func (d Defines) Lookup(name string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Name == name {
			return d[i].Value, true
		}
	}
	return "", false
}

// Enabled reports whether name is defined to exactly 1.
func (d Defines) Enabled(name string) bool {
	v, ok := d.Lookup(name)
	return ok && v == "1"
}

// splitArgs splits a flag line on whitespace, honouring single and double
// quotes.
func splitArgs(line string) []string {
	var out []string
	var cur strings.Builder
	var quote rune
	started := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			started = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}
