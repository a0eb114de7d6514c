package prefs

import (
	"strings"
	"unicode"
)

// Kind is how a preference value is emitted as a define
type Kind int

const (
	// KindString values are stringified into a C string literal.
	KindString Kind = iota
	// KindObject values start with '{' and are passed through (struct initialisers).
	KindObject
	// KindNumber values are numeric literals.
	KindNumber
	// KindBool values are true or false.
	KindBool
	// KindEnum values name a generated protobuf enum constant.
	KindEnum
)

// EnumPrefix marks values that name a protobuf enum constant.
const EnumPrefix = "meshtastic_"

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	default:
		return "string"
	}
}

// Classify decides how value is emitted. The checks run in a fixed order and
// the first match wins.
func Classify(value string) Kind {
	switch {
	case strings.HasPrefix(value, "{"):
		return KindObject
	case isNumeric(value):
		return KindNumber
	case value == "true" || value == "false":
		return KindBool
	case strings.HasPrefix(value, EnumPrefix):
		return KindEnum
	default:
		return KindString
	}
}

// isNumeric accepts digits once leading '-' signs and every '.' are removed,
// so "1.2.3" counts as numeric.
func isNumeric(value string) bool {
	s := strings.ReplaceAll(strings.TrimLeft(value, "-"), ".", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// StringifyMacro wraps value as an escaped C string literal suitable for a
// -D flag passed through the PlatformIO shell layer.
func StringifyMacro(value string) string {
	return `\"` + strings.ReplaceAll(value, `"`, `\\\"`) + `\"`
}

// Define renders the value of a single preference define
func Define(value string) string {
	if Classify(value) == KindString {
		return StringifyMacro(value)
	}
	return value
}

// Flags returns one -D<name>=<value> token per preference, in order.
func (p Prefs) Flags() []string {
	flags := make([]string, 0, len(p))
	for _, pref := range p {
		flags = append(flags, "-D"+pref.Name+"="+Define(pref.Value))
	}
	return flags
}
