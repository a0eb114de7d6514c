package prefs

// StripComments removes "//" line comments from JSONC source. The newline
// that ends a comment is kept, as is every byte outside comments. A "//"
// inside a string literal is part of the string.
func StripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	inString, escaped := false, false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"' || c == '\n':
				inString = false
			}
			continue
		}

		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
			continue
		}

		if c == '"' {
			inString = true
		}
		out = append(out, c)
	}
	return out
}
