package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites script source into something zygomys accepts:
//
//   - ; and ;; line comments become // comments.
//   - :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols.
//   - kebab-case identifiers become snake_case (merge-point -> merge_point),
//     since zygomys reads a hyphen as subtraction.
//
// String literals ("..." and `...`) pass through untouched, as does the
// := operator and a minus sign that is not inside an identifier.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	src := source
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			end := skipQuoted(src, i, '"', true)
			out.WriteString(src[i:end])
			i = end

		case c == '`':
			end := skipQuoted(src, i, '`', false)
			out.WriteString(src[i:end])
			i = end

		case c == ';':
			j := i
			for j < len(src) && src[j] == ';' {
				j++
			}
			k := strings.IndexByte(src[j:], '\n')
			if k < 0 {
				k = len(src) - j
			}
			out.WriteString("//")
			out.WriteString(src[j : j+k])
			i = j + k

		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKWChar(src[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(src[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipQuoted returns the index just past the literal that opens at start.
// An unterminated literal runs to the end of src.
func skipQuoted(src string, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(src) {
		switch {
		case escapes && src[i] == '\\' && i+1 < len(src):
			i += 2
		case src[i] == quote:
			return i + 1
		default:
			i++
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
