package copyfmt

import "strings"

// UnescapeText reverses COPY text-format escaping: \b \f \n \r \t \v,
// \\, octal \ooo and hex \xhh. A backslash before any other character
// yields that character. The null marker is not special here.
func UnescapeText(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}
	var b strings.Builder
	b.Grow(len(field))
	for i := 0; i < len(field); i++ {
		ch := field[i]
		if ch != '\\' || i+1 == len(field) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch c := field[i]; c {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'x':
			v, n := readDigits(field[i+1:], 2, 16)
			if n == 0 {
				b.WriteByte('x')
				continue
			}
			b.WriteByte(v)
			i += n
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := readDigits(field[i:], 3, 8)
			b.WriteByte(v)
			i += n - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// readDigits parses up to max digits of the given base from the front of s.
func readDigits(s string, max int, base byte) (byte, int) {
	var v byte
	n := 0
	for n < max && n < len(s) {
		d, ok := digitValue(s[n])
		if !ok || d >= base {
			break
		}
		v = v*base + d
		n++
	}
	return v, n
}

func digitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
