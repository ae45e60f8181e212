package validator

import "strings"

// Luhn reports whether number passes the Luhn checksum.
// Spaces and hyphens are ignored; any other non-digit fails.
func Luhn(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, number)
	if digits == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// Layout converts a date format written with single-letter tokens
// ("Y-m-d H:i:s") into a Go time layout. Backslash escapes the next
// character. Unknown letters are copied through unchanged.
func Layout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '\\' && i+1 < len(format) {
			i++
			b.WriteByte(format[i])
			continue
		}
		if tok, ok := layoutTokens[c]; ok {
			b.WriteString(tok)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

var layoutTokens = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'n': "1",
	'd': "02",
	'j': "2",
	'H': "15",
	'G': "15",
	'h': "03",
	'g': "3",
	'i': "04",
	's': "05",
	'A': "PM",
	'a': "pm",
	'M': "Jan",
	'F': "January",
	'D': "Mon",
	'l': "Monday",
	'T': "MST",
	'P': "-07:00",
	'O': "-0700",
	'v': "000",
}
