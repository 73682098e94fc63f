package phones

import "strings"

// Format derives the display form of a raw dial string.
//
// All non-digit characters are stripped, then the first eleven digits are
// grouped 4-3-2-2 ("05401490040" → "0540 149 00 40") with any remaining
// digits appended to the last group. Inputs with fewer than eleven digits
// do not match the grouping pattern and pass through as bare digits. That
// is the documented policy for non-Turkish-format numbers.
func Format(number string) string {
	digits := digitsOf(number)
	if len(digits) < 11 {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits) + 3)
	b.WriteString(digits[0:4])
	b.WriteByte(' ')
	b.WriteString(digits[4:7])
	b.WriteByte(' ')
	b.WriteString(digits[7:9])
	b.WriteByte(' ')
	b.WriteString(digits[9:])
	return b.String()
}

// digitsOf strips everything but ASCII digits from s.
func digitsOf(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
