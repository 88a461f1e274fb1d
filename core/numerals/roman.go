// Package numerals converts chapter numbers between decimal, Roman and
// Church-Slavonic notations.
package numerals

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/lectio/core/errors"
)

var romanValidator = regexp.MustCompile(`^(M{0,3})(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})$`)

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ValidRoman reports whether s is a well-formed upper-case Roman numeral.
func ValidRoman(s string) bool {
	return s != "" && romanValidator.MatchString(s)
}

// RomanToInt converts a Roman numeral to its decimal value.
func RomanToInt(s string) (int, error) {
	if !ValidRoman(s) {
		return 0, &errors.ValidationError{Field: "roman numeral", Value: s, Message: "not a valid Roman numeral"}
	}
	total := 0
	for _, r := range romanTable {
		for strings.HasPrefix(s, r.symbol) {
			total += r.value
			s = s[len(r.symbol):]
		}
	}
	return total, nil
}

// IntToRoman renders n (1..3999) as a Roman numeral.
func IntToRoman(n int) (string, error) {
	if n < 1 || n > 3999 {
		return "", &errors.ValidationError{Field: "roman numeral", Message: "value out of range 1..3999"}
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String(), nil
}
