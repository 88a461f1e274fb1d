package numerals

import "strings"

// titlo marks a numeral in the legacy Church-Slavonic font encoding. The 800
// glyph takes its own titlo variant.
const (
	titlo    = "7"
	titlo800 = "&"
)

var slavonicDigits = map[int]string{
	1: "а", 2: "в", 3: "г", 4: "д", 5: "є", 6: "ѕ", 7: "з", 8: "и", 9: "f",
	10: "i", 20: "к", 30: "л", 40: "м", 50: "н", 60: "x", 70: "o", 80: "п", 90: "ч",
	100: "р", 200: "с", 300: "т", 400: "µ", 500: "ф", 600: "х", 700: "p", 800: "t", 900: "ц",
}

// Glyph ligatures of the font for a letter followed by the titlo.
var slavonicBeautifier = strings.NewReplacer(
	"а7", "№", "г7", "G", "и7", "}", "i7", "‹",
	"ч7", "§", "х7", "¦", "р7", "R", "с7", "©",
)

// Slavonic renders n (1..999) as a Church-Slavonic numeral in the legacy
// font encoding used by liturgical texts. Out-of-range values yield "".
func Slavonic(n int) string {
	raw := rawSlavonic(n)
	if strings.Contains(raw, titlo) {
		raw = slavonicBeautifier.Replace(raw)
	}
	return raw
}

func rawSlavonic(n int) string {
	switch {
	case n < 1 || n > 999:
		return ""
	case n <= 10:
		return slavonicDigits[n] + titlo
	case n < 20:
		return slavonicDigits[n%10] + titlo + slavonicDigits[10]
	case n < 100:
		return slavonicDigits[n/10*10] + titlo + slavonicDigits[n%10]
	}

	hundreds := n / 100 * 100
	mark := titlo
	if hundreds == 800 {
		mark = titlo800
	}
	rest := n % 100
	switch {
	case rest == 0:
		return slavonicDigits[hundreds] + mark
	case rest%10 == 0 || rest < 10:
		return slavonicDigits[hundreds] + mark + slavonicDigits[rest]
	default:
		return slavonicDigits[hundreds] + Slavonic(rest)
	}
}
