package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/lectio/core/errors"
)

// Sub-grammars of a citation, composed bottom-up into one expression.
// Separators tolerate surrounding spaces the same way the recognizer does.
const (
	pNumber    = `[0-9]{1,3}`
	pDash      = ` *- *`
	pColon     = ` *: *`
	pComma     = ` *, *`
	pChapBlank = `\.?`
)

var (
	pVerseOne    = pNumber
	pVerseInt    = group(pVerseOne + pDash + pVerseOne)
	pVerseSpan   = group(pVerseOne + pDash + pNumber + pColon + pVerseOne)
	pVerseItem   = alt(pVerseSpan, pVerseInt, pVerseOne)
	pVerseCombo  = group(pColon + pVerseItem + group(pComma+pVerseItem) + "*")
	pChapSimple  = group(` *` + pNumber)
	pChapExt     = group(` *` + pNumber + pVerseCombo)
	pChapIntSimp = group(pChapSimple + pDash + pNumber)
	pChapIntExt  = group(` *` + pNumber + pColon + pVerseOne + pDash + pNumber + pColon + pVerseOne)
	pChapIntOpen = group(` *` + pNumber + pDash + pNumber + pColon + pVerseOne)
	pChapItem    = alt(pChapIntExt, pChapIntOpen, pChapIntSimp, pChapExt, pChapSimple)
	pChapCombo   = group(`[. ]` + pChapItem + group(pComma+pChapItem) + "*")
)

func group(s string) string { return "(?:" + s + ")" }

func alt(parts ...string) string { return group(strings.Join(parts, "|")) }

// BuildPattern returns the validation expression for a catalog with the
// given short names: one or more book groups, each a short name optionally
// followed by a chapter combination and terminated by ';'. Names are
// matched lower-case and ordered longest first so that a name which is a
// prefix of another never shadows it.
func BuildPattern(shortNames []string) string {
	names := make([]string, 0, len(shortNames))
	seen := make(map[string]bool, len(shortNames))
	for _, n := range shortNames {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(names[i]), utf8.RuneCountInString(names[j])
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})
	for i, n := range names {
		names[i] = regexp.QuoteMeta(n)
	}

	pBook := alt(names...)
	pGroup := ` *` + pBook + alt(pChapCombo, pChapBlank) + ` *;`
	return `^` + group(pGroup) + `+$`
}

// Validator checks citation syntax against the catalog-derived pattern.
type Validator struct {
	re *regexp.Regexp
}

// NewValidator compiles the validation pattern for cat.
func NewValidator(cat Catalog) (*Validator, error) {
	names := cat.ShortNames()
	if len(names) == 0 {
		return nil, errors.NewValidation("catalog", "no short names to build a pattern from")
	}
	re, err := regexp.Compile(BuildPattern(names))
	if err != nil {
		return nil, &errors.ParseError{Format: "validation pattern", Message: err.Error(), Err: err}
	}
	return &Validator{re: re}, nil
}

// Pattern returns the compiled expression source.
func (v *Validator) Pattern() string {
	return v.re.String()
}

// Match reports whether s is a well-formed citation. Matching is
// case-insensitive and a missing final ';' is supplied.
func (v *Validator) Match(s string) bool {
	return v.re.MatchString(canonical(s))
}

// Validate returns a *errors.ValidationError when s is malformed.
func (v *Validator) Validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return &errors.ValidationError{Field: "citation", Value: s, Message: "empty citation"}
	}
	if !v.Match(s) {
		return &errors.ValidationError{
			Field:   "citation",
			Value:   s,
			Message: fmt.Sprintf("%q is not a well-formed citation", s),
		}
	}
	return nil
}

func canonical(s string) string {
	s = strings.ToLower(s)
	if !strings.HasSuffix(strings.TrimRight(s, " "), ";") {
		s += ";"
	}
	return s
}
