package citation

import (
	"strings"

	"github.com/FocuswithJustin/lectio/core/errors"
)

// Parser turns citation strings into LocationSets against one catalog.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	cat       Catalog
	tr        *Transformer
	validator *Validator
}

// NewParser builds a parser and its validation pattern for cat. Build a
// new Parser whenever the catalog changes.
func NewParser(cat Catalog) (*Parser, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.NewValidation("catalog", "catalog is empty")
	}
	v, err := NewValidator(cat)
	if err != nil {
		return nil, err
	}
	return &Parser{cat: cat, tr: NewTransformer(cat), validator: v}, nil
}

// Catalog returns the catalog the parser resolves against.
func (p *Parser) Catalog() Catalog { return p.cat }

// Transformer returns the parser's code transformer.
func (p *Parser) Transformer() *Transformer { return p.tr }

// Validator returns the parser's syntax validator.
func (p *Parser) Validator() *Validator { return p.validator }

// Pattern returns the validation expression source.
func (p *Parser) Pattern() string { return p.validator.Pattern() }

// Validate checks citation syntax without resolving anything.
func (p *Parser) Validate(s string) error { return p.validator.Validate(s) }

// Codes returns the flat list of concrete codes for s. Syntax is not
// checked; malformed parts contribute nothing.
func (p *Parser) Codes(s string) []SearchCode {
	var codes []SearchCode
	for _, segment := range strings.Split(s, string(terminator)) {
		codes = append(codes, scanSegment(p.cat, p.tr, segment)...)
	}
	return codes
}

// Parse resolves s leniently. It returns false when s resolves to no
// location at all; this is a normal outcome, not an error.
func (p *Parser) Parse(s string) (*LocationSet, bool) {
	codes := p.Codes(s)
	if len(codes) == 0 {
		return nil, false
	}
	return NewLocationSet(s, Assemble(codes)), true
}

// ParseStrict validates s first and reports an unresolvable citation as a
// *errors.NotFoundError.
func (p *Parser) ParseStrict(s string) (*LocationSet, error) {
	if err := p.validator.Validate(s); err != nil {
		return nil, err
	}
	set, ok := p.Parse(s)
	if !ok {
		return nil, errors.NewNotFound("location", s)
	}
	return set, nil
}
