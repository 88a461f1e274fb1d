package catalog

import (
	"bytes"
	_ "embed"
	"sync"
)

// synodalXML is the bundled 77-book Synodal catalog. Verse counts of the
// deuterocanonical books follow the common Orthodox versification and may
// differ from individual printed editions.
//
//go:embed data/synodal.xml
var synodalXML []byte

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return ReadXML(bytes.NewReader(synodalXML))
})

// LoadDefault returns the bundled Synodal catalog. The catalog is parsed
// once and shared.
func LoadDefault() (*Catalog, error) {
	return loadDefault()
}

// DefaultXML returns the raw bundled catalog document.
func DefaultXML() []byte {
	return bytes.Clone(synodalXML)
}
