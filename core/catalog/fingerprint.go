package catalog

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a BLAKE3 hex digest over the parts of the catalog that
// affect parsing: ordinals, short names, chapter counts and any inline verse
// tables. Two catalogs with equal fingerprints parse identically.
func (c *Catalog) Fingerprint() string {
	h := blake3.New()
	var buf [8]byte
	writeInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	for _, b := range c.books {
		writeInt(b.Ordinal)
		writeInt(len(b.ShortName))
		h.Write([]byte(b.ShortName))
		writeInt(b.Chapters)
		writeInt(len(b.Verses))
		for _, v := range b.Verses {
			writeInt(v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
