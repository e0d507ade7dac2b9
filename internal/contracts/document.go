package contracts

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document is one raw quotation source before extraction. Text holds the
// plain-text body; for HTML or PDF sources the loader strips markup first.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Hash returns the SHA-256 of the document text, used as the cache key so
// re-running a comparison does not re-extract unchanged documents.
func (d Document) Hash() string {
	sum := sha256.Sum256([]byte(d.Text))
	return hex.EncodeToString(sum[:])
}
