package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex sha256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ReportKeyOpts are the analysis options that change a report.
type ReportKeyOpts struct {
	Format string `json:"format"`
	Start  string `json:"start,omitempty"`
	Layout bool   `json:"layout,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey identifies the report of a document.
	ReportKey(documentHash string, opts ReportKeyOpts) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey returns "report:" followed by a digest of the document hash and
// the options.
func (DefaultKeyer) ReportKey(documentHash string, opts ReportKeyOpts) string {
	// Marshalling a string and a flat struct cannot fail.
	payload, _ := json.Marshal(struct {
		Doc  string        `json:"doc"`
		Opts ReportKeyOpts `json:"opts"`
	}{documentHash, opts})
	return "report:" + Hash(payload)
}

// ScopedKeyer prefixes every key of an inner keyer, so that several
// consumers can share one backend.
//
//	apiKeyer := cache.NewScopedKeyer(nil, "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ReportKey implements [Keyer].
func (k *ScopedKeyer) ReportKey(documentHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(documentHash, opts)
}
