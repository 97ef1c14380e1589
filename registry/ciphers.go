package registry

import (
	utls "github.com/refraction-networking/utls"
)

// cipherIDs maps canonical suite names to their IANA registry values.
// Values come from utls so they cannot drift from what a real ClientHello
// would carry.
var cipherIDs = map[string]uint16{
	"TLS_AES_128_GCM_SHA256":                        utls.TLS_AES_128_GCM_SHA256,
	"TLS_AES_256_GCM_SHA384":                        utls.TLS_AES_256_GCM_SHA384,
	"TLS_CHACHA20_POLY1305_SHA256":                  utls.TLS_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256":       utls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":         utls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384":       utls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":         utls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256": utls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256":   utls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	"TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA":          utls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
	"TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA":            utls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
	"TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA":          utls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	"TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA":            utls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
	"TLS_RSA_WITH_AES_128_GCM_SHA256":               utls.TLS_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_RSA_WITH_AES_256_GCM_SHA384":               utls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_RSA_WITH_AES_128_CBC_SHA":                  utls.TLS_RSA_WITH_AES_128_CBC_SHA,
	"TLS_RSA_WITH_AES_256_CBC_SHA":                  utls.TLS_RSA_WITH_AES_256_CBC_SHA,
	"TLS_RSA_WITH_3DES_EDE_CBC_SHA":                 utls.TLS_RSA_WITH_3DES_EDE_CBC_SHA,
}

// Suite order follows what Chrome-lineage clients offer, most preferred
// first. A TLS1.3 hello still advertises the 1.2 ECDHE suites, so the 1.3
// list is a superset of the 1.2 one.
var (
	suitesTLS13 = []string{
		"TLS_AES_128_GCM_SHA256",
		"TLS_AES_256_GCM_SHA384",
		"TLS_CHACHA20_POLY1305_SHA256",
		"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
		"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384",
		"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
		"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256",
		"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256",
		"TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA",
		"TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA",
		"TLS_RSA_WITH_AES_128_GCM_SHA256",
		"TLS_RSA_WITH_AES_256_GCM_SHA384",
		"TLS_RSA_WITH_AES_128_CBC_SHA",
		"TLS_RSA_WITH_AES_256_CBC_SHA",
	}
	suitesTLS12 = suitesTLS13[3:]
	suitesLegacy = []string{
		"TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA",
		"TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA",
		"TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA",
		"TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA",
		"TLS_RSA_WITH_AES_128_CBC_SHA",
		"TLS_RSA_WITH_AES_256_CBC_SHA",
		"TLS_RSA_WITH_3DES_EDE_CBC_SHA",
	}
)

// CipherSuites resolves suite names to IANA values and lists the suites a
// client of a given version would offer. It is read-only after process
// start and safe to share.
type CipherSuites struct{}

func NewCipherSuites() *CipherSuites {
	return &CipherSuites{}
}

// SuitesFor returns the ordered suite-name list for a version. The caller
// must not mutate the returned slice.
func (r *CipherSuites) SuitesFor(version Version) []string {
	switch version {
	case VersionTLS13:
		return suitesTLS13
	case VersionTLS12:
		return suitesTLS12
	default:
		return suitesLegacy
	}
}

// IDOf returns the IANA value of a suite name. ok is false for names the
// registry does not know; callers decide how to degrade.
func (r *CipherSuites) IDOf(name string) (uint16, bool) {
	id, ok := cipherIDs[name]
	return id, ok
}
