package fingerprint

import (
	"time"

	"camo/registry"
)

// Fallback returns the fixed degraded fingerprint served when generation
// fails. Content is constant across calls and sessions — only the
// creation timestamp moves — and it touches no entropy source, so it
// cannot fail itself.
func Fallback(ciphers *registry.CipherSuites, exts *registry.Extensions) *Fingerprint {
	fp := &Fingerprint{
		Version:      registry.VersionTLS12,
		VersionName:  registry.VersionTLS12.String(),
		CipherSuites: []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"},
		Extensions: []string{
			"server_name",
			"supported_groups",
			"signature_algorithms",
		},
		EllipticCurves:      []string{"P-256"},
		SignatureAlgorithms: []string{"rsa_pss_rsae_sha256", "rsa_pkcs1_sha256"},
		CompressionMethods:  []string{"null"},
		ALPNProtocols:       []string{"http/1.1"},
		SNIEnabled:          true,
		SupportedVersions:   []string{registry.VersionTLS12.String()},
		CreatedAt:           time.Now(),
		Degraded:            true,
	}
	fp.JA3 = JA3(fp, ciphers, exts)
	fp.JA4 = JA4(fp)
	return fp
}
