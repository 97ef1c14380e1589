package fingerprint

import (
	"time"

	"camo/registry"
)

// Fingerprint is one synthesized set of ClientHello parameters. It is
// built once by the generator and never mutated afterwards; JA3 and JA4
// are derived from the other fields at assembly time.
type Fingerprint struct {
	Version             registry.Version `json:"-"`
	VersionName         string           `json:"version"`
	CipherSuites        []string         `json:"cipher_suites"`
	Extensions          []string         `json:"extensions"`
	EllipticCurves      []string         `json:"elliptic_curves"`
	SignatureAlgorithms []string         `json:"signature_algorithms"`
	CompressionMethods  []string         `json:"compression_methods"`
	ALPNProtocols       []string         `json:"alpn_protocols"`

	SessionTicket           bool `json:"session_ticket"`
	SNIEnabled              bool `json:"sni_enabled"`
	OCSPStapling            bool `json:"ocsp_stapling"`
	CertificateTransparency bool `json:"certificate_transparency"`

	GreaseValues []uint16 `json:"grease_values,omitempty"`
	// KeyShareGroups and PSKModes are populated only for TLS1.3.
	KeyShareGroups    []string `json:"key_share_groups,omitempty"`
	PSKModes          []string `json:"psk_modes,omitempty"`
	SupportedVersions []string `json:"supported_versions"`

	// 0 means the field is absent from the hello.
	RecordSizeLimit int `json:"record_size_limit,omitempty"`
	PaddingLength   int `json:"padding_length,omitempty"`

	CreatedAt      time.Time          `json:"created_at"`
	EntropySources map[string]float64 `json:"entropy_sources,omitempty"`

	// Degraded marks the fixed fallback served when generation failed.
	Degraded bool `json:"degraded,omitempty"`

	JA3 string `json:"ja3"`
	JA4 string `json:"ja4"`
}
