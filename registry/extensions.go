package registry

import (
	"fmt"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// CompatibilityTier classifies how widely an extension is understood by
// servers in the wild.
type CompatibilityTier string

const (
	TierBaseline CompatibilityTier = "baseline"
	TierModern   CompatibilityTier = "modern"
	TierExotic   CompatibilityTier = "exotic"
)

// ExtensionMeta describes one ClientHello extension.
type ExtensionMeta struct {
	ID       uint16
	Required bool
	Tier     CompatibilityTier
}

var extensionMeta = map[string]ExtensionMeta{
	"server_name":                            {ID: 0, Required: true, Tier: TierBaseline},
	"status_request":                         {ID: 5, Tier: TierBaseline},
	"supported_groups":                       {ID: 10, Required: true, Tier: TierBaseline},
	"ec_point_formats":                       {ID: 11, Tier: TierBaseline},
	"signature_algorithms":                   {ID: 13, Required: true, Tier: TierBaseline},
	"application_layer_protocol_negotiation": {ID: 16, Tier: TierBaseline},
	"signed_certificate_timestamp":           {ID: 18, Tier: TierModern},
	"padding":                                {ID: 21, Tier: TierModern},
	"extended_master_secret":                 {ID: 23, Tier: TierBaseline},
	"compress_certificate":                   {ID: 27, Tier: TierModern},
	"record_size_limit":                      {ID: 28, Tier: TierModern},
	"session_ticket":                         {ID: 35, Tier: TierBaseline},
	"early_data":                             {ID: 42, Tier: TierModern},
	"supported_versions":                     {ID: 43, Required: true, Tier: TierBaseline},
	"psk_key_exchange_modes":                 {ID: 45, Tier: TierBaseline},
	"key_share":                              {ID: 51, Required: true, Tier: TierBaseline},
	"renegotiation_info":                     {ID: 65281, Tier: TierBaseline},
}

const greasePrefix = "grease_"

// GreaseValues are the sixteen reserved values real clients inject to keep
// servers honest about unknown extensions, all matching
// (v & 0x0f0f) == 0x0a0a. The first entry is the placeholder utls uses.
var GreaseValues = []uint16{
	utls.GREASE_PLACEHOLDER,
	0x1a1a, 0x2a2a, 0x3a3a, 0x4a4a, 0x5a5a, 0x6a6a, 0x7a7a,
	0x8a8a, 0x9a9a, 0xaaaa, 0xbaba, 0xcaca, 0xdada, 0xeaea, 0xfafa,
}

// IsGreaseValue reports whether v matches the GREASE bit pattern.
func IsGreaseValue(v uint16) bool {
	return v&0x0f0f == 0x0a0a
}

// GreaseName is the pseudo-extension name for a GREASE value, e.g.
// "grease_3a3a".
func GreaseName(v uint16) string {
	return fmt.Sprintf("%s%04x", greasePrefix, v)
}

// Extensions resolves extension names to wire IDs and compatibility
// metadata. Static and safe to share read-only.
type Extensions struct {
	grease map[string]uint16
}

func NewExtensions() *Extensions {
	grease := make(map[string]uint16, len(GreaseValues))
	for _, v := range GreaseValues {
		grease[GreaseName(v)] = v
	}
	return &Extensions{grease: grease}
}

func (r *Extensions) IDOf(name string) (uint16, bool) {
	if meta, ok := extensionMeta[name]; ok {
		return meta.ID, true
	}
	if v, ok := r.grease[name]; ok {
		return v, true
	}
	return 0, false
}

func (r *Extensions) IsGrease(name string) bool {
	return strings.HasPrefix(name, greasePrefix)
}

func (r *Extensions) Metadata(name string) (ExtensionMeta, bool) {
	if meta, ok := extensionMeta[name]; ok {
		return meta, true
	}
	if v, ok := r.grease[name]; ok {
		return ExtensionMeta{ID: v, Tier: TierExotic}, true
	}
	return ExtensionMeta{}, false
}
