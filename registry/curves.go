package registry

// Named-group values per the IANA supported-groups registry. JA3 consumers
// expect exactly these decimal IDs.
var curveIDs = map[string]uint16{
	"P-256":  23,
	"P-384":  24,
	"P-521":  25,
	"X25519": 29,
	"X448":   30,
}

// Key-share group labels as they appear in TLS1.3 tooling.
var keyShareGroups = map[string]string{
	"X25519": "x25519",
	"P-256":  "secp256r1",
	"P-384":  "secp384r1",
	"P-521":  "secp521r1",
	"X448":   "x448",
}

func CurveID(name string) (uint16, bool) {
	id, ok := curveIDs[name]
	return id, ok
}

// KeyShareGroup maps a curve name to its TLS1.3 group label. Unknown
// curves map to the name itself rather than being dropped.
func KeyShareGroup(curve string) string {
	if g, ok := keyShareGroups[curve]; ok {
		return g
	}
	return curve
}
