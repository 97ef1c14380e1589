package registry

// Version is a TLS protocol version as negotiated in the ClientHello.
type Version uint16

const (
	VersionTLS10 Version = 0x0301
	VersionTLS11 Version = 0x0302
	VersionTLS12 Version = 0x0303
	VersionTLS13 Version = 0x0304
)

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLS1.0"
	case VersionTLS11:
		return "TLS1.1"
	case VersionTLS12:
		return "TLS1.2"
	case VersionTLS13:
		return "TLS1.3"
	}
	return "unknown"
}

// JA3Code is the decimal protocol value used in the first JA3 field
// (769 for TLS1.0 through 772 for TLS1.3).
func (v Version) JA3Code() int {
	return int(v)
}

// JA4Code is the two-digit version tag used by JA4 ("10".."13").
func (v Version) JA4Code() string {
	switch v {
	case VersionTLS10:
		return "10"
	case VersionTLS11:
		return "11"
	case VersionTLS12:
		return "12"
	case VersionTLS13:
		return "13"
	}
	return "00"
}

func ParseVersion(s string) (Version, bool) {
	switch s {
	case "TLS1.0", "1.0", "tls1.0":
		return VersionTLS10, true
	case "TLS1.1", "1.1", "tls1.1":
		return VersionTLS11, true
	case "TLS1.2", "1.2", "tls1.2":
		return VersionTLS12, true
	case "TLS1.3", "1.3", "tls1.3":
		return VersionTLS13, true
	}
	return 0, false
}
