package fingerprint

import (
	"errors"
	"fmt"
	"time"

	"camo/entropy"
	"camo/profile"
	"camo/registry"
)

var ErrGeneration = errors.New("fingerprint generation failed")

var signatureAlgorithms = []string{
	"ecdsa_secp256r1_sha256",
	"rsa_pss_rsae_sha256",
	"rsa_pkcs1_sha256",
	"ecdsa_secp384r1_sha384",
	"rsa_pss_rsae_sha384",
	"rsa_pkcs1_sha384",
	"rsa_pss_rsae_sha512",
	"rsa_pkcs1_sha512",
	"rsa_pkcs1_sha1",
}

var allCurves = []string{"X25519", "P-256", "P-384", "P-521", "X448"}

// modernCurves and modernSigAlgs are what aggressive sampling must never
// drop entirely; a hello without any of them is effectively undialable.
var (
	modernCurves  = map[string]bool{"X25519": true, "P-256": true}
	modernSigAlgs = map[string]bool{"ecdsa_secp256r1_sha256": true, "rsa_pss_rsae_sha256": true}
)

var requiredExtensionsTLS13 = []string{
	"server_name", "supported_groups", "signature_algorithms",
	"supported_versions", "key_share",
}

var requiredExtensionsLegacy = []string{
	"server_name", "supported_groups", "signature_algorithms",
}

var optionalExtensionPool = []string{
	"application_layer_protocol_negotiation",
	"extended_master_secret",
	"session_ticket",
	"status_request",
	"signed_certificate_timestamp",
	"ec_point_formats",
	"renegotiation_info",
	"compress_certificate",
	"record_size_limit",
	"psk_key_exchange_modes",
	"early_data",
	"padding",
}

var tls13OnlyExtensions = map[string]bool{
	"psk_key_exchange_modes": true,
	"early_data":             true,
}

var mediumExtensionSet = []string{
	"application_layer_protocol_negotiation",
	"extended_master_secret",
	"session_ticket",
	"status_request",
	"ec_point_formats",
	"renegotiation_info",
}

var mediumExtensionExtras = []string{
	"signed_certificate_timestamp",
	"compress_certificate",
	"record_size_limit",
}

var lowExtensionSet = []string{
	"application_layer_protocol_negotiation",
	"extended_master_secret",
}

// Generator synthesizes fingerprints from a profile's policy. It is
// stateless apart from the shared entropy pool and registries, so one
// instance serves all sessions concurrently.
type Generator struct {
	pool    *entropy.Pool
	ciphers *registry.CipherSuites
	exts    *registry.Extensions
}

func NewGenerator(pool *entropy.Pool, ciphers *registry.CipherSuites, exts *registry.Extensions) *Generator {
	return &Generator{pool: pool, ciphers: ciphers, exts: exts}
}

// Generate builds one fingerprint for (sessionID, prof). override merges
// on top of the profile constraints; pass nil for none. Failures come back
// as an error, never a panic, so the cache layer can substitute the
// fallback.
func (g *Generator) Generate(sessionID string, prof *profile.Profile, override *profile.Constraints) (*Fingerprint, error) {
	if prof == nil {
		return nil, fmt.Errorf("%w: nil profile", ErrGeneration)
	}
	cons := prof.Constraints.Merge(override).WithDefaults()
	level := prof.Level

	version, err := g.selectVersion(prof, cons)
	if err != nil {
		return nil, err
	}

	var template *browserTemplate
	if cons.BrowserTemplate {
		t, err := g.pickTemplate(prof)
		if err != nil {
			return nil, err
		}
		template = &t
	}

	suites, err := g.selectCipherSuites(version, level, cons, template)
	if err != nil {
		return nil, err
	}
	extensions := g.selectExtensions(version, level, cons)
	curves := g.selectCurves(level, template)
	sigAlgs := g.selectSignatureAlgorithms(level)
	alpn := g.selectALPN(level, template)

	fp := &Fingerprint{
		Version:             version,
		VersionName:         version.String(),
		CipherSuites:        suites,
		Extensions:          extensions,
		EllipticCurves:      curves,
		SignatureAlgorithms: sigAlgs,
		CompressionMethods:  []string{"null"},
		ALPNProtocols:       alpn,
		SNIEnabled:          true,
		CreatedAt:           time.Now(),
		EntropySources:      g.pool.Signals(),
	}

	g.applyExtensionFeatures(fp, level)
	g.applyVersionFeatures(fp)

	fp.JA3 = JA3(fp, g.ciphers, g.exts)
	fp.JA4 = JA4(fp)
	return fp, nil
}

func (g *Generator) selectVersion(prof *profile.Profile, cons profile.Constraints) (registry.Version, error) {
	if cons.ForceVersion != "" {
		v, ok := registry.ParseVersion(cons.ForceVersion)
		if !ok {
			return 0, fmt.Errorf("%w: force_version %q", ErrGeneration, cons.ForceVersion)
		}
		return v, nil
	}
	if cons.BrowserTemplate {
		return registry.VersionTLS13, nil
	}
	if prof.Level == profile.LevelExtreme {
		versions := []registry.Version{registry.VersionTLS12, registry.VersionTLS13}
		return entropy.WeightedChoice(g.pool, versions, []float64{0.3, 0.7}), nil
	}
	return registry.VersionTLS13, nil
}

func (g *Generator) pickTemplate(prof *profile.Profile) (browserTemplate, error) {
	targets := prof.TargetApplications
	if len(targets) == 0 {
		targets = []string{"chrome"}
	}
	name := entropy.Choice(g.pool, targets)
	t, ok := templateFor(name)
	if !ok {
		return browserTemplate{}, fmt.Errorf("%w: no browser template %q", ErrGeneration, name)
	}
	return t, nil
}

func (g *Generator) selectCipherSuites(version registry.Version, level profile.Level, cons profile.Constraints, template *browserTemplate) ([]string, error) {
	var base []string
	if template != nil {
		base = template.CipherSuites
	} else {
		base = g.ciphers.SuitesFor(version)
	}
	if len(base) == 0 {
		return nil, fmt.Errorf("%w: no cipher suites for %s", ErrGeneration, version)
	}

	if template != nil {
		// Mimicry keeps the template order; accuracy below 1 allows a
		// single pair swap to avoid an exactly static hash.
		out := append([]string(nil), base...)
		if cons.MimicAccuracy < 1 && g.pool.Chance(1-cons.MimicAccuracy) {
			g.swapRandomPair(out)
		}
		return clampSuites(out, cons), nil
	}

	switch level {
	case profile.LevelExtreme, profile.LevelHigh:
		n := g.pool.IntRange(cons.MinCipherSuites, cons.MaxCipherSuites)
		if n > len(base) {
			n = len(base)
		}
		if n < 1 {
			n = 1
		}
		return entropy.Sample(g.pool, base, n), nil
	case profile.LevelMedium:
		n := 8
		if n > len(base) {
			n = len(base)
		}
		out := append([]string(nil), base[:n]...)
		g.swapRandomPair(out)
		g.swapRandomPair(out)
		return clampSuites(out, cons), nil
	default: // low: first six, no randomness
		n := 6
		if n > len(base) {
			n = len(base)
		}
		return clampSuites(append([]string(nil), base[:n]...), cons), nil
	}
}

func (g *Generator) swapRandomPair(s []string) {
	if len(s) < 2 {
		return
	}
	i := g.pool.IntRange(0, len(s)-1)
	j := g.pool.IntRange(0, len(s)-1)
	s[i], s[j] = s[j], s[i]
}

func clampSuites(s []string, cons profile.Constraints) []string {
	if cons.MaxCipherSuites > 0 && len(s) > cons.MaxCipherSuites {
		s = s[:cons.MaxCipherSuites]
	}
	return s
}

// selectExtensions places the level's optional extensions ahead of the
// version's required set, then deduplicates preserving first occurrence.
func (g *Generator) selectExtensions(version registry.Version, level profile.Level, cons profile.Constraints) []string {
	required := requiredExtensionsLegacy
	if version == registry.VersionTLS13 {
		required = requiredExtensionsTLS13
	}

	var optional []string
	switch level {
	case profile.LevelExtreme, profile.LevelHigh:
		pool := optionalExtensionPool
		if version != registry.VersionTLS13 {
			pool = filterOut(pool, tls13OnlyExtensions)
		}
		optional = entropy.Sample(g.pool, pool, g.pool.IntRange(2, 8))
		if g.pool.Chance(0.7) {
			grease := entropy.Choice(g.pool, registry.GreaseValues)
			optional = append(optional, registry.GreaseName(grease))
		}
	case profile.LevelMedium:
		optional = append([]string(nil), mediumExtensionSet...)
		if g.pool.Chance(0.5) {
			optional = append(optional, entropy.Choice(g.pool, mediumExtensionExtras))
		}
	default:
		optional = append([]string(nil), lowExtensionSet...)
	}

	if allowed := cons.MaxExtensions - len(required); allowed >= 0 && len(optional) > allowed {
		optional = optional[:allowed]
	}

	out := make([]string, 0, len(optional)+len(required))
	seen := make(map[string]bool, len(optional)+len(required))
	for _, name := range append(optional, required...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func filterOut(names []string, drop map[string]bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !drop[n] {
			out = append(out, n)
		}
	}
	return out
}

func (g *Generator) selectCurves(level profile.Level, template *browserTemplate) []string {
	if template != nil {
		return append([]string(nil), template.Curves...)
	}
	switch level {
	case profile.LevelExtreme, profile.LevelHigh:
		curves := entropy.Sample(g.pool, allCurves, g.pool.IntRange(2, 4))
		for _, c := range curves {
			if modernCurves[c] {
				return curves
			}
		}
		// Sampling dropped every modern curve; put one back in front.
		return append([]string{"X25519"}, curves...)
	case profile.LevelMedium:
		return []string{"X25519", "P-256", "P-384"}
	default:
		return []string{"X25519", "P-256", "P-384", "P-521"}
	}
}

func (g *Generator) selectSignatureAlgorithms(level profile.Level) []string {
	switch level {
	case profile.LevelExtreme, profile.LevelHigh:
		algs := entropy.Sample(g.pool, signatureAlgorithms, g.pool.IntRange(4, len(signatureAlgorithms)))
		for _, a := range algs {
			if modernSigAlgs[a] {
				return algs
			}
		}
		return append([]string{"ecdsa_secp256r1_sha256"}, algs...)
	default:
		n := 8
		if n > len(signatureAlgorithms) {
			n = len(signatureAlgorithms)
		}
		return append([]string(nil), signatureAlgorithms[:n]...)
	}
}

var alpnVariants = [][]string{
	{"h2", "http/1.1"},
	{"http/1.1"},
	{"h2"},
}

func (g *Generator) selectALPN(level profile.Level, template *browserTemplate) []string {
	if template != nil {
		return append([]string(nil), template.ALPN...)
	}
	if level == profile.LevelExtreme {
		return entropy.WeightedChoice(g.pool, alpnVariants, []float64{0.6, 0.2, 0.2})
	}
	return []string{"h2", "http/1.1"}
}

// applyExtensionFeatures derives the boolean flags, GREASE values and
// optional sizes from the chosen extension list so the fingerprint stays
// internally consistent.
func (g *Generator) applyExtensionFeatures(fp *Fingerprint, level profile.Level) {
	for _, name := range fp.Extensions {
		switch name {
		case "session_ticket":
			fp.SessionTicket = true
		case "status_request":
			fp.OCSPStapling = true
		case "signed_certificate_timestamp":
			fp.CertificateTransparency = true
		case "record_size_limit":
			fp.RecordSizeLimit = 16385
		case "padding":
			fp.PaddingLength = g.pool.IntRange(16, 256)
		}
		if g.exts.IsGrease(name) {
			if id, ok := g.exts.IDOf(name); ok {
				fp.GreaseValues = append(fp.GreaseValues, id)
			}
		}
	}
	// Aggressive levels also GREASE the cipher list half the time.
	if (level == profile.LevelExtreme || level == profile.LevelHigh) && g.pool.Chance(0.5) {
		fp.GreaseValues = append(fp.GreaseValues, entropy.Choice(g.pool, registry.GreaseValues))
	}
}

func (g *Generator) applyVersionFeatures(fp *Fingerprint) {
	if fp.Version == registry.VersionTLS13 {
		n := 2
		if len(fp.EllipticCurves) < n {
			n = len(fp.EllipticCurves)
		}
		for _, curve := range fp.EllipticCurves[:n] {
			fp.KeyShareGroups = append(fp.KeyShareGroups, registry.KeyShareGroup(curve))
		}
		fp.PSKModes = []string{"psk_dhe_ke"}
		fp.SupportedVersions = []string{
			registry.VersionTLS13.String(),
			registry.VersionTLS12.String(),
		}
		return
	}
	fp.SupportedVersions = []string{fp.Version.String()}
}
