package tls

import (
	"fmt"

	"camo/fingerprint"
	"camo/registry"

	utls "github.com/refraction-networking/utls"
)

var curveToUtls = map[string]utls.CurveID{
	"X25519": utls.X25519,
	"P-256":  utls.CurveP256,
	"P-384":  utls.CurveP384,
	"P-521":  utls.CurveP521,
	"X448":   utls.CurveID(30),
}

var sigAlgToUtls = map[string]utls.SignatureScheme{
	"ecdsa_secp256r1_sha256": utls.ECDSAWithP256AndSHA256,
	"rsa_pss_rsae_sha256":    utls.PSSWithSHA256,
	"rsa_pkcs1_sha256":       utls.PKCS1WithSHA256,
	"ecdsa_secp384r1_sha384": utls.ECDSAWithP384AndSHA384,
	"rsa_pss_rsae_sha384":    utls.PSSWithSHA384,
	"rsa_pkcs1_sha384":       utls.PKCS1WithSHA384,
	"rsa_pss_rsae_sha512":    utls.PSSWithSHA512,
	"rsa_pkcs1_sha512":       utls.PKCS1WithSHA512,
	"rsa_pkcs1_sha1":         utls.PKCS1WithSHA1,
}

// ClientHelloSpec translates a synthesized fingerprint into a utls spec a
// caller can dial with. Pure construction: no socket is touched here.
func ClientHelloSpec(fp *fingerprint.Fingerprint, ciphers *registry.CipherSuites, exts *registry.Extensions) (*utls.ClientHelloSpec, error) {
	if fp == nil || len(fp.CipherSuites) == 0 {
		return nil, fmt.Errorf("fingerprint has no cipher suites")
	}

	suiteIDs := make([]uint16, 0, len(fp.CipherSuites)+1)
	if len(fp.GreaseValues) > 0 {
		suiteIDs = append(suiteIDs, utls.GREASE_PLACEHOLDER)
	}
	for _, name := range fp.CipherSuites {
		id, ok := ciphers.IDOf(name)
		if !ok {
			return nil, fmt.Errorf("unknown cipher suite %q", name)
		}
		suiteIDs = append(suiteIDs, id)
	}

	curveIDs := make([]utls.CurveID, 0, len(fp.EllipticCurves))
	for _, name := range fp.EllipticCurves {
		id, ok := curveToUtls[name]
		if !ok {
			return nil, fmt.Errorf("unknown curve %q", name)
		}
		curveIDs = append(curveIDs, id)
	}

	sigAlgs := make([]utls.SignatureScheme, 0, len(fp.SignatureAlgorithms))
	for _, name := range fp.SignatureAlgorithms {
		alg, ok := sigAlgToUtls[name]
		if !ok {
			return nil, fmt.Errorf("unknown signature algorithm %q", name)
		}
		sigAlgs = append(sigAlgs, alg)
	}

	extensions := make([]utls.TLSExtension, 0, len(fp.Extensions))
	for _, name := range fp.Extensions {
		ext, err := buildExtension(name, fp, curveIDs, sigAlgs, exts)
		if err != nil {
			return nil, err
		}
		if ext != nil {
			extensions = append(extensions, ext)
		}
	}

	return &utls.ClientHelloSpec{
		TLSVersMin:         uint16(registry.VersionTLS10),
		TLSVersMax:         uint16(fp.Version),
		CipherSuites:       suiteIDs,
		CompressionMethods: []byte{0},
		Extensions:         extensions,
	}, nil
}

func buildExtension(name string, fp *fingerprint.Fingerprint, curves []utls.CurveID, sigAlgs []utls.SignatureScheme, exts *registry.Extensions) (utls.TLSExtension, error) {
	if exts.IsGrease(name) {
		return &utls.UtlsGREASEExtension{}, nil
	}
	switch name {
	case "server_name":
		return &utls.SNIExtension{}, nil
	case "status_request":
		return &utls.StatusRequestExtension{}, nil
	case "supported_groups":
		return &utls.SupportedCurvesExtension{Curves: curves}, nil
	case "ec_point_formats":
		return &utls.SupportedPointsExtension{SupportedPoints: []byte{0}}, nil
	case "signature_algorithms":
		return &utls.SignatureAlgorithmsExtension{SupportedSignatureAlgorithms: sigAlgs}, nil
	case "application_layer_protocol_negotiation":
		return &utls.ALPNExtension{AlpnProtocols: fp.ALPNProtocols}, nil
	case "signed_certificate_timestamp":
		return &utls.SCTExtension{}, nil
	case "padding":
		return &utls.UtlsPaddingExtension{GetPaddingLen: utls.BoringPaddingStyle}, nil
	case "extended_master_secret":
		return &utls.ExtendedMasterSecretExtension{}, nil
	case "compress_certificate":
		return &utls.UtlsCompressCertExtension{Algorithms: []utls.CertCompressionAlgo{utls.CertCompressionBrotli}}, nil
	case "record_size_limit":
		limit := uint16(fp.RecordSizeLimit)
		if limit == 0 {
			limit = 16385
		}
		return &utls.FakeRecordSizeLimitExtension{Limit: limit}, nil
	case "session_ticket":
		return &utls.SessionTicketExtension{}, nil
	case "supported_versions":
		versions := make([]uint16, 0, len(fp.SupportedVersions))
		for _, v := range fp.SupportedVersions {
			parsed, ok := registry.ParseVersion(v)
			if !ok {
				return nil, fmt.Errorf("unknown supported version %q", v)
			}
			versions = append(versions, uint16(parsed))
		}
		return &utls.SupportedVersionsExtension{Versions: versions}, nil
	case "psk_key_exchange_modes":
		return &utls.PSKKeyExchangeModesExtension{Modes: []uint8{utls.PskModeDHE}}, nil
	case "key_share":
		shares := make([]utls.KeyShare, 0, len(fp.KeyShareGroups))
		for i, curve := range fp.EllipticCurves {
			if i >= len(fp.KeyShareGroups) {
				break
			}
			id, ok := curveToUtls[curve]
			if !ok {
				continue
			}
			shares = append(shares, utls.KeyShare{Group: id})
		}
		return &utls.KeyShareExtension{KeyShares: shares}, nil
	case "renegotiation_info":
		return &utls.RenegotiationInfoExtension{Renegotiation: utls.RenegotiateOnceAsClient}, nil
	default:
		id, ok := exts.IDOf(name)
		if !ok {
			return nil, fmt.Errorf("unknown extension %q", name)
		}
		return &utls.GenericExtension{Id: id}, nil
	}
}
