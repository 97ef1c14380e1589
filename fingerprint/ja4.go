package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// JA4 renders the JA4-style fingerprint:
//
//	t{version}{sni}{cipher count hex}{extension count hex}{alpn}_{cipher hash}_{extension hash}
//
// where both hashes are the first 12 hex chars of SHA256 over the sorted,
// comma-joined names. Pure and deterministic like JA3.
func JA4(fp *Fingerprint) string {
	sni := "i"
	if fp.SNIEnabled {
		sni = "d"
	}
	return fmt.Sprintf("t%s%s%02x%02x%s_%s_%s",
		fp.Version.JA4Code(),
		sni,
		len(fp.CipherSuites)&0xff,
		len(fp.Extensions)&0xff,
		alpnTag(fp.ALPNProtocols),
		truncatedSHA256(sortedJoin(fp.CipherSuites)),
		truncatedSHA256(sortedJoin(fp.Extensions)),
	)
}

func alpnTag(protocols []string) string {
	if len(protocols) == 0 {
		return "00"
	}
	switch protocols[0] {
	case "http/1.1":
		return "h1"
	case "h2":
		return "h2"
	default:
		return protocols[0]
	}
}

func sortedJoin(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func truncatedSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
