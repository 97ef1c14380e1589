package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"camo/registry"
)

// JA3 renders the canonical five-field JA3 string for fp and returns its
// MD5 digest as 32 lowercase hex characters. Pure: identical field values
// always hash identically.
//
// Fields: version, cipher IDs, extension IDs, curve IDs, point formats —
// IDs dash-joined in fingerprint order, point formats fixed to "0".
func JA3(fp *Fingerprint, ciphers *registry.CipherSuites, exts *registry.Extensions) string {
	sum := md5.Sum([]byte(JA3String(fp, ciphers, exts)))
	return hex.EncodeToString(sum[:])
}

// JA3String is the pre-hash form, exposed for diagnostics and tests.
func JA3String(fp *Fingerprint, ciphers *registry.CipherSuites, exts *registry.Extensions) string {
	cipherIDs := make([]string, 0, len(fp.CipherSuites))
	for _, name := range fp.CipherSuites {
		id, ok := ciphers.IDOf(name)
		if !ok {
			id = hashedID(name)
		}
		cipherIDs = append(cipherIDs, strconv.Itoa(int(id)))
	}

	extIDs := make([]string, 0, len(fp.Extensions))
	for _, name := range fp.Extensions {
		id, ok := exts.IDOf(name)
		if !ok {
			id = hashedID(name)
		}
		extIDs = append(extIDs, strconv.Itoa(int(id)))
	}

	curveIDs := make([]string, 0, len(fp.EllipticCurves))
	for _, name := range fp.EllipticCurves {
		id, ok := registry.CurveID(name)
		if !ok {
			id = hashedID(name)
		}
		curveIDs = append(curveIDs, strconv.Itoa(int(id)))
	}

	return strings.Join([]string{
		strconv.Itoa(fp.Version.JA3Code()),
		strings.Join(cipherIDs, "-"),
		strings.Join(extIDs, "-"),
		strings.Join(curveIDs, "-"),
		"0",
	}, ",")
}

// hashedID degrades an unmapped name to the first four hex digits of its
// MD5, so unknown entries still produce a stable JA3.
func hashedID(name string) uint16 {
	sum := md5.Sum([]byte(name))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:2]), 16, 16)
	return uint16(v)
}
