package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"camo/registry"
)

func TestJA3StringFallback(t *testing.T) {
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	fp := Fallback(ciphers, exts)

	got := JA3String(fp, ciphers, exts)
	want := "771,49199,0-10-13,23,0"
	if got != want {
		t.Fatalf("JA3String = %q, want %q", got, want)
	}

	sum := md5.Sum([]byte(want))
	if fp.JA3 != hex.EncodeToString(sum[:]) {
		t.Fatalf("JA3 hash = %q does not match its own string form", fp.JA3)
	}
	if len(fp.JA3) != 32 {
		t.Fatalf("JA3 must be 32 hex chars, got %d", len(fp.JA3))
	}
}

func TestJA3Deterministic(t *testing.T) {
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	fp := &Fingerprint{
		Version:        registry.VersionTLS13,
		CipherSuites:   []string{"TLS_AES_128_GCM_SHA256", "TLS_AES_256_GCM_SHA384"},
		Extensions:     []string{"server_name", "supported_versions", "key_share"},
		EllipticCurves: []string{"X25519", "P-256"},
	}
	first := JA3(fp, ciphers, exts)
	for i := 0; i < 10; i++ {
		if JA3(fp, ciphers, exts) != first {
			t.Fatalf("JA3 not stable across calls")
		}
	}
	if JA3String(fp, ciphers, exts) != "772,4865-4866,0-43-51,29-23,0" {
		t.Fatalf("unexpected JA3 string %q", JA3String(fp, ciphers, exts))
	}
}

func TestJA3UnknownNamesDegradeToHashedIDs(t *testing.T) {
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	fp := &Fingerprint{
		Version:      registry.VersionTLS12,
		CipherSuites: []string{"TLS_TOTALLY_MADE_UP"},
		Extensions:   []string{"imaginary_extension"},
	}
	first := JA3String(fp, ciphers, exts)
	if first != JA3String(fp, ciphers, exts) {
		t.Fatalf("hashed fallback must be stable")
	}
	if first == "771,,,," {
		t.Fatalf("unknown names must still contribute IDs: %q", first)
	}
}

func TestJA3GreaseExtensionsContribute(t *testing.T) {
	ciphers := registry.NewCipherSuites()
	exts := registry.NewExtensions()
	fp := &Fingerprint{
		Version:      registry.VersionTLS13,
		CipherSuites: []string{"TLS_AES_128_GCM_SHA256"},
		Extensions:   []string{registry.GreaseName(0x2a2a), "server_name"},
	}
	if got := JA3String(fp, ciphers, exts); got != "772,4865,10794-0,,0" {
		t.Fatalf("grease extension id missing: %q", got)
	}
}
