package tls

import (
	"testing"

	"camo/entropy"
	"camo/fingerprint"
	"camo/profile"
	"camo/registry"

	utls "github.com/refraction-networking/utls"
	"github.com/stretchr/testify/require"
)

func testRegistries() (*registry.CipherSuites, *registry.Extensions) {
	return registry.NewCipherSuites(), registry.NewExtensions()
}

func TestClientHelloSpecFromFallback(t *testing.T) {
	ciphers, exts := testRegistries()
	fp := fingerprint.Fallback(ciphers, exts)

	spec, err := ClientHelloSpec(fp, ciphers, exts)
	require.NoError(t, err)
	require.Equal(t, uint16(registry.VersionTLS10), spec.TLSVersMin)
	require.Equal(t, uint16(registry.VersionTLS12), spec.TLSVersMax)
	require.Equal(t, []uint16{0xc02f}, spec.CipherSuites)
	require.Equal(t, []byte{0}, spec.CompressionMethods)
	require.Len(t, spec.Extensions, 3)

	curvesExt, ok := spec.Extensions[1].(*utls.SupportedCurvesExtension)
	require.True(t, ok)
	require.Equal(t, []utls.CurveID{utls.CurveP256}, curvesExt.Curves)
}

func TestClientHelloSpecGreasePlaceholder(t *testing.T) {
	ciphers, exts := testRegistries()
	fp := &fingerprint.Fingerprint{
		Version:      registry.VersionTLS13,
		CipherSuites: []string{"TLS_AES_128_GCM_SHA256"},
		Extensions:   []string{registry.GreaseName(0x1a1a), "server_name"},
		GreaseValues: []uint16{0x1a1a},
	}
	spec, err := ClientHelloSpec(fp, ciphers, exts)
	require.NoError(t, err)
	require.Equal(t, []uint16{utls.GREASE_PLACEHOLDER, 0x1301}, spec.CipherSuites)

	_, ok := spec.Extensions[0].(*utls.UtlsGREASEExtension)
	require.True(t, ok)
}

func TestClientHelloSpecRejectsUnknownNames(t *testing.T) {
	ciphers, exts := testRegistries()

	_, err := ClientHelloSpec(nil, ciphers, exts)
	require.Error(t, err)

	_, err = ClientHelloSpec(&fingerprint.Fingerprint{
		Version:      registry.VersionTLS12,
		CipherSuites: []string{"TLS_MADE_UP"},
	}, ciphers, exts)
	require.Error(t, err)

	_, err = ClientHelloSpec(&fingerprint.Fingerprint{
		Version:        registry.VersionTLS12,
		CipherSuites:   []string{"TLS_AES_128_GCM_SHA256"},
		EllipticCurves: []string{"brainpool"},
	}, ciphers, exts)
	require.Error(t, err)
}

func TestClientHelloSpecFromGeneratedFingerprints(t *testing.T) {
	ciphers, exts := testRegistries()
	gen := fingerprint.NewGenerator(entropy.NewPool(0), ciphers, exts)
	store := profile.NewStore()

	for _, id := range store.IDs() {
		prof, ok := store.Get(id)
		require.True(t, ok)
		for i := 0; i < 50; i++ {
			fp, err := gen.Generate("session-a", prof, nil)
			require.NoError(t, err, "profile %s", id)

			spec, err := ClientHelloSpec(fp, ciphers, exts)
			require.NoError(t, err, "profile %s", id)
			require.NotEmpty(t, spec.CipherSuites)
			require.Len(t, spec.Extensions, len(fp.Extensions))
			require.Equal(t, uint16(fp.Version), spec.TLSVersMax)
		}
	}
}

func TestNewLayer(t *testing.T) {
	ciphers, exts := testRegistries()
	fp := fingerprint.Fallback(ciphers, exts)

	layer, err := NewLayer(fp, "example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", layer.ServerName)
}
