package tls

import (
	"fmt"
	"net"

	"camo/fingerprint"
	"camo/registry"

	utls "github.com/refraction-networking/utls"
)

// Layer wraps a net.Conn with a ClientHello built from a synthesized
// fingerprint. The handshake itself happens only when the caller reads or
// writes; constructing a Layer performs no I/O.
type Layer struct {
	ServerName string
	Insecure   bool
	spec       *utls.ClientHelloSpec
	alpn       []string
}

func NewLayer(fp *fingerprint.Fingerprint, serverName string) (*Layer, error) {
	spec, err := ClientHelloSpec(fp, registry.NewCipherSuites(), registry.NewExtensions())
	if err != nil {
		return nil, fmt.Errorf("build client hello spec: %v", err)
	}
	return &Layer{
		ServerName: serverName,
		spec:       spec,
		alpn:       fp.ALPNProtocols,
	}, nil
}

func (l *Layer) Client(c net.Conn) (net.Conn, error) {
	conf := &utls.Config{
		ServerName:         l.ServerName,
		InsecureSkipVerify: l.Insecure,
		NextProtos:         l.alpn,
	}
	utlsConn := utls.UClient(c, conf, utls.HelloCustom)
	if err := utlsConn.ApplyPreset(l.spec); err != nil {
		return nil, fmt.Errorf("apply client hello spec: %v", err)
	}
	if err := utlsConn.BuildHandshakeState(); err != nil {
		return nil, fmt.Errorf("build handshake state: %v", err)
	}
	return utlsConn, nil
}
