package discovery

import (
	"context"
	"crypto/tls"
	"encoding/pem"
	"net"
	"strconv"
	"time"

	consts "github.com/khanhnv2901/sanscout/internal/shared/constants"
)

// CertFetcher retrieves the leaf TLS certificate served by a target.
type CertFetcher struct {
	Timeout time.Duration
	Port    int
}

// Fetch performs a TLS handshake against the target on the configured port
// and returns the peer's leaf certificate as PEM bytes. The second return
// value is false whenever no certificate could be retrieved: connection
// refused, unreachable, timeout, handshake failure, and DNS failure for a
// hostname target all fold into the same absence. The connection is closed
// before returning regardless of outcome.
func (f *CertFetcher) Fetch(ctx context.Context, target string) ([]byte, bool) {
	port := f.Port
	if port == 0 {
		port = consts.DefaultTLSPort
	}
	timeout := f.Timeout
	if timeout == 0 {
		timeout = consts.DefaultNetworkTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(target, strconv.Itoa(port)))
	if err != nil {
		return nil, false
	}

	cfg := &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- certificate content is the data; trust validation is out of scope.
	if net.ParseIP(target) == nil {
		// SNI so name-based hosts serve the certificate they would serve a browser.
		cfg.ServerName = target
	}

	conn := tls.Client(raw, cfg)
	defer conn.Close()

	if err := conn.HandshakeContext(dialCtx); err != nil {
		return nil, false
	}

	peers := conn.ConnectionState().PeerCertificates
	if len(peers) == 0 {
		return nil, false
	}

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: peers[0].Raw}), true
}
