package discovery

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"testing"
	"time"
)

// startTLSServer serves the given certificate on a loopback listener and
// returns the listener port. The server completes handshakes and closes.
func startTLSServer(t *testing.T, cert tls.Certificate) int {
	t.Helper()

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				// Drive the handshake by reading; the client sends nothing,
				// so this returns once the client closes.
				_, _ = io.Copy(io.Discard, c)
				c.Close()
			}(conn)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	return port
}

func TestCertFetcher_FetchesLeafCertificate(t *testing.T) {
	cert := makeTLSCert(t, []string{"api.example.com"}, []net.IP{net.ParseIP("127.0.0.1")})
	port := startTLSServer(t, cert)

	fetcher := &CertFetcher{Timeout: 2 * time.Second, Port: port}
	pemBytes, ok := fetcher.Fetch(context.Background(), "127.0.0.1")
	if !ok {
		t.Fatal("expected a certificate from the test server")
	}

	sans := ExtractSANs(pemBytes)
	if len(sans) != 2 || sans[0] != "api.example.com" {
		t.Fatalf("fetched certificate has unexpected SAN entries: %v", sans)
	}
}

func TestCertFetcher_ClosedPort(t *testing.T) {
	// Grab a port that is guaranteed closed by binding and releasing it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	fetcher := &CertFetcher{Timeout: time.Second, Port: port}
	if _, ok := fetcher.Fetch(context.Background(), "127.0.0.1"); ok {
		t.Error("expected absence for a closed port")
	}
}

func TestCertFetcher_NonTLSListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Speak something that is not TLS, then hang up.
			_, _ = conn.Write([]byte("220 not a tls server\r\n"))
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	fetcher := &CertFetcher{Timeout: time.Second, Port: port}
	if _, ok := fetcher.Fetch(context.Background(), "127.0.0.1"); ok {
		t.Error("expected absence when the handshake fails")
	}
}

func TestCertFetcher_UnresolvableHostname(t *testing.T) {
	fetcher := &CertFetcher{Timeout: time.Second}
	if _, ok := fetcher.Fetch(context.Background(), "definitely-not-a-real-host.invalid"); ok {
		t.Error("expected absence for an unresolvable hostname")
	}
}

func TestCertFetcher_CancelledContext(t *testing.T) {
	cert := makeTLSCert(t, []string{"api.example.com"}, []net.IP{net.ParseIP("127.0.0.1")})
	port := startTLSServer(t, cert)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &CertFetcher{Timeout: time.Second, Port: port}
	if _, ok := fetcher.Fetch(ctx, "127.0.0.1"); ok {
		t.Error("expected absence when the context is already cancelled")
	}
}
