package discovery

import (
	"crypto/x509"
	"encoding/pem"
)

// ExtractSANs parses PEM certificate bytes and returns the subjectAltName
// entries: DNS names first, then IP addresses, each in extension order.
// Duplicates are kept because every occurrence is classified independently
// downstream. A nil result means no usable SAN data: bad PEM, a certificate
// that fails to parse, or one without the extension.
func ExtractSANs(pemBytes []byte) []string {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil
	}

	total := len(cert.DNSNames) + len(cert.IPAddresses)
	if total == 0 {
		return nil
	}

	sans := make([]string, 0, total)
	sans = append(sans, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		sans = append(sans, ip.String())
	}
	return sans
}
