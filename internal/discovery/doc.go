// Package discovery implements SAN-based host discovery.
//
// Architecture overview:
//
//   - CertFetcher performs the TLS handshake against each target and hands
//     back the peer's leaf certificate as PEM bytes. Every failure mode
//     (refused, timeout, handshake error, DNS miss) folds into a single
//     absence signal so one bad target never aborts a run.
//   - ExtractSANs reads the subjectAltName extension through crypto/x509's
//     typed fields rather than scraping a textual dump, preserving entry
//     order and duplicates.
//   - ResolverCache memoizes forward lookups process-wide: at most one DNS
//     query per distinct SAN value, wildcards short-circuited to the
//     unresolved sentinel without a lookup.
//   - Classifier flags resolved addresses that fall outside the original
//     target set as newly discovered hosts, using exact string membership.
//   - Scanner coordinates the above over the full target list with a bounded
//     worker pool and a global rate limiter, assembling the ScanResult
//     mapping that cmd/ serializes and reports on.
//
// This layout keeps the discovery pipeline internal while allowing cmd/ to
// simply construct a Scanner and feed it a target list.
package discovery
