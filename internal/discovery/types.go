package discovery

// UnresolvedAddr is the placeholder recorded when a SAN entry cannot be
// mapped to a concrete address: wildcard patterns, NXDOMAIN, or a lookup
// timeout all land here.
const UnresolvedAddr = "0.0.0.0"

// DiscoveryRecord ties one SAN entry back to the target whose certificate
// exposed it, together with the resolution and classification outcome.
type DiscoveryRecord struct {
	Source     string `json:"source"`
	SAN        string `json:"san"`
	ResolvedIP string `json:"resolved_ip"`
	NewHost    bool   `json:"new_host"`
}

// ScanResult maps a scanned endpoint ("target:port") to the records its
// certificate yielded, in SAN extension order. Targets that produced no
// certificate or no SAN entries are absent rather than present-but-empty.
type ScanResult map[string][]DiscoveryRecord

// NewHosts returns every record flagged as a newly discovered host.
func (r ScanResult) NewHosts() []DiscoveryRecord {
	var hosts []DiscoveryRecord
	for _, records := range r {
		for _, rec := range records {
			if rec.NewHost {
				hosts = append(hosts, rec)
			}
		}
	}
	return hosts
}

// RecordCount returns the total number of records across all targets.
func (r ScanResult) RecordCount() int {
	total := 0
	for _, records := range r {
		total += len(records)
	}
	return total
}
